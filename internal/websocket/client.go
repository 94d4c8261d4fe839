package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one open page listening for calendar changes and toasts.
type Client struct {
	id     string
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	logger *slog.Logger

	delivered atomic.Int64
	missed    atomic.Int64
}

// NewClient wraps conn for hub. id tags the client's log lines; the
// handler passes the ID of the upgrading request.
func NewClient(hub *Hub, conn *ws.Conn, id string) *Client {
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: hub.logger.With("client", id),
	}
}

// Run registers the client and serves it until the page goes away. On exit
// it logs how many messages the page received and how many it missed.
func (c *Client) Run(ctx context.Context) {
	start := time.Now()
	c.hub.Register(c)
	defer func() {
		c.hub.Unregister(c)
		c.logger.Debug("client closed",
			"delivered", c.delivered.Load(),
			"missed", c.missed.Load(),
			"duration", time.Since(start),
		)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx, cancel)
	c.readPump(ctx)
}

// readPump discards incoming messages; pages only listen.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if ws.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				c.logger.Debug("read ended", "error", err)
			}
			return
		}
	}
}

// writePump delivers queued messages and pings so that pages left open on
// a sleeping laptop are noticed. A failed write ends the connection.
func (c *Client) writePump(ctx context.Context, stop context.CancelFunc) {
	defer stop()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, ws.MessageText, msg)
			cancel()
			if err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}
			c.delivered.Add(1)
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
