package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/config"
	"github.com/dukerupert/schoolevents/internal/database"
	"github.com/dukerupert/schoolevents/internal/export"
	"github.com/dukerupert/schoolevents/internal/logging"
	"github.com/dukerupert/schoolevents/internal/server"
	"github.com/dukerupert/schoolevents/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "schoolevents",
		Usage: "School event calendar: dashboard, calendar views, event wizard and exports.",
		Commands: []*cli.Command{
			serveCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("schoolevents failed", "error", err)
		os.Exit(1)
	}
}

// env loads configuration, logging, the location and the clock every
// command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now, err := cfg.Clock(loc)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, loc: loc, now: now}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web application.",
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			db, err := database.Open(e.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			srv, err := server.New(db, e.cfg, e.loc, e.now, e.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go srv.RateLimiter().Run(ctx, time.Minute)

			httpServer := &http.Server{
				Addr:         e.cfg.Addr(),
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				e.logger.Info("schoolevents running", "addr", httpServer.Addr, "base_url", e.cfg.BaseURL, "today", e.now().Format("2006-01-02"))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			e.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a calendar period as text, HTML, iCalendar or CSV.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "txt", Usage: "txt, html, ics or csv"},
			&cli.StringFlag{Name: "view", Value: "month", Usage: "month, week, day, list or year"},
			&cli.StringFlag{Name: "date", Usage: "anchor date as YYYY-MM-DD (default today)"},
			&cli.StringSliceFlag{Name: "type", Usage: "only include this event type (repeatable)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "leave out this event type (repeatable)"},
			&cli.StringSliceFlag{Name: "audience", Usage: "only include events for this audience group (repeatable)"},
			&cli.StringFlag{Name: "q", Usage: "search title and description"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			format, ok := export.ParseFormat(c.String("format"))
			if !ok {
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
			anchor := e.now()
			if d := c.String("date"); d != "" {
				anchor, err = time.ParseInLocation(calendar.DateKeyLayout, d, e.loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", d, err)
				}
			}
			filter := calendar.FilterFromValues(url.Values{
				calendar.ParamType:     c.StringSlice("type"),
				calendar.ParamExclude:  c.StringSlice("exclude"),
				calendar.ParamAudience: c.StringSlice("audience"),
				calendar.ParamQuery:    {c.String("q")},
			})

			db, err := database.Open(e.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			events, err := store.NewEventStore(db, e.loc).List()
			if err != nil {
				return err
			}
			catalog, err := store.NewSubgroupStore(db).List()
			if err != nil {
				return err
			}

			exporter := export.NewExporter(calendar.NewEngine(e.loc, e.now), e.cfg.SchoolName, catalog)
			doc := exporter.Prepare(export.Request{
				View:   calendar.ParseView(c.String("view")),
				Anchor: anchor,
				Filter: filter,
			}, events)

			var w io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}

			if err := export.Write(w, doc, format, false); err != nil {
				return fmt.Errorf("write %s: %w", format, err)
			}
			e.logger.Debug("calendar exported", "format", format, "label", doc.Label, "events", len(doc.InRange()))
			return nil
		},
	}
}
