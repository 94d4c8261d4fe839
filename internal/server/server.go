package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/config"
	"github.com/dukerupert/schoolevents/internal/export"
	"github.com/dukerupert/schoolevents/internal/handler"
	"github.com/dukerupert/schoolevents/internal/middleware"
	"github.com/dukerupert/schoolevents/internal/store"
	ws "github.com/dukerupert/schoolevents/internal/websocket"
)

// author is recorded as the creator of events submitted through the wizard.
const author = "School Administrator"

type Server struct {
	db              *sql.DB
	events          *store.EventStore
	hub             *ws.Hub
	templateHandler *handler.TemplateHandler
	apiH            *handler.EventAPIHandler
	exportH         *handler.ExportHandler
	rateLimiter     *middleware.RateLimiter
	exportLimit     middleware.Limit
	wsOrigins       []string
	logger          *slog.Logger
}

// New wires stores, the calendar engine and handlers. now supplies the
// current time; config.Config.Clock builds one that honours TODAY.
func New(db *sql.DB, cfg *config.Config, loc *time.Location, now func() time.Time, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger)

	eventStore := store.NewEventStore(db, loc)
	subgroupStore := store.NewSubgroupStore(db)

	catalog, err := subgroupStore.List()
	if err != nil {
		return nil, fmt.Errorf("load subgroups: %w", err)
	}

	engine := calendar.NewEngine(loc, now)
	exporter := export.NewExporter(engine, cfg.SchoolName, catalog)
	site := handler.Site{
		SchoolName:    cfg.SchoolName,
		BaseURL:       cfg.BaseURL,
		UpcomingLimit: cfg.UpcomingLimit,
		Author:        author,
	}

	templateH, err := handler.NewTemplateHandler(eventStore, subgroupStore, engine, hub, site, logger.With("component", "template"))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	// Pages served through BASE_URL may connect from that host.
	var origins []string
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}

	return &Server{
		db:              db,
		events:          eventStore,
		hub:             hub,
		templateHandler: templateH,
		apiH:            handler.NewEventAPIHandler(eventStore, subgroupStore, engine, exporter, site, logger.With("component", "api")),
		exportH:         handler.NewExportHandler(eventStore, engine, exporter, logger),
		rateLimiter:     middleware.NewRateLimiter(),
		exportLimit:     middleware.PerMinute(cfg.ExportRateLimit),
		wsOrigins:       origins,
		logger:          logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Page routes
	th := s.templateHandler
	mux.HandleFunc("GET /", th.Dashboard)
	mux.HandleFunc("GET /calendar", th.CalendarPage)
	mux.HandleFunc("GET /create-event", th.CreateEventPage)
	mux.HandleFunc("POST /create-event", th.CreateEvent)
	mux.HandleFunc("GET /event/{id}", th.EventDetailsPage)
	mux.HandleFunc("GET /event/{id}/edit", th.EditEventPage)
	mux.HandleFunc("POST /event/{id}/edit", th.EditEvent)
	mux.HandleFunc("POST /event/{id}/delete", th.DeleteEvent)
	mux.HandleFunc("POST /event/{id}/duplicate", th.DuplicateEvent)
	mux.HandleFunc("POST /event/{id}/remind", th.SendReminder)
	mux.HandleFunc("GET /users", th.Placeholder("Users", "User management is coming soon."))
	mux.HandleFunc("GET /classes", th.Placeholder("Classes", "Class management is coming soon."))
	mux.HandleFunc("GET /settings", th.Placeholder("Settings", "School settings are coming soon."))

	// Partials (HTMX)
	mux.HandleFunc("GET /partials/calendar", th.CalendarPartial)
	mux.HandleFunc("GET /partials/calendar/events/{id}", th.EventDetailModal)

	// Exports
	mux.Handle("GET /calendar/export.txt", s.rateLimited(s.exportH.Text))
	mux.Handle("GET /calendar/export.ics", s.rateLimited(s.exportH.ICS))
	mux.Handle("GET /calendar/export.csv", s.rateLimited(s.exportH.CSV))
	mux.Handle("GET /calendar/print", s.rateLimited(s.exportH.Print))

	// API routes
	mux.HandleFunc("GET /api/events", s.apiH.List)
	mux.HandleFunc("GET /api/events/{id}", s.apiH.Get)
	mux.HandleFunc("GET /api/subgroups", s.apiH.Subgroups)
	mux.HandleFunc("GET /api/calendar/share", s.apiH.Share)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.wsOrigins))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

// healthHandler reports whether the seeded dataset is readable, along with
// websocket client and dropped-message counts.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
		"dropped": s.hub.Dropped(),
	}
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		body["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	} else if n, err := s.events.Count(); err != nil {
		s.logger.Error("health check failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		body["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	} else {
		body["events"] = n
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, s.exportLimit)(h)
}
