package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/schoolevents/internal/config"
	"github.com/dukerupert/schoolevents/internal/database"
)

func setupServer(t *testing.T, exportLimit int) *Server {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SchoolName:      "Springfield Public School",
		BaseURL:         "http://localhost:8080",
		UpcomingLimit:   5,
		ExportRateLimit: exportLimit,
	}
	now := func() time.Time { return time.Date(2025, time.May, 18, 10, 0, 0, 0, time.UTC) }
	srv, err := New(db, cfg, time.UTC, now, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, 30)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["events"] != float64(8) {
		t.Errorf("events = %v, want 8", body["events"])
	}
	if body["dropped"] != float64(0) {
		t.Errorf("dropped = %v, want 0", body["dropped"])
	}
}

func TestHealthUnavailable(t *testing.T) {
	srv := setupServer(t, 30)
	srv.db.Close()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRoutes(t *testing.T) {
	srv := setupServer(t, 30)
	router := srv.Router()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/calendar?view=week", http.StatusOK},
		{"GET", "/create-event", http.StatusOK},
		{"GET", "/event/1", http.StatusOK},
		{"GET", "/event/1/edit", http.StatusOK},
		{"GET", "/event/missing", http.StatusNotFound},
		{"GET", "/users", http.StatusOK},
		{"GET", "/classes", http.StatusOK},
		{"GET", "/settings", http.StatusOK},
		{"GET", "/partials/calendar", http.StatusOK},
		{"GET", "/partials/calendar/events/2", http.StatusOK},
		{"GET", "/calendar/export.txt", http.StatusOK},
		{"GET", "/calendar/print", http.StatusOK},
		{"GET", "/api/events", http.StatusOK},
		{"GET", "/api/events/missing", http.StatusNotFound},
		{"GET", "/api/subgroups", http.StatusOK},
		{"GET", "/api/calendar/share", http.StatusOK},
		{"POST", "/event/1/duplicate", http.StatusSeeOther},
		{"DELETE", "/event/1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestExportsAreRateLimited(t *testing.T) {
	srv := setupServer(t, 2)
	router := srv.Router()

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/calendar/export.csv", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Pages are not limited.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/calendar", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("calendar status = %d, want 200", rec.Code)
	}
}
