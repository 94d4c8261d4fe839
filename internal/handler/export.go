package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/export"
	"github.com/dukerupert/schoolevents/internal/middleware"
	"github.com/dukerupert/schoolevents/internal/store"
)

// ExportHandler serves the calendar's current view as downloadable files.
type ExportHandler struct {
	eventStore *store.EventStore
	engine     *calendar.Engine
	exporter   *export.Exporter
	logger     *slog.Logger
}

func NewExportHandler(es *store.EventStore, engine *calendar.Engine, x *export.Exporter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{eventStore: es, engine: engine, exporter: x, logger: logger.With("component", "export")}
}

func (h *ExportHandler) Text(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatText)
}

func (h *ExportHandler) ICS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatICS)
}

func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatCSV)
}

// Print renders the printable month. ?autoprint=1 opens the print dialog
// once the page has loaded.
func (h *ExportHandler) Print(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatHTML)
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, format export.Format) {
	cq := parseCalendarQuery(r, h.engine)
	events, err := h.eventStore.List()
	if err != nil {
		h.logger.Error("failed to list events", "request_id", middleware.RequestID(r.Context()), "error", err)
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	doc := h.exporter.Prepare(export.Request{View: cq.View, Anchor: cq.Date, Filter: cq.Filter}, events)

	var buf bytes.Buffer
	if err := export.Write(&buf, doc, format, r.URL.Query().Get("autoprint") == "1"); err != nil {
		h.logger.Error("export failed", "request_id", middleware.RequestID(r.Context()), "format", format, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	etag := export.ETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatHTML {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(doc, format)))
	}
	h.logger.Info("calendar exported",
		"format", format,
		"view", doc.View,
		"label", doc.Label,
		"events", len(doc.InRange()),
		"bytes", buf.Len(),
	)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
