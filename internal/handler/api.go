package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/export"
	"github.com/dukerupert/schoolevents/internal/middleware"
	"github.com/dukerupert/schoolevents/internal/model"
	"github.com/dukerupert/schoolevents/internal/store"
)

// EventAPIHandler serves the read-only JSON API over the event dataset.
type EventAPIHandler struct {
	eventStore    *store.EventStore
	subgroupStore *store.SubgroupStore
	engine        *calendar.Engine
	exporter      *export.Exporter
	site          Site
	logger        *slog.Logger
}

func NewEventAPIHandler(es *store.EventStore, ss *store.SubgroupStore, engine *calendar.Engine, x *export.Exporter, site Site, logger *slog.Logger) *EventAPIHandler {
	return &EventAPIHandler{
		eventStore:    es,
		subgroupStore: ss,
		engine:        engine,
		exporter:      x,
		site:          site,
		logger:        logger,
	}
}

// List returns the events matching the filter query parameters. An optional
// start and end restrict it to events overlapping that range.
func (h *EventAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startStr := q.Get("start")
	endStr := q.Get("end")

	var events []model.Event
	var err error
	switch {
	case startStr == "" && endStr == "":
		events, err = h.eventStore.List()
	case startStr == "" || endStr == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end must be given together"})
		return
	default:
		start, perr := parseFlexibleTime(startStr, h.engine.Location())
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be RFC3339 or YYYY-MM-DD format"})
			return
		}
		end, perr := parseFlexibleTime(endStr, h.engine.Location())
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be RFC3339 or YYYY-MM-DD format"})
			return
		}
		if !start.Before(end) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be before end"})
			return
		}
		events, err = h.eventStore.ListByDateRange(start, end)
	}
	if err != nil {
		h.logger.Error("failed to list events", "request_id", middleware.RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}

	events = calendar.FilterFromValues(q).Apply(events)
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		h.logger.Error("failed to get event", "request_id", middleware.RequestID(r.Context()), "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Subgroups lists the audience subgroups, optionally of one group.
func (h *EventAPIHandler) Subgroups(w http.ResponseWriter, r *http.Request) {
	var subgroups []model.AudienceSubgroup
	var err error
	if g := r.URL.Query().Get("group"); g != "" {
		group := model.AudienceGroup(g)
		if !group.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown audience group"})
			return
		}
		subgroups, err = h.subgroupStore.ListByGroup(group)
	} else {
		subgroups, err = h.subgroupStore.List()
	}
	if err != nil {
		h.logger.Error("failed to list subgroups", "request_id", middleware.RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subgroups"})
		return
	}
	if subgroups == nil {
		subgroups = []model.AudienceSubgroup{}
	}
	writeJSON(w, http.StatusOK, subgroups)
}

// Share returns the title, summary and link a browser shares for the
// calendar view described by the query.
func (h *EventAPIHandler) Share(w http.ResponseWriter, r *http.Request) {
	cq := parseCalendarQuery(r, h.engine)
	events, err := h.eventStore.List()
	if err != nil {
		h.logger.Error("failed to list events", "request_id", middleware.RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	doc := h.exporter.Prepare(export.Request{View: cq.View, Anchor: cq.Date, Filter: cq.Filter}, events)
	writeJSON(w, http.StatusOK, export.Share(doc, strings.TrimSuffix(h.site.BaseURL, "/")+cq.URL("/calendar")))
}
