package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/middleware"
	"github.com/dukerupert/schoolevents/internal/model"
	"github.com/dukerupert/schoolevents/internal/store"
	"github.com/dukerupert/schoolevents/internal/websocket"
)

// Static RSVP figures shown on event pages; responses are not tracked.
var mockRSVP = rsvpSummary{Attending: 28, NotAttending: 5, NoResponse: 17}

type rsvpSummary struct {
	Attending    int
	NotAttending int
	NoResponse   int
}

type TemplateHandler struct {
	events    *store.EventStore
	subgroups *store.SubgroupStore
	engine    *calendar.Engine
	hub       *websocket.Hub
	site      Site
	rd        *renderer
	logger    *slog.Logger
}

func NewTemplateHandler(es *store.EventStore, ss *store.SubgroupStore, engine *calendar.Engine, hub *websocket.Hub, site Site, logger *slog.Logger) (*TemplateHandler, error) {
	rd, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}
	return &TemplateHandler{
		events:    es,
		subgroups: ss,
		engine:    engine,
		hub:       hub,
		site:      site,
		rd:        rd,
		logger:    logger,
	}, nil
}

func (h *TemplateHandler) page(w http.ResponseWriter, r *http.Request, status int, name string, content any) {
	h.rd.render(w, status, name, pageData{
		Title:   pageTitle(r.URL.Path),
		Path:    r.URL.Path,
		School:  h.site.SchoolName,
		Search:  r.URL.Query().Get(calendar.ParamQuery),
		Flash:   popFlash(w, r),
		Content: content,
	})
}

func (h *TemplateHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "request_id", middleware.RequestID(r.Context()), "error", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

type dashboardContent struct {
	Stats    calendar.Stats
	Upcoming []calendar.EventView
	Notices  []calendar.Notice
}

func (h *TemplateHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.PageNotFound(w, r)
		return
	}

	events, err := h.events.List()
	if err != nil {
		h.serverError(w, r, "failed to load events", err)
		return
	}

	h.page(w, r, http.StatusOK, "dashboard.html", dashboardContent{
		Stats:    h.engine.ComputeStats(events),
		Upcoming: h.engine.Upcoming(events, h.site.UpcomingLimit),
		Notices:  h.engine.ActiveNotices(events, nil),
	})
}

type viewLink struct {
	View   calendar.View
	Label  string
	URL    string
	Active bool
}

type calendarContent struct {
	Query           calendarQuery
	Layout          calendar.Layout
	Weekdays        []string
	Views           []viewLink
	TypeOptions     []filterOption
	AudienceOptions []filterOption
	FilterActive    bool
	Count           int

	PrevURL    string
	NextURL    string
	TodayURL   string
	ClearURL   string
	TextURL    string
	ICSURL     string
	CSVURL     string
	PrintURL   string
	ShareURL   string
	PartialURL string
}

func (h *TemplateHandler) buildCalendar(r *http.Request) (*calendarContent, error) {
	q := parseCalendarQuery(r, h.engine)
	events, err := h.events.List()
	if err != nil {
		return nil, err
	}
	filtered := q.Filter.Apply(events)
	layout := h.engine.Build(q.View, q.Date, filtered)

	c := &calendarContent{
		Query:           q,
		Layout:          layout,
		Weekdays:        calendar.WeekdayNames(),
		TypeOptions:     typeOptions(q.Filter),
		AudienceOptions: audienceOptions(q.Filter),
		FilterActive:    !q.Filter.IsZero(),
		PrevURL:         q.WithDate(layout.Prev).URL("/calendar"),
		NextURL:         q.WithDate(layout.Next).URL("/calendar"),
		TodayURL:        q.WithDate(layout.Today).URL("/calendar"),
		ClearURL:        q.WithoutFilter().URL("/calendar"),
		TextURL:         q.URL("/calendar/export.txt"),
		ICSURL:          q.URL("/calendar/export.ics"),
		CSVURL:          q.URL("/calendar/export.csv"),
		PrintURL:        q.URL("/calendar/print") + "&autoprint=1",
		ShareURL:        q.URL("/api/calendar/share"),
		PartialURL:      q.URL("/partials/calendar"),
	}
	for _, v := range calendar.Views {
		c.Views = append(c.Views, viewLink{View: v, Label: v.Label(), URL: q.WithView(v).URL("/calendar"), Active: v == q.View})
	}
	for _, e := range filtered {
		s := e.Start.In(h.engine.Location())
		if !s.Before(layout.Start) && s.Before(layout.End) {
			c.Count++
		}
	}
	return c, nil
}

func (h *TemplateHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	c, err := h.buildCalendar(r)
	if err != nil {
		h.serverError(w, r, "failed to load calendar", err)
		return
	}
	h.page(w, r, http.StatusOK, "calendar.html", c)
}

// CalendarPartial renders only the calendar body for HTMX view changes.
func (h *TemplateHandler) CalendarPartial(w http.ResponseWriter, r *http.Request) {
	c, err := h.buildCalendar(r)
	if err != nil {
		h.serverError(w, r, "failed to load calendar", err)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", c.Query.URL("/calendar"))
	}
	h.rd.renderPartial(w, http.StatusOK, "calendar-view", c)
}

type eventContent struct {
	Event     model.Event
	View      calendar.EventView
	Audience  string
	Breakdown []model.GroupBreakdown
	Catalog   []model.AudienceSubgroup
	RSVP      rsvpSummary
	Notice    *calendar.Notice
}

// loadEvent fetches the event named by the path. It returns nil after
// writing the response when the event cannot be shown.
func (h *TemplateHandler) loadEvent(w http.ResponseWriter, r *http.Request, partial bool) *eventContent {
	id, err := parseIDParam(r)
	if err == nil {
		var e *model.Event
		e, err = h.events.GetByID(id)
		if err != nil {
			h.serverError(w, r, "failed to load event", err)
			return nil
		}
		if e != nil {
			catalog, err := h.subgroups.List()
			if err != nil {
				h.serverError(w, r, "failed to load audience groups", err)
				return nil
			}
			c := &eventContent{
				Event:     *e,
				View:      h.engine.Present(*e),
				Audience:  e.Audience.Display(catalog),
				Breakdown: e.Audience.Breakdown(catalog),
				Catalog:   catalog,
				RSVP:      mockRSVP,
			}
			if from, until, ok := h.engine.NoticeWindow(e); ok {
				c.Notice = &calendar.Notice{Event: c.View, PostedFrom: from, Until: until}
			}
			return c
		}
	}

	if partial {
		status := http.StatusNotFound
		if isHTMX(r) {
			// htmx does not swap error responses
			status = http.StatusOK
		}
		h.rd.renderPartial(w, status, "event-modal-missing", nil)
	} else {
		h.NotFound(w, r)
	}
	return nil
}

// EventDetailModal renders the quick-look dialog opened from a calendar cell.
func (h *TemplateHandler) EventDetailModal(w http.ResponseWriter, r *http.Request) {
	c := h.loadEvent(w, r, true)
	if c == nil {
		return
	}
	h.rd.renderPartial(w, http.StatusOK, "event-modal", c)
}

func (h *TemplateHandler) EventDetailsPage(w http.ResponseWriter, r *http.Request) {
	c := h.loadEvent(w, r, false)
	if c == nil {
		return
	}
	h.page(w, r, http.StatusOK, "event_details.html", c)
}

type notFoundContent struct {
	Heading   string
	Message   string
	BackURL   string
	BackLabel string
}

// NotFound is the page for an unknown event id.
func (h *TemplateHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, "not_found.html", notFoundContent{
		Heading:   "Event Not Found",
		Message:   "The event you're looking for doesn't exist or has been removed.",
		BackURL:   "/calendar",
		BackLabel: "Back to Calendar",
	})
}

// PageNotFound is the page for any path no route serves.
func (h *TemplateHandler) PageNotFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, "not_found.html", notFoundContent{
		Heading:   "Page Not Found",
		Message:   "There is nothing at " + r.URL.Path + ".",
		BackURL:   "/",
		BackLabel: "Back to Dashboard",
	})
}

type placeholderContent struct {
	Heading     string
	Description string
}

// Placeholder serves sections that exist in navigation but have no content yet.
func (h *TemplateHandler) Placeholder(heading, description string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.page(w, r, http.StatusOK, "placeholder.html", placeholderContent{Heading: heading, Description: description})
	}
}
