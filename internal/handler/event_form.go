package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dukerupert/schoolevents/internal/model"
	"github.com/dukerupert/schoolevents/internal/websocket"
	"github.com/dukerupert/schoolevents/internal/wizard"
)

type stepView struct {
	Title string
	Done  bool
}

type subgroupSection struct {
	Group       model.AudienceGroup
	AllSelected bool
	Subgroups   []model.AudienceSubgroup
}

// wizardMode is what differs between creating and editing an event.
type wizardMode struct {
	Heading     string
	Action      string
	CancelURL   string
	SubmitLabel string
	// Existing is the event being edited, nil when creating.
	Existing *model.Event
}

type formContent struct {
	wizardMode
	State            *wizard.State
	Steps            []stepView
	Carry            url.Values
	EventTypes       []model.EventType
	Groups           []model.AudienceGroup
	Reminders        []model.ReminderOption
	SubgroupSections []subgroupSection
	Summary          []model.GroupBreakdown
	When             string
}

func createMode() wizardMode {
	return wizardMode{
		Heading:     "Create Event",
		Action:      "/create-event",
		CancelURL:   "/calendar",
		SubmitLabel: "Publish Event",
	}
}

func editMode(e *model.Event) wizardMode {
	return wizardMode{
		Heading:     "Edit Event",
		Action:      "/event/" + e.ID + "/edit",
		CancelURL:   "/event/" + e.ID,
		SubmitLabel: "Save Changes",
		Existing:    e,
	}
}

func (h *TemplateHandler) formContent(mode wizardMode, state *wizard.State, catalog []model.AudienceSubgroup) formContent {
	f := &state.Form
	c := formContent{
		wizardMode: mode,
		State:      state,
		Carry:      f.Carry(state.Step),
		EventTypes: model.EventTypes,
		Groups:     model.AudienceGroups,
		Reminders:  model.ReminderOptions,
		Summary:    f.Summary(catalog),
	}
	for _, s := range wizard.Steps {
		c.Steps = append(c.Steps, stepView{Title: s.Title(), Done: s <= state.Step})
	}
	for _, g := range f.Groups {
		sec := subgroupSection{Group: g, AllSelected: f.AllSubgroupsSelected(g, catalog)}
		for _, sg := range f.RelevantSubgroups(catalog) {
			if sg.Group == g {
				sec.Subgroups = append(sec.Subgroups, sg)
			}
		}
		if len(sec.Subgroups) > 0 {
			c.SubgroupSections = append(c.SubgroupSections, sec)
		}
	}
	if !f.Start.IsZero() {
		e := model.Event{IsAllDay: f.IsAllDay, Start: f.Start, End: f.End}
		c.When = fmt.Sprintf("%s, %s", f.Start.In(h.engine.Location()).Format("Jan 2, 2006"), h.engine.TimeLabel(&e))
	}
	return c
}

// renderWizard renders the whole page, or only the form for HTMX posts.
func (h *TemplateHandler) renderWizard(w http.ResponseWriter, r *http.Request, status int, c formContent) {
	if isHTMX(r) {
		// htmx does not swap error responses
		h.rd.renderPartial(w, http.StatusOK, "wizard-form", c)
		return
	}
	h.page(w, r, status, "event_form.html", c)
}

// CreateEventPage shows the first wizard step. With ?duplicate=<id> the form
// starts from that event; an unknown id falls back to the defaults.
func (h *TemplateHandler) CreateEventPage(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.subgroups.List()
	if err != nil {
		h.serverError(w, r, "failed to load audience groups", err)
		return
	}

	state := wizard.New(h.engine.Now())
	if id := r.URL.Query().Get("duplicate"); id != "" {
		src, err := h.events.GetByID(id)
		if err != nil {
			h.serverError(w, r, "failed to load event", err)
			return
		}
		if src != nil {
			state.Form = wizard.FromEvent(src)
		} else {
			h.logger.Warn("duplicate source not found", "id", id)
		}
	}
	h.renderWizard(w, r, http.StatusOK, h.formContent(createMode(), state, catalog))
}

func (h *TemplateHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.postWizard(w, r, createMode())
}

func (h *TemplateHandler) EditEventPage(w http.ResponseWriter, r *http.Request) {
	e := h.eventOr404(w, r)
	if e == nil {
		return
	}
	catalog, err := h.subgroups.List()
	if err != nil {
		h.serverError(w, r, "failed to load audience groups", err)
		return
	}
	state := &wizard.State{Form: wizard.FromEvent(e)}
	h.renderWizard(w, r, http.StatusOK, h.formContent(editMode(e), state, catalog))
}

func (h *TemplateHandler) EditEvent(w http.ResponseWriter, r *http.Request) {
	e := h.eventOr404(w, r)
	if e == nil {
		return
	}
	h.postWizard(w, r, editMode(e))
}

// eventOr404 loads the event named by the path or writes the not-found page.
func (h *TemplateHandler) eventOr404(w http.ResponseWriter, r *http.Request) *model.Event {
	id, err := parseIDParam(r)
	if err != nil {
		h.NotFound(w, r)
		return nil
	}
	e, err := h.events.GetByID(id)
	if err != nil {
		h.serverError(w, r, "failed to load event", err)
		return nil
	}
	if e == nil {
		h.NotFound(w, r)
		return nil
	}
	return e
}

// postWizard handles every wizard button: step navigation and audience
// actions re-render the form, draft and publish submit it.
func (h *TemplateHandler) postWizard(w http.ResponseWriter, r *http.Request, mode wizardMode) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	catalog, err := h.subgroups.List()
	if err != nil {
		h.serverError(w, r, "failed to load audience groups", err)
		return
	}

	form, errs := wizard.Decode(r.PostForm, h.engine.Location())
	form.Normalize(catalog)
	state := &wizard.State{Form: form, Step: wizard.ParseStep(r.PostForm.Get("step"))}
	if errs != nil {
		state.Errors = errs
		state.Step = errs.FirstStep()
		h.renderWizard(w, r, http.StatusUnprocessableEntity, h.formContent(mode, state, catalog))
		return
	}

	action := r.PostForm.Get("action")
	if action != wizard.ActionDraft && action != wizard.ActionPublish {
		if !state.Apply(action, catalog) {
			state.Apply(wizard.ActionRefresh, catalog)
		}
		h.renderWizard(w, r, http.StatusOK, h.formContent(mode, state, catalog))
		return
	}

	now := h.engine.Now()
	sub, errs := state.Submit(action == wizard.ActionDraft, h.site.Author, now)
	if errs != nil {
		h.renderWizard(w, r, http.StatusUnprocessableEntity, h.formContent(mode, state, catalog))
		return
	}

	verb := "created"
	if e := mode.Existing; e != nil {
		verb = "updated"
		sub.Event.ID = e.ID
		sub.Event.CreatedBy = e.CreatedBy
		sub.Event.CreatedAt = e.CreatedAt
		sub.Event.UpdatedAt = &now
		if action == wizard.ActionPublish {
			sub.Toast.Title = "Event updated successfully"
			sub.Toast.Description = "Your changes have been saved."
		}
	}

	// Events are not persisted; the submission is logged and announced.
	h.logger.Info("event "+verb,
		"id", sub.Event.ID,
		"title", sub.Event.Title,
		"type", sub.Event.EventType,
		"status", sub.Event.Status,
		slog.Any("event", sub.Event),
	)
	setFlash(w, sub.Toast)
	broadcast(h.hub, websocket.NewEventMessage(verb, sub.Event.ID, sub.Toast))
	redirect(w, r, "/calendar")
}
