package wizard

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/schoolevents/internal/model"
)

// Actions posted by the wizard's buttons.
const (
	ActionNext      = "next"
	ActionPrev      = "prev"
	ActionDraft     = "draft"
	ActionPublish   = "publish"
	ActionEveryone  = "everyone"
	ActionSelectAll = "select_all:"
	ActionGroup     = "group:"
	ActionStart     = "start"
	ActionRefresh   = "refresh"
)

// State is one rendering of the wizard: the form, the visible step and the
// messages to show next to fields.
type State struct {
	Form   Form
	Step   Step
	Errors Errors
}

func New(now time.Time) *State {
	return &State{Form: Defaults(now)}
}

// Next advances one step when the current step's fields are valid and
// records their errors otherwise.
func (s *State) Next() bool {
	if errs := ValidateStep(s.Form, s.Step); errs != nil {
		s.Errors = errs
		return false
	}
	s.Errors = nil
	if !s.Step.Last() {
		s.Step++
	}
	return true
}

func (s *State) Prev() {
	s.Errors = nil
	if s.Step > StepDetails {
		s.Step--
	}
}

// Progress is the completed share of the wizard, from 25 to 100.
func (s *State) Progress() int {
	return (int(s.Step.clamp()) + 1) * 100 / len(Steps)
}

// Apply performs a non-submitting action. It reports false for actions it
// does not know, including draft and publish.
func (s *State) Apply(action string, catalog []model.AudienceSubgroup) bool {
	switch {
	case action == ActionNext:
		s.Next()
	case action == ActionPrev:
		s.Prev()
	case action == ActionRefresh:
		s.Errors = nil
	case action == ActionStart:
		s.Errors = nil
		if !s.Form.Start.IsZero() {
			s.Form.SetStart(s.Form.Start)
		}
	case action == ActionEveryone:
		s.Form.SetEveryone(!s.Form.IsEveryone)
	case strings.HasPrefix(action, ActionSelectAll):
		g := model.AudienceGroup(strings.TrimPrefix(action, ActionSelectAll))
		if g.Valid() {
			s.Form.ToggleAllSubgroups(g, catalog)
		}
	case strings.HasPrefix(action, ActionGroup):
		// The posted checkbox already carries the new state.
		g := model.AudienceGroup(strings.TrimPrefix(action, ActionGroup))
		if g.Valid() {
			s.Form.ToggleGroup(g, s.Form.HasGroup(g), catalog)
		}
	default:
		return false
	}
	return true
}

// Submission is the outcome of a valid submit.
type Submission struct {
	Event model.Event
	Toast model.Toast
}

// Submit validates the whole form and builds the event it describes as a
// draft or a published event. On failure the state jumps to the first step
// that has an error.
func (s *State) Submit(draft bool, author string, now time.Time) (*Submission, Errors) {
	if errs := Validate(s.Form); errs != nil {
		s.Errors = errs
		s.Step = errs.FirstStep()
		return nil, errs
	}
	s.Errors = nil

	f := s.Form
	e := model.Event{
		ID:          uuid.NewString(),
		Title:       f.Title,
		Description: f.Description,
		EventType:   f.EventType,
		IsAllDay:    f.IsAllDay,
		Start:       f.Start,
		End:         f.End,
		Audience:    f.Audience(),
		Notification: model.NotificationSettings{
			SendPush:             f.SendPush,
			SendEmail:            f.SendEmail,
			ShowInCalendar:       f.ShowInCalendar,
			ReminderHours:        f.ReminderHours,
			FollowUpNotification: f.FollowUpNotification,
			EnableRSVP:           f.EnableRSVP,
		},
		CreatedBy: author,
		CreatedAt: now,
		Status:    model.StatusPublished,
		IsDraft:   draft,
	}
	toast := model.Toast{
		ID:          uuid.NewString(),
		Level:       model.ToastSuccess,
		Title:       "Event created successfully",
		Description: "The event has been published.",
	}
	if draft {
		e.Status = model.StatusDraft
		toast.Title = "Event draft saved successfully"
		toast.Description = "You can edit it later."
	}
	return &Submission{Event: e, Toast: toast}, nil
}

// FirstStep is the earliest step owning a field with an error.
func (e Errors) FirstStep() Step {
	for _, step := range Steps {
		for _, field := range stepFields[step] {
			if _, ok := e[field]; ok {
				return step
			}
		}
	}
	return StepDetails
}
