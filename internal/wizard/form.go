// Package wizard holds the state and rules of the multi-step event
// creation form shared by the create, duplicate and edit pages.
package wizard

import (
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

type Step int

const (
	StepDetails Step = iota
	StepScheduling
	StepAudience
	StepNotifications
)

var Steps = []Step{StepDetails, StepScheduling, StepAudience, StepNotifications}

var stepNames = []string{"details", "scheduling", "audience", "notifications"}
var stepTitles = []string{"Basic Details", "Scheduling", "Audience", "Notifications"}

func (s Step) Name() string { return stepNames[s.clamp()] }
func (s Step) Title() string { return stepTitles[s.clamp()] }
func (s Step) Last() bool { return s.clamp() == StepNotifications }

func (s Step) clamp() Step {
	switch {
	case s < StepDetails:
		return StepDetails
	case s > StepNotifications:
		return StepNotifications
	}
	return s
}

// ParseStep accepts a step name or index and falls back to the first step.
func ParseStep(v string) Step {
	for i, name := range stepNames {
		if v == name || (len(v) == 1 && v[0] == byte('0'+i)) {
			return Step(i)
		}
	}
	return StepDetails
}

// Form is the flat editable shape of an event.
type Form struct {
	Title       string          `form:"title" validate:"required,min=3,max=200"`
	Description string          `form:"description" validate:"max=2000"`
	EventType   model.EventType `form:"event_type" validate:"required,event_type"`

	IsAllDay bool      `form:"is_all_day"`
	Start    time.Time `form:"start"`
	End      time.Time `form:"end"`

	Groups     []model.AudienceGroup `form:"groups" validate:"dive,audience_group"`
	Subgroups  []string              `form:"subgroups"`
	IsEveryone bool                  `form:"is_everyone"`

	SendPush             bool `form:"send_push"`
	SendEmail            bool `form:"send_email"`
	ShowInCalendar       bool `form:"show_in_calendar"`
	ReminderHours        *int `form:"reminder_hours" validate:"omitempty,reminder"`
	FollowUpNotification bool `form:"follow_up_notification"`
	EnableRSVP           bool `form:"enable_rsvp"`
}

// Defaults is a fresh form: a one hour meeting starting now with push,
// email and calendar notifications and a day-before reminder.
func Defaults(now time.Time) Form {
	reminder := 24
	return Form{
		EventType:      model.EventTypeMeeting,
		Start:          now,
		End:            now.Add(time.Hour),
		Groups:         []model.AudienceGroup{},
		Subgroups:      []string{},
		SendPush:       true,
		SendEmail:      true,
		ShowInCalendar: true,
		ReminderHours:  &reminder,
	}
}

// FromEvent prefills a form from an existing event for duplicating or editing.
func FromEvent(e *model.Event) Form {
	f := Form{
		Title:                e.Title,
		Description:          e.Description,
		EventType:            e.EventType,
		IsAllDay:             e.IsAllDay,
		Start:                e.Start,
		End:                  e.End,
		Groups:               slices.Clone(e.Audience.Groups),
		Subgroups:            slices.Clone(e.Audience.Subgroups),
		IsEveryone:           e.Audience.IsEveryone,
		SendPush:             e.Notification.SendPush,
		SendEmail:            e.Notification.SendEmail,
		ShowInCalendar:       e.Notification.ShowInCalendar,
		FollowUpNotification: e.Notification.FollowUpNotification,
		EnableRSVP:           e.Notification.EnableRSVP,
	}
	if e.Notification.ReminderHours != nil {
		h := *e.Notification.ReminderHours
		f.ReminderHours = &h
	}
	if f.Groups == nil {
		f.Groups = []model.AudienceGroup{}
	}
	if f.Subgroups == nil {
		f.Subgroups = []string{}
	}
	return f
}

// SetStart moves the start. A start at or after the end pushes the end to
// one hour after the new start.
func (f *Form) SetStart(t time.Time) {
	f.Start = t
	if !f.Start.Before(f.End) {
		f.End = f.Start.Add(time.Hour)
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SetEveryone turns the everyone switch on or off. Turning it on selects
// every group and clears any subgroup selection.
func (f *Form) SetEveryone(on bool) {
	f.IsEveryone = on
	if on {
		f.Groups = slices.Clone(model.AudienceGroups)
		f.Subgroups = []string{}
	}
}

// ToggleGroup adds or removes a group. Removing a group drops its subgroups.
func (f *Form) ToggleGroup(g model.AudienceGroup, on bool, catalog []model.AudienceSubgroup) {
	if on {
		if !slices.Contains(f.Groups, g) {
			f.Groups = append(f.Groups, g)
		}
		return
	}
	f.Groups = slices.DeleteFunc(f.Groups, func(x model.AudienceGroup) bool { return x == g })
	f.Subgroups = slices.DeleteFunc(f.Subgroups, func(id string) bool {
		return groupOf(id, catalog) == g
	})
}

func (f *Form) ToggleSubgroup(id string, on bool) {
	if on {
		if !slices.Contains(f.Subgroups, id) {
			f.Subgroups = append(f.Subgroups, id)
		}
		return
	}
	f.Subgroups = slices.DeleteFunc(f.Subgroups, func(x string) bool { return x == id })
}

// AllSubgroupsSelected reports whether every subgroup of g is selected.
func (f *Form) AllSubgroupsSelected(g model.AudienceGroup, catalog []model.AudienceSubgroup) bool {
	found := false
	for _, sg := range catalog {
		if sg.Group != g {
			continue
		}
		found = true
		if !slices.Contains(f.Subgroups, sg.ID) {
			return false
		}
	}
	return found
}

// ToggleAllSubgroups deselects every subgroup of g when all are selected,
// and selects the missing ones otherwise.
func (f *Form) ToggleAllSubgroups(g model.AudienceGroup, catalog []model.AudienceSubgroup) {
	all := f.AllSubgroupsSelected(g, catalog)
	for _, sg := range catalog {
		if sg.Group == g {
			f.ToggleSubgroup(sg.ID, !all)
		}
	}
}

// RelevantSubgroups returns the catalog subgroups of the selected groups.
func (f *Form) RelevantSubgroups(catalog []model.AudienceSubgroup) []model.AudienceSubgroup {
	var out []model.AudienceSubgroup
	for _, sg := range catalog {
		if slices.Contains(f.Groups, sg.Group) {
			out = append(out, sg)
		}
	}
	return out
}

func (f *Form) Audience() model.Audience {
	return model.Audience{
		Groups:     slices.Clone(f.Groups),
		Subgroups:  slices.Clone(f.Subgroups),
		IsEveryone: f.IsEveryone,
	}
}

// Summary lists the chosen groups with their selected subgroups, or nil
// when the event is for everyone.
func (f *Form) Summary(catalog []model.AudienceSubgroup) []model.GroupBreakdown {
	if f.IsEveryone {
		return nil
	}
	return f.Audience().Breakdown(catalog)
}

// Normalize trims text, pins all-day events to whole days, and reconciles
// the audience selection with the everyone switch and the chosen groups.
func (f *Form) Normalize(catalog []model.AudienceSubgroup) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)

	if f.IsAllDay {
		if !f.Start.IsZero() {
			f.Start = dayOf(f.Start)
		}
		if !f.End.IsZero() {
			f.End = dayOf(f.End).AddDate(0, 0, 1).Add(-time.Second)
		}
	}

	if f.IsEveryone {
		f.SetEveryone(true)
		return
	}
	f.Subgroups = slices.DeleteFunc(f.Subgroups, func(id string) bool {
		g := groupOf(id, catalog)
		return g == "" || !slices.Contains(f.Groups, g)
	})
}

func groupOf(id string, catalog []model.AudienceSubgroup) model.AudienceGroup {
	for _, sg := range catalog {
		if sg.ID == id {
			return sg.Group
		}
	}
	return ""
}

// Layout strings of the date and time inputs.
const (
	DateInputLayout = "2006-01-02"
	TimeInputLayout = "15:04"
)

func (f Form) StartDate() string { return format(f.Start, DateInputLayout) }
func (f Form) StartClock() string { return format(f.Start, TimeInputLayout) }
func (f Form) EndDate() string { return format(f.End, DateInputLayout) }
func (f Form) EndClock() string { return format(f.End, TimeInputLayout) }

func format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func (f Form) HasGroup(g model.AudienceGroup) bool { return slices.Contains(f.Groups, g) }
func (f Form) HasSubgroup(id string) bool { return slices.Contains(f.Subgroups, id) }

// ReminderIs reports whether the form's reminder matches a choice; nil
// matches "No reminder".
func (f Form) ReminderIs(h *int) bool {
	if f.ReminderHours == nil || h == nil {
		return f.ReminderHours == nil && h == nil
	}
	return *f.ReminderHours == *h
}
