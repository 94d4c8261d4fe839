package wizard

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

// Decode reads a posted wizard form. Inputs that cannot be parsed leave
// the field zero and are reported in the returned Errors.
func Decode(v url.Values, loc *time.Location) (Form, Errors) {
	if loc == nil {
		loc = time.Local
	}
	errs := Errors{}
	f := Form{
		Title:                v.Get("title"),
		Description:          v.Get("description"),
		EventType:            model.EventType(v.Get("event_type")),
		IsAllDay:             checked(v, "is_all_day"),
		IsEveryone:           checked(v, "is_everyone"),
		SendPush:             checked(v, "send_push"),
		SendEmail:            checked(v, "send_email"),
		ShowInCalendar:       checked(v, "show_in_calendar"),
		FollowUpNotification: checked(v, "follow_up_notification"),
		EnableRSVP:           checked(v, "enable_rsvp"),
		Groups:               []model.AudienceGroup{},
		Subgroups:            []string{},
	}

	for _, g := range v["groups"] {
		f.Groups = append(f.Groups, model.AudienceGroup(g))
	}
	for _, id := range v["subgroups"] {
		if id != "" {
			f.Subgroups = append(f.Subgroups, id)
		}
	}

	var err error
	if f.Start, err = parseDateTime(v.Get("start_date"), v.Get("start_time"), f.IsAllDay, loc); err != nil {
		errs["start"] = "Enter a valid start date"
	}
	if f.End, err = parseDateTime(v.Get("end_date"), v.Get("end_time"), f.IsAllDay, loc); err != nil {
		errs["end"] = "Enter a valid end date"
	}

	switch r := strings.TrimSpace(v.Get("reminder_hours")); r {
	case "", "none":
	default:
		h, err := strconv.Atoi(r)
		if err != nil {
			errs["reminder_hours"] = "Select a valid reminder time"
			break
		}
		f.ReminderHours = &h
	}

	if len(errs) == 0 {
		return f, nil
	}
	return f, errs
}

func checked(v url.Values, key string) bool {
	switch strings.ToLower(v.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func parseDateTime(date, clock string, allDay bool, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(DateInputLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	if allDay || clock == "" {
		return d, nil
	}
	c, err := time.Parse(TimeInputLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

// Values encodes the form the way Decode reads it.
func (f Form) Values() url.Values {
	v := url.Values{}
	v.Set("title", f.Title)
	v.Set("description", f.Description)
	v.Set("event_type", string(f.EventType))
	setChecked(v, "is_all_day", f.IsAllDay)
	v.Set("start_date", f.StartDate())
	v.Set("end_date", f.EndDate())
	if !f.IsAllDay {
		v.Set("start_time", f.StartClock())
		v.Set("end_time", f.EndClock())
	}
	setChecked(v, "is_everyone", f.IsEveryone)
	for _, g := range f.Groups {
		v.Add("groups", string(g))
	}
	for _, id := range f.Subgroups {
		v.Add("subgroups", id)
	}
	setChecked(v, "send_push", f.SendPush)
	setChecked(v, "send_email", f.SendEmail)
	setChecked(v, "show_in_calendar", f.ShowInCalendar)
	setChecked(v, "follow_up_notification", f.FollowUpNotification)
	setChecked(v, "enable_rsvp", f.EnableRSVP)
	if f.ReminderHours != nil {
		v.Set("reminder_hours", strconv.Itoa(*f.ReminderHours))
	} else {
		v.Set("reminder_hours", "none")
	}
	return v
}

func setChecked(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "on")
	}
}

// stepInputs lists the inputs each step renders.
var stepInputs = map[Step][]string{
	StepDetails:       {"title", "description", "event_type"},
	StepScheduling:    {"is_all_day", "start_date", "start_time", "end_date", "end_time"},
	StepAudience:      {"is_everyone", "groups", "subgroups"},
	StepNotifications: {"send_push", "send_email", "show_in_calendar", "reminder_hours", "follow_up_notification", "enable_rsvp"},
}

// Carry returns the values of every input step does not render. The page
// posts them back as hidden fields so that answers on other steps survive.
func (f Form) Carry(step Step) url.Values {
	v := f.Values()
	for _, name := range stepInputs[step.clamp()] {
		v.Del(name)
	}
	return v
}
