package model

import "time"

type EventType string

const (
	EventTypeAcademic        EventType = "Academic"
	EventTypeHoliday         EventType = "Holiday"
	EventTypeExam            EventType = "Exam"
	EventTypeMeeting         EventType = "Meeting"
	EventTypeAnnouncement    EventType = "Announcement"
	EventTypePTA             EventType = "PTA"
	EventTypeCulturalProgram EventType = "Cultural Program"
	EventTypeOther           EventType = "Other"
)

// EventTypes lists every event type in display order.
var EventTypes = []EventType{
	EventTypeAcademic,
	EventTypeHoliday,
	EventTypeExam,
	EventTypeMeeting,
	EventTypeAnnouncement,
	EventTypePTA,
	EventTypeCulturalProgram,
	EventTypeOther,
}

var eventTypeColors = map[EventType]string{
	EventTypeAcademic:        "green",
	EventTypeHoliday:         "red",
	EventTypeExam:            "orange",
	EventTypeMeeting:         "purple",
	EventTypeAnnouncement:    "blue",
	EventTypePTA:             "yellow",
	EventTypeCulturalProgram: "teal",
	EventTypeOther:           "gray",
}

func (t EventType) Valid() bool {
	_, ok := eventTypeColors[t]
	return ok
}

// Color returns the palette name used for the type in calendars and print output.
func (t EventType) Color() string {
	if c, ok := eventTypeColors[t]; ok {
		return c
	}
	return "gray"
}

func ParseEventType(s string) (EventType, bool) {
	t := EventType(s)
	return t, t.Valid()
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
)

type NotificationSettings struct {
	SendPush             bool `json:"send_push"`
	SendEmail            bool `json:"send_email"`
	ShowInCalendar       bool `json:"show_in_calendar"`
	ReminderHours        *int `json:"reminder_hours"`
	FollowUpNotification bool `json:"follow_up_notification"`
	EnableRSVP           bool `json:"enable_rsvp"`
}

// ReminderOption is one choice offered for NotificationSettings.ReminderHours.
// A nil Hours means no reminder.
type ReminderOption struct {
	Hours *int
	Label string
}

func hours(n int) *int { return &n }

var ReminderOptions = []ReminderOption{
	{Hours: nil, Label: "No reminder"},
	{Hours: hours(1), Label: "1 hour before"},
	{Hours: hours(3), Label: "3 hours before"},
	{Hours: hours(24), Label: "1 day before"},
	{Hours: hours(48), Label: "2 days before"},
	{Hours: hours(72), Label: "3 days before"},
	{Hours: hours(168), Label: "1 week before"},
}

// ValidReminderHours reports whether h is one of the offered reminder choices.
func ValidReminderHours(h *int) bool {
	if h == nil {
		return true
	}
	for _, o := range ReminderOptions {
		if o.Hours != nil && *o.Hours == *h {
			return true
		}
	}
	return false
}

type Event struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	EventType    EventType            `json:"event_type"`
	IsAllDay     bool                 `json:"is_all_day"`
	Start        time.Time            `json:"start_date_time"`
	End          time.Time            `json:"end_date_time"`
	Audience     Audience             `json:"audience"`
	Notification NotificationSettings `json:"notification"`
	Notice       *NoticeSettings      `json:"notice_settings,omitempty"`
	CreatedBy    string               `json:"created_by"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    *time.Time           `json:"updated_at"`
	Status       Status               `json:"status"`
	IsDraft      bool                 `json:"is_draft"`
}

// OnNoticeBoard reports whether the event is posted to the notice board.
func (e *Event) OnNoticeBoard() bool {
	return e.Notice != nil && e.Notice.AddToNoticeBoard
}
