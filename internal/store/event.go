package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

// timeLayout is how event timestamps are kept in the database: wall-clock
// time in the school's location, without an offset.
const timeLayout = "2006-01-02 15:04:05"

const eventColumns = `id, title, description, event_type, all_day, start_time, end_time, is_everyone,
	send_push, send_email, show_in_calendar, reminder_hours, follow_up_notification, enable_rsvp,
	notice_board, notice_period, notice_expiry, created_by, created_at, updated_at, status, is_draft`

// EventStore reads the seeded event dataset. Events come back in source
// order, which the calendar views rely on for tie-breaking.
type EventStore struct {
	db  *sql.DB
	loc *time.Location
}

func NewEventStore(db *sql.DB, loc *time.Location) *EventStore {
	if loc == nil {
		loc = time.Local
	}
	return &EventStore{db: db, loc: loc}
}

func (s *EventStore) List() ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT ` + eventColumns + ` FROM events ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	events, err := s.scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByDateRange returns events whose span overlaps [start, end).
func (s *EventStore) ListByDateRange(start, end time.Time) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM events
		 WHERE start_time < ? AND end_time > ?
		 ORDER BY position ASC`,
		end.In(s.loc).Format(timeLayout), start.In(s.loc).Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query events by range: %w", err)
	}
	events, err := s.scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachGroups(events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventStore) GetByID(id string) (*model.Event, error) {
	rows, err := s.db.Query(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	events, err := s.scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	if err := s.attachGroups(events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

func (s *EventStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (s *EventStore) scanEvents(rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var allDay, everyone, push, email, show, followUp, rsvp, noticeBoard, draft int
		var eventType, status, startStr, endStr, createdStr string
		var updatedStr, noticePeriod, noticeExpiry sql.NullString
		var reminder sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &eventType, &allDay, &startStr, &endStr, &everyone,
			&push, &email, &show, &reminder, &followUp, &rsvp,
			&noticeBoard, &noticePeriod, &noticeExpiry, &e.CreatedBy, &createdStr, &updatedStr, &status, &draft); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		var err error
		if e.Start, err = s.parseTime(startStr); err != nil {
			return nil, fmt.Errorf("event %s start: %w", e.ID, err)
		}
		if e.End, err = s.parseTime(endStr); err != nil {
			return nil, fmt.Errorf("event %s end: %w", e.ID, err)
		}
		if e.CreatedAt, err = s.parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("event %s created_at: %w", e.ID, err)
		}
		if updatedStr.Valid {
			t, err := s.parseTime(updatedStr.String)
			if err != nil {
				return nil, fmt.Errorf("event %s updated_at: %w", e.ID, err)
			}
			e.UpdatedAt = &t
		}

		e.EventType = model.EventType(eventType)
		e.Status = model.Status(status)
		e.IsAllDay = allDay != 0
		e.IsDraft = draft != 0
		e.Audience.IsEveryone = everyone != 0
		e.Notification = model.NotificationSettings{
			SendPush:             push != 0,
			SendEmail:            email != 0,
			ShowInCalendar:       show != 0,
			FollowUpNotification: followUp != 0,
			EnableRSVP:           rsvp != 0,
		}
		if reminder.Valid {
			h := int(reminder.Int64)
			e.Notification.ReminderHours = &h
		}
		if noticeBoard != 0 {
			e.Notice = &model.NoticeSettings{
				AddToNoticeBoard: true,
				NoticePeriod:     model.NoticePeriod(noticePeriod.String),
			}
			if noticeExpiry.Valid {
				t, err := s.parseTime(noticeExpiry.String)
				if err != nil {
					return nil, fmt.Errorf("event %s notice_expiry: %w", e.ID, err)
				}
				e.Notice.ExpiryDate = &t
			}
		}

		events = append(events, e)
	}
	return events, rows.Err()
}

// attachGroups loads audience groups, notice groups and subgroups for events
// in two queries and attaches them in position order.
func (s *EventStore) attachGroups(events []model.Event) error {
	if len(events) == 0 {
		return nil
	}

	index := make(map[string]*model.Event, len(events))
	ids := make([]any, len(events))
	for i := range events {
		index[events[i].ID] = &events[i]
		ids[i] = events[i].ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.Query(
		`SELECT event_id, kind, group_name FROM event_groups
		 WHERE event_id IN (`+placeholders+`)
		 ORDER BY event_id, kind, position`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("query event groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, kind, group string
		if err := rows.Scan(&eventID, &kind, &group); err != nil {
			return fmt.Errorf("scan event group: %w", err)
		}
		e := index[eventID]
		switch kind {
		case "audience":
			e.Audience.Groups = append(e.Audience.Groups, model.AudienceGroup(group))
		case "notice":
			if e.Notice != nil {
				e.Notice.AudienceGroups = append(e.Notice.AudienceGroups, model.AudienceGroup(group))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate event groups: %w", err)
	}

	subRows, err := s.db.Query(
		`SELECT event_id, subgroup_id FROM event_subgroups
		 WHERE event_id IN (`+placeholders+`)
		 ORDER BY event_id, position`,
		ids...,
	)
	if err != nil {
		return fmt.Errorf("query event subgroups: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var eventID, subgroupID string
		if err := subRows.Scan(&eventID, &subgroupID); err != nil {
			return fmt.Errorf("scan event subgroup: %w", err)
		}
		e := index[eventID]
		e.Audience.Subgroups = append(e.Audience.Subgroups, subgroupID)
	}
	if err := subRows.Err(); err != nil {
		return fmt.Errorf("iterate event subgroups: %w", err)
	}

	for i := range events {
		if events[i].Audience.Groups == nil {
			events[i].Audience.Groups = []model.AudienceGroup{}
		}
		if events[i].Audience.Subgroups == nil {
			events[i].Audience.Subgroups = []string{}
		}
	}
	return nil
}

func (s *EventStore) parseTime(v string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, v, s.loc)
}
