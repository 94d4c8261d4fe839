package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dukerupert/schoolevents/internal/database"
	"github.com/dukerupert/schoolevents/internal/model"
)

func setupEventTestDB(t *testing.T) *EventStore {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEventStore(db, time.UTC)
}

func TestEventListSourceOrder(t *testing.T) {
	s := setupEventTestDB(t)

	events, err := s.List()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 8 {
		t.Fatalf("expected 8 seeded events, got %d", len(events))
	}
	for i, e := range events {
		want := string(rune('1' + i))
		if e.ID != want {
			t.Errorf("events[%d].ID = %q, want %q", i, e.ID, want)
		}
	}
}

func TestEventGetByID(t *testing.T) {
	s := setupEventTestDB(t)

	e, err := s.GetByID("1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if e == nil {
		t.Fatal("expected event 1")
	}
	if e.Title != "Parent-Teacher Meeting" {
		t.Errorf("title = %q, want %q", e.Title, "Parent-Teacher Meeting")
	}
	if e.EventType != model.EventTypeMeeting {
		t.Errorf("event type = %q, want Meeting", e.EventType)
	}
	if e.IsAllDay {
		t.Error("event 1 should not be all day")
	}
	wantStart := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	if !e.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", e.Start, wantStart)
	}
	if len(e.Audience.Groups) != 2 || e.Audience.Groups[0] != model.GroupParents || e.Audience.Groups[1] != model.GroupTeachers {
		t.Errorf("groups = %v, want [Parents Teachers]", e.Audience.Groups)
	}
	wantSub := []string{"p-class1", "p-class2", "p-class3", "t-math", "t-science"}
	if len(e.Audience.Subgroups) != len(wantSub) {
		t.Fatalf("subgroups = %v, want %v", e.Audience.Subgroups, wantSub)
	}
	for i := range wantSub {
		if e.Audience.Subgroups[i] != wantSub[i] {
			t.Errorf("subgroups[%d] = %q, want %q", i, e.Audience.Subgroups[i], wantSub[i])
		}
	}
	if e.Notification.ReminderHours == nil || *e.Notification.ReminderHours != 24 {
		t.Errorf("reminder hours = %v, want 24", e.Notification.ReminderHours)
	}
	if !e.Notification.EnableRSVP {
		t.Error("expected RSVP enabled")
	}
	if e.UpdatedAt != nil {
		t.Errorf("updated_at should be nil, got %v", e.UpdatedAt)
	}
	if e.Notice != nil {
		t.Error("event 1 is not on the notice board")
	}
}

func TestEventGetByIDNotFound(t *testing.T) {
	s := setupEventTestDB(t)

	e, err := s.GetByID("999")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if e != nil {
		t.Error("expected nil for nonexistent event")
	}
}

func TestEventNoticeSettings(t *testing.T) {
	s := setupEventTestDB(t)

	e, err := s.GetByID("3")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !e.OnNoticeBoard() {
		t.Fatal("event 3 should be on the notice board")
	}
	if e.Notice.NoticePeriod != model.NoticeThreeDays {
		t.Errorf("notice period = %q, want %q", e.Notice.NoticePeriod, model.NoticeThreeDays)
	}
	if e.Notice.ExpiryDate == nil {
		t.Fatal("expected expiry date")
	}
	if len(e.Notice.AudienceGroups) != 2 {
		t.Errorf("notice groups = %v, want 2 groups", e.Notice.AudienceGroups)
	}
}

func TestEventEveryoneAndUpdatedAt(t *testing.T) {
	s := setupEventTestDB(t)

	e, err := s.GetByID("2")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !e.Audience.IsEveryone {
		t.Error("event 2 targets everyone")
	}
	if len(e.Audience.Subgroups) != 0 {
		t.Errorf("subgroups = %v, want empty", e.Audience.Subgroups)
	}
	if e.UpdatedAt == nil {
		t.Fatal("expected updated_at")
	}
}

func TestEventListByDateRange(t *testing.T) {
	s := setupEventTestDB(t)

	start := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)
	events, err := s.ListByDateRange(start, end)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events on May 20, got %d", len(events))
	}
	if events[0].ID != "1" || events[1].ID != "7" {
		t.Errorf("order = [%s %s], want [1 7]", events[0].ID, events[1].ID)
	}
}

func TestEventListByDateRangeSpanning(t *testing.T) {
	s := setupEventTestDB(t)

	// Final Exams run June 5-15 and overlap a range that starts mid-span.
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	events, err := s.ListByDateRange(start, end)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(events) != 1 || events[0].ID != "3" {
		t.Fatalf("expected only event 3, got %v", events)
	}
}

func TestEventCount(t *testing.T) {
	s := setupEventTestDB(t)

	n, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 8 {
		t.Errorf("count = %d, want 8", n)
	}
}

func TestEventListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT .* FROM events").WillReturnError(boom)

	s := NewEventStore(db, time.UTC)
	if _, err := s.List(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEventListBadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cols := []string{"id", "title", "description", "event_type", "all_day", "start_time", "end_time", "is_everyone",
		"send_push", "send_email", "show_in_calendar", "reminder_hours", "follow_up_notification", "enable_rsvp",
		"notice_board", "notice_period", "notice_expiry", "created_by", "created_at", "updated_at", "status", "is_draft"}
	mock.ExpectQuery("SELECT .* FROM events").WillReturnRows(
		sqlmock.NewRows(cols).AddRow("1", "Broken", "", "Other", 0, "not-a-time", "2025-05-01 10:00:00", 0,
			0, 0, 1, nil, 0, 0, 0, nil, nil, "Admin", "2025-05-01 09:00:00", nil, "published", 0),
	)

	s := NewEventStore(db, time.UTC)
	if _, err := s.List(); err == nil {
		t.Fatal("expected error for malformed start time")
	}
}
