package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/schoolevents/internal/model"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func fixedNow() time.Time { return at(2025, time.May, 18, 12, 0) }

func testEngine() *Engine {
	return NewEngine(time.UTC, fixedNow)
}

func fixtures() []model.Event {
	return []model.Event{
		{
			ID: "1", Title: "Parent-Teacher Meeting", Description: "Quarterly progress review",
			EventType: model.EventTypeMeeting,
			Start:     at(2025, time.May, 20, 14, 0), End: at(2025, time.May, 20, 17, 0),
			Audience: model.Audience{Groups: []model.AudienceGroup{model.GroupParents, model.GroupTeachers}},
			Status:   model.StatusPublished,
		},
		{
			ID: "2", Title: "Annual Sports Day", EventType: model.EventTypeCulturalProgram, IsAllDay: true,
			Start: at(2025, time.May, 25, 9, 0), End: at(2025, time.May, 25, 16, 0),
			Audience: model.Audience{Groups: []model.AudienceGroup{model.GroupStudents}, IsEveryone: true},
			Status:   model.StatusPublished,
		},
		{
			ID: "3", Title: "Final Exams", EventType: model.EventTypeExam, IsAllDay: true,
			Start: at(2025, time.June, 5, 8, 0), End: at(2025, time.June, 15, 16, 0),
			Audience: model.Audience{Groups: []model.AudienceGroup{model.GroupStudents}},
			Status:   model.StatusPublished,
			Notice: &model.NoticeSettings{
				AddToNoticeBoard: true,
				AudienceGroups:   []model.AudienceGroup{model.GroupStudents},
				NoticePeriod:     model.NoticeOneWeek,
			},
		},
		{
			ID: "4", Title: "Teacher Training Workshop", EventType: model.EventTypeMeeting,
			Start: at(2025, time.May, 15, 10, 0), End: at(2025, time.May, 15, 15, 0),
			Audience: model.Audience{Groups: []model.AudienceGroup{model.GroupTeachers}},
			Status:   model.StatusDraft, IsDraft: true,
		},
		{
			ID: "5", Title: "Science Fair", EventType: model.EventTypeAcademic,
			Start: at(2025, time.May, 20, 9, 0), End: at(2025, time.May, 20, 12, 0),
			Audience: model.Audience{Groups: []model.AudienceGroup{model.GroupStudents}},
			Status:   model.StatusPublished,
		},
	}
}

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func viewIDs(views []EventView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Event.ID
	}
	return out
}

func TestFilterByTypeReturnsOnlyThatType(t *testing.T) {
	f := Filter{Types: []model.EventType{model.EventTypeMeeting}}
	got := f.Apply(fixtures())
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, model.EventTypeMeeting, e.EventType)
	}
}

func TestFilterExclusionWinsOverSelection(t *testing.T) {
	f := Filter{
		Types:         []model.EventType{model.EventTypeMeeting, model.EventTypeExam},
		ExcludedTypes: []model.EventType{model.EventTypeMeeting},
	}
	assert.Equal(t, []string{"3"}, ids(f.Apply(fixtures())))
}

func TestFilterExclusionWithoutSelection(t *testing.T) {
	f := Filter{ExcludedTypes: []model.EventType{model.EventTypeMeeting}}
	assert.Equal(t, []string{"2", "3", "5"}, ids(f.Apply(fixtures())))
}

func TestFilterAudienceIntersects(t *testing.T) {
	f := Filter{Audience: []model.AudienceGroup{model.GroupTeachers, model.GroupStaff}}
	assert.Equal(t, []string{"1", "4"}, ids(f.Apply(fixtures())))
}

func TestFilterQuery(t *testing.T) {
	f := Filter{Query: "  PROGRESS "}
	assert.Equal(t, []string{"1"}, ids(f.Apply(fixtures())))
}

func TestFilterZeroMatchesAll(t *testing.T) {
	var f Filter
	assert.True(t, f.IsZero())
	assert.Len(t, f.Apply(fixtures()), 5)
}

func TestFilterValuesRoundTrip(t *testing.T) {
	f := Filter{
		Types:         []model.EventType{model.EventTypeExam, model.EventTypeCulturalProgram},
		ExcludedTypes: []model.EventType{model.EventTypeHoliday},
		Audience:      []model.AudienceGroup{model.GroupParents},
		Query:         "sports",
	}
	assert.Equal(t, f, FilterFromValues(f.Values()))
}

func TestFilterFromValuesDropsUnknown(t *testing.T) {
	v := url.Values{
		ParamType:     {"Exam", "Party", "Exam"},
		ParamAudience: {"Aliens", "Staff"},
	}
	f := FilterFromValues(v)
	assert.Equal(t, []model.EventType{model.EventTypeExam}, f.Types)
	assert.Equal(t, []model.AudienceGroup{model.GroupStaff}, f.Audience)
}

func TestBucketKeepsSourceOrder(t *testing.T) {
	b := Bucket(fixtures(), time.UTC)
	// Science Fair starts earlier in the day but comes later in the source.
	assert.Equal(t, []string{"1", "5"}, ids(b["2025-05-20"]))
	assert.Equal(t, []string{"2025-05-15", "2025-05-20", "2025-05-25", "2025-06-05"}, b.Keys())
}

func TestBucketMultiDayOnStartDateOnly(t *testing.T) {
	b := Bucket(fixtures(), time.UTC)
	assert.Len(t, b["2025-06-05"], 1)
	assert.Empty(t, b["2025-06-06"])
}

func TestParseView(t *testing.T) {
	assert.Equal(t, ViewWeek, ParseView("week"))
	assert.Equal(t, ViewYear, ParseView("year"))
	assert.Equal(t, ViewMonth, ParseView("fortnight"))
	assert.Equal(t, ViewMonth, ParseView(""))
}

func TestRange(t *testing.T) {
	anchor := at(2025, time.May, 20, 15, 30)
	tests := []struct {
		view       View
		start, end time.Time
	}{
		{ViewMonth, at(2025, time.May, 1, 0, 0), at(2025, time.June, 1, 0, 0)},
		{ViewList, at(2025, time.May, 1, 0, 0), at(2025, time.June, 1, 0, 0)},
		{ViewWeek, at(2025, time.May, 18, 0, 0), at(2025, time.May, 25, 0, 0)},
		{ViewDay, at(2025, time.May, 20, 0, 0), at(2025, time.May, 21, 0, 0)},
		{ViewYear, at(2025, time.January, 1, 0, 0), at(2026, time.January, 1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			start, end := Range(tt.view, anchor)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestShiftMonthFromEndOfMonth(t *testing.T) {
	got := Shift(ViewMonth, at(2025, time.January, 31, 0, 0), 1)
	assert.Equal(t, at(2025, time.February, 1, 0, 0), got)
	assert.Equal(t, at(2024, time.May, 1, 0, 0), Shift(ViewYear, at(2025, time.May, 20, 0, 0), -1).AddDate(0, 4, 0))
	assert.Equal(t, at(2025, time.May, 27, 0, 0), Shift(ViewWeek, at(2025, time.May, 20, 9, 0), 1))
	assert.Equal(t, at(2025, time.May, 19, 0, 0), Shift(ViewDay, at(2025, time.May, 20, 9, 0), -1))
}

func TestRangeLabel(t *testing.T) {
	assert.Equal(t, "May 2025", RangeLabel(ViewMonth, at(2025, time.May, 20, 0, 0)))
	assert.Equal(t, "May 18 - 24, 2025", RangeLabel(ViewWeek, at(2025, time.May, 20, 0, 0)))
	assert.Equal(t, "Jun 29 - Jul 5, 2025", RangeLabel(ViewWeek, at(2025, time.July, 1, 0, 0)))
	assert.Equal(t, "Dec 28, 2025 - Jan 3, 2026", RangeLabel(ViewWeek, at(2025, time.December, 30, 0, 0)))
	assert.Equal(t, "Tuesday, May 20, 2025", RangeLabel(ViewDay, at(2025, time.May, 20, 0, 0)))
	assert.Equal(t, "2025", RangeLabel(ViewYear, at(2025, time.May, 20, 0, 0)))
}

func TestBuildMonth(t *testing.T) {
	c := testEngine()
	l := c.Build(ViewMonth, at(2025, time.May, 10, 0, 0), fixtures())
	require.NotNil(t, l.Month)

	// May 2025 starts on a Thursday and has 31 days: five weeks.
	require.Len(t, l.Month.Weeks, 5)
	first := l.Month.Weeks[0].Days[0]
	assert.Equal(t, at(2025, time.April, 27, 0, 0), first.Date)
	assert.False(t, first.InMonth)

	var may20 Day
	for _, w := range l.Month.Weeks {
		for _, d := range w.Days {
			if d.Key == "2025-05-20" {
				may20 = d
			}
			if d.Key == "2025-05-18" {
				assert.True(t, d.IsToday)
			}
		}
	}
	assert.Equal(t, []string{"1", "5"}, viewIDs(may20.Events))
	assert.Equal(t, at(2025, time.April, 1, 0, 0), l.Prev)
	assert.Equal(t, at(2025, time.June, 1, 0, 0), l.Next)
	assert.Equal(t, at(2025, time.May, 18, 0, 0), l.Today)
}

func TestBuildMonthSixWeeks(t *testing.T) {
	// August 2025 starts on a Friday and needs six rows.
	l := testEngine().Build(ViewMonth, at(2025, time.August, 1, 0, 0), nil)
	assert.Len(t, l.Month.Weeks, 6)
}

func TestBuildWeekAndDay(t *testing.T) {
	c := testEngine()
	l := c.Build(ViewWeek, at(2025, time.May, 20, 0, 0), fixtures())
	require.NotNil(t, l.Week)
	require.Len(t, l.Week.Days, 7)
	assert.Equal(t, time.Sunday, l.Week.Days[0].Date.Weekday())
	assert.Equal(t, []string{"1", "5"}, viewIDs(l.Week.Days[2].Events))
	assert.Empty(t, l.Week.Days[0].Events)

	d := c.Build(ViewDay, at(2025, time.May, 25, 0, 0), fixtures())
	require.NotNil(t, d.Day)
	assert.Equal(t, []string{"2"}, viewIDs(d.Day.Events))
}

func TestBuildList(t *testing.T) {
	l := testEngine().Build(ViewList, at(2025, time.May, 1, 0, 0), fixtures())
	require.Len(t, l.List, 3)
	assert.Equal(t, "2025-05-15", l.List[0].Key)
	assert.Equal(t, "Thursday, May 15, 2025", l.List[0].Label)
	assert.Equal(t, []string{"1", "5"}, viewIDs(l.List[1].Events))
	assert.Equal(t, "2025-05-25", l.List[2].Key)
}

func TestBuildYear(t *testing.T) {
	l := testEngine().Build(ViewYear, at(2025, time.March, 3, 0, 0), fixtures())
	require.Len(t, l.Months, 12)
	assert.Equal(t, 4, l.Months[4].Total)
	assert.Equal(t, 1, l.Months[5].Total)
	assert.Equal(t, 0, l.Months[0].Total)
	assert.Equal(t, "May", l.Months[4].Label)
}

func TestPrintGridIsSixWeeks(t *testing.T) {
	g := testEngine().PrintGrid(at(2025, time.February, 1, 0, 0), fixtures())
	require.Len(t, g.Weeks, 6)
	assert.Equal(t, "February 2025", g.Label)
	assert.Equal(t, at(2025, time.January, 26, 0, 0), g.Weeks[0].Days[0].Date)
}

func TestPrintGridAttachesAdjacentMonthEvents(t *testing.T) {
	g := testEngine().PrintGrid(at(2025, time.June, 1, 0, 0), fixtures())
	// The June grid opens on Sunday, June 1; the May 25 event is outside it
	// but Final Exams on June 5 is inside.
	found := false
	for _, w := range g.Weeks {
		for _, d := range w.Days {
			if d.Key == "2025-06-05" {
				found = len(d.Events) == 1
			}
		}
	}
	assert.True(t, found)
}

func TestEventPresentation(t *testing.T) {
	c := testEngine()
	l := c.Build(ViewMonth, at(2025, time.May, 1, 0, 0), fixtures())
	var workshop, sports EventView
	for _, w := range l.Month.Weeks {
		for _, d := range w.Days {
			for _, ev := range d.Events {
				switch ev.Event.ID {
				case "4":
					workshop = ev
				case "2":
					sports = ev
				}
			}
		}
	}
	assert.True(t, workshop.Past)
	assert.True(t, workshop.Draft)
	assert.Equal(t, "10:00 AM - 3:00 PM", workshop.TimeLabel)
	assert.Equal(t, "purple", workshop.Color)

	assert.False(t, sports.Past)
	assert.Equal(t, "All Day", sports.TimeLabel)
}

func TestPresentPastEvent(t *testing.T) {
	v := testEngine().Present(fixtures()[3])
	assert.Equal(t, "4", v.Event.ID)
	assert.True(t, v.Past)
	assert.True(t, v.Draft)
}

func TestComputeStats(t *testing.T) {
	s := testEngine().ComputeStats(fixtures())
	assert.Equal(t, 5, s.TotalEvents)
	assert.Equal(t, 4, s.EventsThisMonth)
	assert.Equal(t, 4, s.UpcomingEvents)
	assert.Equal(t, TotalAudience, s.TotalAudience)
}

func TestUpcoming(t *testing.T) {
	got := testEngine().Upcoming(fixtures(), 3)
	assert.Equal(t, []string{"5", "1", "2"}, viewIDs(got))
}

func TestNoticeWindowAndActiveNotices(t *testing.T) {
	events := fixtures()
	c := testEngine()

	from, until, ok := c.NoticeWindow(&events[2])
	require.True(t, ok)
	assert.Equal(t, at(2025, time.May, 29, 0, 0), from)
	assert.Equal(t, at(2025, time.June, 15, 16, 0), until)

	_, _, ok = c.NoticeWindow(&events[0])
	assert.False(t, ok)

	// Not yet posted on May 18.
	assert.Empty(t, c.ActiveNotices(events, nil))

	posted := NewEngine(time.UTC, func() time.Time { return at(2025, time.June, 1, 9, 0) })
	notices := posted.ActiveNotices(events, nil)
	require.Len(t, notices, 1)
	assert.Equal(t, "3", notices[0].Event.Event.ID)

	assert.Len(t, posted.ActiveNotices(events, []model.AudienceGroup{model.GroupStudents}), 1)
	assert.Empty(t, posted.ActiveNotices(events, []model.AudienceGroup{model.GroupParents}))
}

func TestNoticeExpiry(t *testing.T) {
	events := fixtures()
	expiry := at(2025, time.June, 2, 0, 0)
	events[2].Notice.ExpiryDate = &expiry

	c := NewEngine(time.UTC, func() time.Time { return at(2025, time.June, 3, 0, 0) })
	assert.Empty(t, c.ActiveNotices(events, nil))
}
