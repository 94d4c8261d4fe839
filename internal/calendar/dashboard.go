package calendar

import (
	"sort"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

// TotalAudience is the audience reach shown on the dashboard. The school
// directory is not part of this system, so the figure is fixed.
const TotalAudience = "450+"

type Stats struct {
	TotalEvents     int
	EventsThisMonth int
	UpcomingEvents  int
	TotalAudience   string
}

// ComputeStats summarizes events relative to the engine's current time.
func (c *Engine) ComputeStats(events []model.Event) Stats {
	now := c.Now()
	monthStart, monthEnd := Range(ViewMonth, now)
	s := Stats{TotalEvents: len(events), TotalAudience: TotalAudience}
	for _, e := range events {
		start := e.Start.In(c.loc)
		if !start.Before(monthStart) && start.Before(monthEnd) {
			s.EventsThisMonth++
		}
		if !start.Before(now) {
			s.UpcomingEvents++
		}
	}
	return s
}

// Upcoming returns up to limit events starting at or after now, earliest
// first. Events starting at the same instant keep source order.
func (c *Engine) Upcoming(events []model.Event, limit int) []EventView {
	now := c.Now()
	var upcoming []model.Event
	for _, e := range events {
		if !e.Start.Before(now) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Start.Before(upcoming[j].Start)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return c.presentAll(upcoming, now)
}

// Notice is an event currently posted on the notice board.
type Notice struct {
	Event      EventView
	PostedFrom time.Time
	Until      time.Time
}

// NoticeWindow returns when a notice-board event is posted and taken down.
// Posting starts at midnight NoticePeriod days before the event; it ends at
// the expiry date, or at the event end when no expiry is set.
func (c *Engine) NoticeWindow(e *model.Event) (from, until time.Time, ok bool) {
	if !e.OnNoticeBoard() {
		return time.Time{}, time.Time{}, false
	}
	from = StartOfDay(e.Start.In(c.loc)).AddDate(0, 0, -e.Notice.NoticePeriod.LeadDays())
	until = e.End.In(c.loc)
	if e.Notice.ExpiryDate != nil {
		until = e.Notice.ExpiryDate.In(c.loc)
	}
	return from, until, true
}

// ActiveNotices lists notice-board events posted at the current time, in
// source order. A non-empty groups restricts the board to notices addressed
// to at least one of them.
func (c *Engine) ActiveNotices(events []model.Event, groups []model.AudienceGroup) []Notice {
	now := c.Now()
	var notices []Notice
	for i := range events {
		e := &events[i]
		from, until, ok := c.NoticeWindow(e)
		if !ok || now.Before(from) || !now.Before(until) {
			continue
		}
		if len(groups) > 0 && !noticeAddressed(e.Notice, groups) {
			continue
		}
		notices = append(notices, Notice{Event: c.present(*e, now), PostedFrom: from, Until: until})
	}
	return notices
}

func noticeAddressed(n *model.NoticeSettings, groups []model.AudienceGroup) bool {
	for _, g := range groups {
		for _, ng := range n.AudienceGroups {
			if g == ng {
				return true
			}
		}
	}
	return false
}
