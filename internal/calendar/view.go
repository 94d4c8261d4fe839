package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
	ViewList  View = "list"
	ViewYear  View = "year"
)

var Views = []View{ViewMonth, ViewWeek, ViewDay, ViewList, ViewYear}

// ParseView maps a view name to a View, falling back to month.
func ParseView(s string) View {
	switch View(s) {
	case ViewMonth, ViewWeek, ViewDay, ViewList, ViewYear:
		return View(s)
	}
	return ViewMonth
}

func (v View) Label() string {
	switch v {
	case ViewWeek:
		return "Week"
	case ViewDay:
		return "Day"
	case ViewList:
		return "List"
	case ViewYear:
		return "Year"
	}
	return "Month"
}

// DateKeyLayout formats the calendar date key events are bucketed by.
const DateKeyLayout = "2006-01-02"

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayNames returns abbreviated weekday headers starting on Sunday.
func WeekdayNames() []string {
	return append([]string(nil), weekdayNames...)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// Range returns the half-open interval [start, end) a view covers around anchor.
func Range(view View, anchor time.Time) (time.Time, time.Time) {
	switch view {
	case ViewWeek:
		start := StartOfWeek(anchor)
		return start, start.AddDate(0, 0, 7)
	case ViewDay:
		start := StartOfDay(anchor)
		return start, start.AddDate(0, 0, 1)
	case ViewYear:
		start := StartOfYear(anchor)
		return start, start.AddDate(1, 0, 0)
	default:
		start := StartOfMonth(anchor)
		return start, start.AddDate(0, 1, 0)
	}
}

// Shift moves anchor by n steps of the view: months for month and list,
// weeks, days or years otherwise. Month steps land on the 1st so that
// Jan 31 + 1 month does not skip February.
func Shift(view View, anchor time.Time, n int) time.Time {
	switch view {
	case ViewWeek:
		return StartOfDay(anchor).AddDate(0, 0, 7*n)
	case ViewDay:
		return StartOfDay(anchor).AddDate(0, 0, n)
	case ViewYear:
		return StartOfYear(anchor).AddDate(n, 0, 0)
	default:
		return StartOfMonth(anchor).AddDate(0, n, 0)
	}
}

// RangeLabel is the human title of the period a view shows.
func RangeLabel(view View, anchor time.Time) string {
	switch view {
	case ViewWeek:
		start := StartOfWeek(anchor)
		end := start.AddDate(0, 0, 6)
		switch {
		case start.Year() != end.Year():
			return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
		case start.Month() != end.Month():
			return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
		default:
			return fmt.Sprintf("%s - %d, %d", start.Format("January 2"), end.Day(), end.Year())
		}
	case ViewDay:
		return anchor.Format("Monday, January 2, 2006")
	case ViewYear:
		return anchor.Format("2006")
	default:
		return anchor.Format("January 2006")
	}
}

// Buckets groups events by the date key of their start. Within a bucket
// events keep source order.
type Buckets map[string][]model.Event

func Bucket(events []model.Event, loc *time.Location) Buckets {
	b := make(Buckets)
	for _, e := range events {
		key := e.Start.In(loc).Format(DateKeyLayout)
		b[key] = append(b[key], e)
	}
	return b
}

func (b Buckets) On(day time.Time) []model.Event {
	return b[day.Format(DateKeyLayout)]
}

// Keys returns the bucket keys in ascending date order.
func (b Buckets) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EventView is an event prepared for display in a calendar cell.
type EventView struct {
	Event     model.Event
	TimeLabel string
	Past      bool
	Draft     bool
	Color     string
}

type Day struct {
	Date    time.Time
	Key     string
	InMonth bool
	IsToday bool
	Events  []EventView
}

type Week struct {
	Days []Day
}

type MonthGrid struct {
	Month time.Time
	Label string
	Weeks []Week
}

// DayGroup is one date heading of the list view or an export.
type DayGroup struct {
	Date   time.Time
	Key    string
	Label  string
	Events []EventView
}

type MonthSummary struct {
	Month time.Time
	Label string
	Total int
	Grid  MonthGrid
}

type Layout struct {
	View   View
	Anchor time.Time
	Label  string
	Start  time.Time
	End    time.Time
	Prev   time.Time
	Next   time.Time
	Today  time.Time

	Month  *MonthGrid
	Week   *Week
	Day    *Day
	List   []DayGroup
	Months []MonthSummary
}

// Engine lays out already filtered events for the calendar views.
type Engine struct {
	loc *time.Location
	now func() time.Time
}

func NewEngine(loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{loc: loc, now: now}
}

func (c *Engine) Location() *time.Location { return c.loc }

// Now returns the engine's current time in its location.
func (c *Engine) Now() time.Time { return c.now().In(c.loc) }

// TimeLabel is "All Day" for all-day events and "3:04 PM - 5:00 PM" otherwise.
func (c *Engine) TimeLabel(e *model.Event) string {
	if e.IsAllDay {
		return "All Day"
	}
	return fmt.Sprintf("%s - %s", e.Start.In(c.loc).Format("3:04 PM"), e.End.In(c.loc).Format("3:04 PM"))
}

func (c *Engine) present(e model.Event, now time.Time) EventView {
	return EventView{
		Event:     e,
		TimeLabel: c.TimeLabel(&e),
		Past:      e.Start.Before(now),
		Draft:     e.Status == model.StatusDraft || e.IsDraft,
		Color:     e.EventType.Color(),
	}
}

// Present prepares a single event for display.
func (c *Engine) Present(e model.Event) EventView {
	return c.present(e, c.Now())
}

func (c *Engine) presentAll(events []model.Event, now time.Time) []EventView {
	if len(events) == 0 {
		return nil
	}
	out := make([]EventView, len(events))
	for i, e := range events {
		out[i] = c.present(e, now)
	}
	return out
}

// Build lays out events for view around anchor.
func (c *Engine) Build(view View, anchor time.Time, events []model.Event) Layout {
	anchor = anchor.In(c.loc)
	now := c.Now()
	start, end := Range(view, anchor)
	l := Layout{
		View:   view,
		Anchor: anchor,
		Label:  RangeLabel(view, anchor),
		Start:  start,
		End:    end,
		Prev:   Shift(view, anchor, -1),
		Next:   Shift(view, anchor, 1),
		Today:  StartOfDay(now),
	}

	buckets := Bucket(events, c.loc)
	switch view {
	case ViewWeek:
		w := c.week(StartOfWeek(anchor), anchor.Month(), buckets, now)
		l.Week = &w
	case ViewDay:
		d := c.day(StartOfDay(anchor), anchor.Month(), buckets, now)
		l.Day = &d
	case ViewList:
		l.List = c.Groups(events, start, end)
	case ViewYear:
		l.Months = c.year(anchor, buckets, now)
	default:
		m := c.monthGrid(anchor, buckets, now, false)
		l.Month = &m
	}
	return l
}

// PrintGrid returns the fixed six-week grid used by the print document.
func (c *Engine) PrintGrid(anchor time.Time, events []model.Event) MonthGrid {
	return c.monthGrid(anchor.In(c.loc), Bucket(events, c.loc), c.Now(), true)
}

// Groups returns the non-empty date groups for events starting in
// [start, end), in ascending date order.
func (c *Engine) Groups(events []model.Event, start, end time.Time) []DayGroup {
	now := c.Now()
	var inRange []model.Event
	for _, e := range events {
		s := e.Start.In(c.loc)
		if !s.Before(start) && s.Before(end) {
			inRange = append(inRange, e)
		}
	}
	buckets := Bucket(inRange, c.loc)
	groups := make([]DayGroup, 0, len(buckets))
	for _, key := range buckets.Keys() {
		date, err := time.ParseInLocation(DateKeyLayout, key, c.loc)
		if err != nil {
			continue
		}
		groups = append(groups, DayGroup{
			Date:   date,
			Key:    key,
			Label:  date.Format("Monday, January 2, 2006"),
			Events: c.presentAll(buckets[key], now),
		})
	}
	return groups
}

func (c *Engine) day(date time.Time, month time.Month, b Buckets, now time.Time) Day {
	return Day{
		Date:    date,
		Key:     date.Format(DateKeyLayout),
		InMonth: date.Month() == month,
		IsToday: date.Equal(StartOfDay(now)),
		Events:  c.presentAll(b.On(date), now),
	}
}

func (c *Engine) week(start time.Time, month time.Month, b Buckets, now time.Time) Week {
	w := Week{Days: make([]Day, 7)}
	for i := range w.Days {
		w.Days[i] = c.day(start.AddDate(0, 0, i), month, b, now)
	}
	return w
}

// monthGrid lays out whole Sunday-first weeks covering the anchor month.
// fixed forces six weeks so every month prints at the same size.
func (c *Engine) monthGrid(anchor time.Time, b Buckets, now time.Time, fixed bool) MonthGrid {
	first := StartOfMonth(anchor)
	gridStart := StartOfWeek(first)
	weeks := 6
	if !fixed {
		days := first.AddDate(0, 1, -1).Day()
		weeks = (int(first.Weekday()) + days + 6) / 7
	}
	g := MonthGrid{Month: first, Label: first.Format("January 2006"), Weeks: make([]Week, weeks)}
	for i := range g.Weeks {
		g.Weeks[i] = c.week(gridStart.AddDate(0, 0, 7*i), first.Month(), b, now)
	}
	return g
}

func (c *Engine) year(anchor time.Time, b Buckets, now time.Time) []MonthSummary {
	start := StartOfYear(anchor)
	months := make([]MonthSummary, 12)
	for i := range months {
		m := start.AddDate(0, i, 0)
		grid := c.monthGrid(m, b, now, false)
		total := 0
		for _, w := range grid.Weeks {
			for _, d := range w.Days {
				if d.InMonth {
					total += len(d.Events)
				}
			}
		}
		months[i] = MonthSummary{Month: m, Label: m.Format("January"), Total: total, Grid: grid}
	}
	return months
}
