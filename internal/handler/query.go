package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/model"
)

const (
	paramView = "view"
	paramDate = "date"
)

// calendarQuery is the calendar state carried in the URL: view, anchor
// date and filter.
type calendarQuery struct {
	View   calendar.View
	Date   time.Time
	Filter calendar.Filter
}

func parseCalendarQuery(r *http.Request, engine *calendar.Engine) calendarQuery {
	q := r.URL.Query()
	cq := calendarQuery{
		View:   calendar.ParseView(q.Get(paramView)),
		Date:   engine.Now(),
		Filter: calendar.FilterFromValues(q),
	}
	if d := strings.TrimSpace(q.Get(paramDate)); d != "" {
		if t, err := time.ParseInLocation(calendar.DateKeyLayout, d, engine.Location()); err == nil {
			cq.Date = t
		}
	}
	return cq
}

func (q calendarQuery) values() url.Values {
	v := q.Filter.Values()
	v.Set(paramView, string(q.View))
	v.Set(paramDate, q.Date.Format(calendar.DateKeyLayout))
	return v
}

// Encode renders the query string without a leading "?".
func (q calendarQuery) Encode() string {
	return q.values().Encode()
}

func (q calendarQuery) WithView(v calendar.View) calendarQuery {
	q.View = v
	return q
}

func (q calendarQuery) WithDate(d time.Time) calendarQuery {
	q.Date = d
	return q
}

func (q calendarQuery) WithoutFilter() calendarQuery {
	q.Filter = calendar.Filter{}
	return q
}

// URL joins path and the encoded query.
func (q calendarQuery) URL(path string) string {
	return path + "?" + q.Encode()
}

// filterOption is one checkbox of the filter popover.
type filterOption struct {
	Value    string
	Label    string
	Color    string
	Checked  bool
	Excluded bool
}

func typeOptions(f calendar.Filter) []filterOption {
	opts := make([]filterOption, len(model.EventTypes))
	for i, t := range model.EventTypes {
		opts[i] = filterOption{
			Value:    string(t),
			Label:    string(t),
			Color:    t.Color(),
			Checked:  f.HasType(t),
			Excluded: f.Excludes(t),
		}
	}
	return opts
}

func audienceOptions(f calendar.Filter) []filterOption {
	opts := make([]filterOption, len(model.AudienceGroups))
	for i, g := range model.AudienceGroups {
		opts[i] = filterOption{Value: string(g), Label: string(g), Checked: f.HasAudience(g)}
	}
	return opts
}
