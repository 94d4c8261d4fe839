package calendar

import (
	"net/url"
	"slices"
	"strings"

	"github.com/dukerupert/schoolevents/internal/model"
)

// Filter narrows the events shown in a calendar view or export.
// Zero value matches everything.
type Filter struct {
	Types         []model.EventType
	ExcludedTypes []model.EventType
	Audience      []model.AudienceGroup
	Query         string
}

// Match reports whether e passes the filter. Exclusion wins over selection:
// a type present in both Types and ExcludedTypes never matches.
func (f Filter) Match(e *model.Event) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.EventType) {
		return false
	}
	if slices.Contains(f.ExcludedTypes, e.EventType) {
		return false
	}
	if len(f.Audience) > 0 && !e.Audience.HasAnyGroup(f.Audience) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the matching events in their original order.
func (f Filter) Apply(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for i := range events {
		if f.Match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

func (f Filter) IsZero() bool {
	return len(f.Types) == 0 && len(f.ExcludedTypes) == 0 && len(f.Audience) == 0 && strings.TrimSpace(f.Query) == ""
}

func (f Filter) HasType(t model.EventType) bool {
	return slices.Contains(f.Types, t)
}

func (f Filter) Excludes(t model.EventType) bool {
	return slices.Contains(f.ExcludedTypes, t)
}

func (f Filter) HasAudience(g model.AudienceGroup) bool {
	return slices.Contains(f.Audience, g)
}

// Query parameter names used to carry a Filter in URLs.
const (
	ParamType     = "type"
	ParamExclude  = "exclude"
	ParamAudience = "audience"
	ParamQuery    = "q"
)

// FilterFromValues reads a Filter from URL query values. Unknown types and
// groups are dropped, duplicates collapse.
func FilterFromValues(v url.Values) Filter {
	var f Filter
	for _, s := range v[ParamType] {
		if t, ok := model.ParseEventType(s); ok && !slices.Contains(f.Types, t) {
			f.Types = append(f.Types, t)
		}
	}
	for _, s := range v[ParamExclude] {
		if t, ok := model.ParseEventType(s); ok && !slices.Contains(f.ExcludedTypes, t) {
			f.ExcludedTypes = append(f.ExcludedTypes, t)
		}
	}
	for _, s := range v[ParamAudience] {
		g := model.AudienceGroup(s)
		if g.Valid() && !slices.Contains(f.Audience, g) {
			f.Audience = append(f.Audience, g)
		}
	}
	f.Query = strings.TrimSpace(v.Get(ParamQuery))
	return f
}

// Values encodes the filter so FilterFromValues(f.Values()) reproduces it.
func (f Filter) Values() url.Values {
	v := url.Values{}
	for _, t := range f.Types {
		v.Add(ParamType, string(t))
	}
	for _, t := range f.ExcludedTypes {
		v.Add(ParamExclude, string(t))
	}
	for _, g := range f.Audience {
		v.Add(ParamAudience, string(g))
	}
	if f.Query != "" {
		v.Set(ParamQuery, f.Query)
	}
	return v
}
