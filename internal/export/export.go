// Package export turns a filtered calendar period into downloadable
// documents: plain text, a printable HTML page, iCalendar and CSV.
package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/model"
)

type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
	FormatICS  Format = "ics"
	FormatCSV  Format = "csv"
)

var Formats = []Format{FormatText, FormatHTML, FormatICS, FormatCSV}

func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, true
		}
	}
	return "", false
}

func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Write renders d in format. autoPrint only applies to the HTML document.
func Write(w io.Writer, d *Document, format Format, autoPrint bool) error {
	switch format {
	case FormatICS:
		return WriteICS(w, d)
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatHTML:
		return WritePrintHTML(w, d, autoPrint)
	case FormatText:
		return WriteText(w, d)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Request selects the period and filter of an export.
type Request struct {
	View   calendar.View
	Anchor time.Time
	Filter calendar.Filter
}

// Document is everything the writers need, computed once per export.
type Document struct {
	School      string
	View        calendar.View
	Anchor      time.Time
	Label       string
	Filter      calendar.Filter
	Start       time.Time
	End         time.Time
	GeneratedAt time.Time

	// Events holds the filtered events in source order, regardless of range.
	Events []model.Event
	// Groups holds the filtered events starting within [Start, End).
	Groups []calendar.DayGroup
	// Grid is the six-week month grid of the anchor month for printing.
	Grid calendar.MonthGrid

	catalog []model.AudienceSubgroup
}

// InRange returns the events of Groups in date order.
func (d *Document) InRange() []model.Event {
	var out []model.Event
	for _, g := range d.Groups {
		for _, ev := range g.Events {
			out = append(out, ev.Event)
		}
	}
	return out
}

func (d *Document) AudienceDisplay(e *model.Event) string {
	return e.Audience.Display(d.catalog)
}

type Exporter struct {
	engine  *calendar.Engine
	school  string
	catalog []model.AudienceSubgroup
}

func NewExporter(engine *calendar.Engine, school string, catalog []model.AudienceSubgroup) *Exporter {
	return &Exporter{engine: engine, school: school, catalog: catalog}
}

// Prepare filters events and groups them by date for req.
func (x *Exporter) Prepare(req Request, events []model.Event) *Document {
	anchor := req.Anchor.In(x.engine.Location())
	start, end := calendar.Range(req.View, anchor)
	filtered := req.Filter.Apply(events)
	return &Document{
		School:      x.school,
		View:        req.View,
		Anchor:      anchor,
		Label:       calendar.RangeLabel(req.View, anchor),
		Filter:      req.Filter,
		Start:       start,
		End:         end,
		GeneratedAt: x.engine.Now().Truncate(time.Minute),
		Events:      filtered,
		Groups:      x.engine.Groups(filtered, start, end),
		Grid:        x.engine.PrintGrid(anchor, filtered),
		catalog:     x.catalog,
	}
}

// Filename names the download for the document's period,
// e.g. school-events-2025-05.txt.
func Filename(d *Document, f Format) string {
	var period string
	switch d.View {
	case calendar.ViewWeek:
		period = "week-" + d.Start.Format("2006-01-02")
	case calendar.ViewDay:
		period = d.Start.Format("2006-01-02")
	case calendar.ViewYear:
		period = d.Start.Format("2006")
	default:
		period = d.Start.Format("2006-01")
	}
	return fmt.Sprintf("school-events-%s.%s", period, f)
}

// ETag returns a strong validator for an export body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// FilterSummary describes a non-empty filter in one line, or "" when the
// filter matches everything.
func FilterSummary(f calendar.Filter) string {
	var parts []string
	if len(f.Types) > 0 {
		parts = append(parts, "Types: "+joinTypes(f.Types))
	}
	if len(f.ExcludedTypes) > 0 {
		parts = append(parts, "Excluding: "+joinTypes(f.ExcludedTypes))
	}
	if len(f.Audience) > 0 {
		names := make([]string, len(f.Audience))
		for i, g := range f.Audience {
			names[i] = string(g)
		}
		parts = append(parts, "Audience: "+strings.Join(names, ", "))
	}
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", f.Query))
	}
	return strings.Join(parts, "; ")
}

func joinTypes(types []model.EventType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
