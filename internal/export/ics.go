package export

import (
	"fmt"
	"io"

	"github.com/emersion/go-ical"

	"github.com/dukerupert/schoolevents/internal/model"
)

const productID = "-//SchoolEvents//Calendar Export//EN"

// WriteICS encodes the events of the document's period as an iCalendar
// feed. All-day events use DATE values with an exclusive end date.
func WriteICS(w io.Writer, d *Document) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", fmt.Sprintf("%s - %s", d.School, d.Label))

	stamp := d.GeneratedAt.UTC()
	for _, e := range d.InRange() {
		ev := ical.NewComponent(ical.CompEvent)
		ev.Props.SetText(ical.PropUID, fmt.Sprintf("event-%s@schoolevents", e.ID))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		ev.Props.SetText(ical.PropSummary, e.Title)
		if e.Description != "" {
			ev.Props.SetText(ical.PropDescription, e.Description)
		}
		ev.Props.SetText(ical.PropCategories, string(e.EventType))

		if e.IsAllDay {
			start := e.Start.In(d.Start.Location())
			end := e.End.In(d.Start.Location())
			ev.Props.SetDate(ical.PropDateTimeStart, start)
			ev.Props.SetDate(ical.PropDateTimeEnd, end.AddDate(0, 0, 1))
		} else {
			ev.Props.SetDateTime(ical.PropDateTimeStart, e.Start.UTC())
			ev.Props.SetDateTime(ical.PropDateTimeEnd, e.End.UTC())
		}

		switch {
		case e.IsDraft || e.Status == model.StatusDraft:
			ev.Props.SetText(ical.PropStatus, "TENTATIVE")
		case e.Status == model.StatusCancelled:
			ev.Props.SetText(ical.PropStatus, "CANCELLED")
		default:
			ev.Props.SetText(ical.PropStatus, "CONFIRMED")
		}

		if a := d.AudienceDisplay(&e); a != "" {
			ev.Props.SetText("X-AUDIENCE", a)
		}
		cal.Children = append(cal.Children, ev)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ics: %w", err)
	}
	return nil
}
