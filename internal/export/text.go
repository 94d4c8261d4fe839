package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const rule = "========================================"

// WriteText writes the plain-text export: a header followed by one block
// per date. All-day events are listed without a time range.
func WriteText(w io.Writer, d *Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s - Event Calendar\n", d.School)
	fmt.Fprintf(bw, "%s (%s view)\n", d.Label, d.View.Label())
	if s := FilterSummary(d.Filter); s != "" {
		fmt.Fprintf(bw, "Filters: %s\n", s)
	}
	fmt.Fprintf(bw, "Generated: %s\n", d.GeneratedAt.Format("January 2, 2006 3:04 PM"))
	fmt.Fprintln(bw, rule)

	if len(d.Groups) == 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "No events in this period.")
		return bw.Flush()
	}

	total := 0
	for _, g := range d.Groups {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, g.Label)
		fmt.Fprintln(bw, strings.Repeat("-", len(g.Label)))
		for _, ev := range g.Events {
			e := ev.Event
			line := fmt.Sprintf("%s  %s [%s]", ev.TimeLabel, e.Title, e.EventType)
			if ev.Draft {
				line += " (Draft)"
			}
			fmt.Fprintln(bw, line)
			if e.Description != "" {
				fmt.Fprintf(bw, "    %s\n", e.Description)
			}
			if a := d.AudienceDisplay(&e); a != "" {
				fmt.Fprintf(bw, "    Audience: %s\n", a)
			}
			total++
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	if total == 1 {
		fmt.Fprintln(bw, "1 event")
	} else {
		fmt.Fprintf(bw, "%d events\n", total)
	}
	return bw.Flush()
}
