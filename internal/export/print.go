package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dukerupert/schoolevents/internal/calendar"
	"github.com/dukerupert/schoolevents/internal/model"
)

//go:embed templates/print.html
var templateFS embed.FS

var printTmpl = template.Must(template.ParseFS(templateFS, "templates/print.html"))

type legendEntry struct {
	Type  model.EventType
	Color string
}

type printData struct {
	School    string
	Filters   string
	Grid      calendar.MonthGrid
	Weekdays  []string
	Legend    []legendEntry
	AutoPrint bool
}

// WritePrintHTML writes a standalone printable month document. With
// autoPrint set the page opens the print dialog once loaded.
func WritePrintHTML(w io.Writer, d *Document, autoPrint bool) error {
	legend := make([]legendEntry, len(model.EventTypes))
	for i, t := range model.EventTypes {
		legend[i] = legendEntry{Type: t, Color: t.Color()}
	}
	data := printData{
		School:    d.School,
		Filters:   FilterSummary(d.Filter),
		Grid:      d.Grid,
		Weekdays:  calendar.WeekdayNames(),
		Legend:    legend,
		AutoPrint: autoPrint,
	}
	if err := printTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render print document: %w", err)
	}
	return nil
}
