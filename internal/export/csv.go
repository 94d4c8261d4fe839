package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	ID          string `csv:"id"`
	Date        string `csv:"date"`
	Time        string `csv:"time"`
	Title       string `csv:"title"`
	Type        string `csv:"type"`
	Audience    string `csv:"audience"`
	Status      string `csv:"status"`
	Description string `csv:"description"`
}

// WriteCSV writes one row per event of the document's period in date order.
func WriteCSV(w io.Writer, d *Document) error {
	var rows []*csvRow
	for _, g := range d.Groups {
		for _, ev := range g.Events {
			e := ev.Event
			status := string(e.Status)
			if ev.Draft {
				status = "draft"
			}
			rows = append(rows, &csvRow{
				ID:          e.ID,
				Date:        g.Key,
				Time:        ev.TimeLabel,
				Title:       e.Title,
				Type:        string(e.EventType),
				Audience:    d.AudienceDisplay(&e),
				Status:      status,
				Description: e.Description,
			})
		}
	}
	if rows == nil {
		rows = []*csvRow{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}
