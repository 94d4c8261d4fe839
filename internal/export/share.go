package export

import (
	"fmt"
	"strings"
)

// SharePayload is handed to the browser share API, or copied to the
// clipboard when that is unavailable.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

const shareListLimit = 5

// Share summarises the document's period for sharing a link to url.
func Share(d *Document, url string) SharePayload {
	events := d.InRange()
	var b strings.Builder
	switch len(events) {
	case 0:
		fmt.Fprintf(&b, "No events scheduled for %s.", d.Label)
	case 1:
		fmt.Fprintf(&b, "1 event for %s:", d.Label)
	default:
		fmt.Fprintf(&b, "%d events for %s:", len(events), d.Label)
	}
	for i, e := range events {
		if i == shareListLimit {
			fmt.Fprintf(&b, "\n...and %d more", len(events)-shareListLimit)
			break
		}
		fmt.Fprintf(&b, "\n- %s (%s)", e.Title, e.Start.In(d.Start.Location()).Format("Jan 2"))
	}
	return SharePayload{
		Title: fmt.Sprintf("%s Calendar - %s", d.School, d.Label),
		Text:  b.String(),
		URL:   url,
	}
}
