package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageFiles each define "content" and are rendered inside "layout".
var pageFiles = []string{
	"dashboard.html",
	"calendar.html",
	"event_details.html",
	"event_form.html",
	"not_found.html",
	"placeholder.html",
}

var funcs = template.FuncMap{
	"fmtDate": func(t time.Time, layout string) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	},
	"yesNo": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"reminderLabel": func(h *int) string {
		for _, o := range model.ReminderOptions {
			if (o.Hours == nil && h == nil) || (o.Hours != nil && h != nil && *o.Hours == *h) {
				return o.Label
			}
		}
		return fmt.Sprintf("%d hours before", *h)
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

type renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	logger   *slog.Logger
}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	rd := &renderer{pages: make(map[string]*template.Template), partials: base, logger: logger}
	for _, name := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// pageData wraps a page's content with what the layout needs.
type pageData struct {
	Title   string
	Path    string
	School  string
	Search  string
	Flash   *model.Toast
	Content any
}

// render executes a full page into a buffer first so that template errors
// still produce a clean 500.
func (rd *renderer) render(w http.ResponseWriter, status int, page string, data pageData) {
	t, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown page template", "page", page)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("template error", "page", page, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rd *renderer) renderPartial(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := rd.partials.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.Error("template error", "partial", name, "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<div class="alert alert-error">Template error</div>`)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
