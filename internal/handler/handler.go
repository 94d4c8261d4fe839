// Package handler serves the school calendar's pages, partials, exports
// and JSON API.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/schoolevents/internal/model"
	"github.com/dukerupert/schoolevents/internal/websocket"
)

// Site carries the settings every page needs.
type Site struct {
	SchoolName    string
	BaseURL       string
	UpcomingLimit int
	Author        string
}

var errMissingID = errors.New("missing id")

func parseIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", errMissingID
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseFlexibleTime accepts RFC3339 or a bare date in loc.
func parseFlexibleTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// pageTitle is the header title for a path.
func pageTitle(path string) string {
	switch path {
	case "/":
		return "Dashboard"
	case "/calendar":
		return "Event Calendar"
	case "/create-event":
		return "Create Event"
	}
	if strings.HasPrefix(path, "/event/") {
		if strings.HasSuffix(path, "/edit") {
			return "Edit Event"
		}
		return "Event Details"
	}
	return "School Management System"
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends a 303, or an HX-Redirect header to HTMX requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

const flashCookie = "schoolevents_flash"

// setFlash stores a toast for the next page the browser renders.
func setFlash(w http.ResponseWriter, t model.Toast) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears a pending toast.
func popFlash(w http.ResponseWriter, r *http.Request) *model.Toast {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var t model.Toast
	if err := json.Unmarshal(data, &t); err != nil {
		return nil
	}
	return &t
}

func broadcast(hub *websocket.Hub, msg websocket.Message) {
	if hub != nil {
		hub.Broadcast(msg)
	}
}
