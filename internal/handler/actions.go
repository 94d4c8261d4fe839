package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/dukerupert/schoolevents/internal/model"
	"github.com/dukerupert/schoolevents/internal/websocket"
)

// The mutations below are not persisted. Each one is logged, reported with
// a toast and broadcast so that other open pages see the same toast.

func (h *TemplateHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	e := h.eventOr404(w, r)
	if e == nil {
		return
	}
	h.logger.Info("event deleted", "id", e.ID, "title", e.Title)

	toast := model.Toast{
		ID:          uuid.NewString(),
		Level:       model.ToastSuccess,
		Title:       "Event deleted",
		Description: fmt.Sprintf("%q has been removed from the calendar.", e.Title),
	}
	setFlash(w, toast)
	broadcast(h.hub, websocket.NewEventMessage("deleted", e.ID, toast))
	redirect(w, r, "/calendar")
}

// DuplicateEvent opens the creation wizard prefilled from the event.
func (h *TemplateHandler) DuplicateEvent(w http.ResponseWriter, r *http.Request) {
	e := h.eventOr404(w, r)
	if e == nil {
		return
	}
	h.logger.Info("event duplicate started", "id", e.ID)
	redirect(w, r, "/create-event?"+url.Values{"duplicate": {e.ID}}.Encode())
}

func (h *TemplateHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	e := h.eventOr404(w, r)
	if e == nil {
		return
	}
	h.logger.Info("event reminder sent",
		"id", e.ID,
		"everyone", e.Audience.IsEveryone,
		"groups", e.Audience.Groups,
		"push", e.Notification.SendPush,
		"email", e.Notification.SendEmail,
	)

	toast := model.Toast{
		ID:          uuid.NewString(),
		Level:       model.ToastSuccess,
		Title:       "Reminder sent",
		Description: fmt.Sprintf("The audience of %q has been reminded.", e.Title),
	}
	setFlash(w, toast)
	broadcast(h.hub, websocket.NewToastMessage(toast))
	redirect(w, r, "/event/"+e.ID)
}
