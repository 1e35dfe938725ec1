package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/service"
)

// NotificationsHandler handles the notification inbox.
type NotificationsHandler struct {
	Service *service.Service
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	inbox, err := h.Service.Notifications(r.Context(), actor(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, inbox)
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkNotificationRead(r.Context(), actor(r), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
