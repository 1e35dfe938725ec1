package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/service"
)

// MessagesHandler handles the claim chat endpoints.
type MessagesHandler struct {
	Service *service.Service
}

type messagesResponse struct {
	Messages []service.MessageView `json:"messages"`
}

// List handles GET /api/claims/{id}/messages. Pollers pass the ID of the
// last message they hold as ?after= to receive only newer ones.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Service.ListMessagesSince(r.Context(), actor(r), r.PathValue("id"), r.URL.Query().Get("after"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []service.MessageView{}
	}
	jsonResponse(w, http.StatusOK, messagesResponse{Messages: messages})
}

// Send handles POST /api/claims/{id}/messages and echoes the stored message.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	body, ok := readField(w, r, "body")
	if !ok {
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), actor(r), r.PathValue("id"), body)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, msg)
}
