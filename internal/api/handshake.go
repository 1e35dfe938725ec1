package api

import (
	"net/http"
	"net/url"

	"github.com/erazemk/najdeno/internal/service"
)

// HandshakeHandler resolves scanned QR codes.
type HandshakeHandler struct {
	Service *service.Service
}

// Resolve handles GET /handshake/{token}. It redirects to the item's claim
// form, flagging items that are no longer available.
func (h *HandshakeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.ResolveHandshake(r.Context(), r.PathValue("token"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	target := "/api/items/" + url.PathEscape(res.Item.ID) + "/claim"
	if !res.Available {
		target += "?notice=unavailable"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
