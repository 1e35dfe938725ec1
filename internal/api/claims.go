package api

import (
	"mime"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
)

// unavailableNotice is shown on the claim form of an item that has already
// been claimed or returned.
const unavailableNotice = "This item has already been claimed or returned."

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	Service *service.Service
}

type claimEntryResponse struct {
	*service.ClaimEntry
	Notice string `json:"notice,omitempty"`
}

// Entry handles GET /api/items/{id}/claim, the landing point of a scanned
// handshake code.
func (h *ClaimsHandler) Entry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Service.ClaimEntry(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	resp := claimEntryResponse{ClaimEntry: entry}
	if !entry.Available || r.URL.Query().Get("notice") == "unavailable" {
		resp.Notice = unavailableNotice
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Submit handles POST /api/items/{id}/claims. A repeated submission returns
// the existing claim with 200 instead of 201.
func (h *ClaimsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	proof, ok := readField(w, r, "proof")
	if !ok {
		return
	}

	claim, created, err := h.Service.SubmitClaim(r.Context(), actor(r), r.PathValue("id"), proof)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	jsonResponse(w, status, claim)
}

// ForItem handles GET /api/items/{id}/claims.
func (h *ClaimsHandler) ForItem(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Service.ClaimsForItem(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// Mine handles GET /api/claims/mine.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Service.ClaimsForSeeker(r.Context(), actor(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.ClaimDetail(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Respond handles POST /api/claims/{id}/{action}, where action is
// "approve" or "reject".
func (h *ClaimsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	decision, ok := model.ParseDecision(r.PathValue("action"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown claim action")
		return
	}

	claim, err := h.Service.RespondClaim(r.Context(), actor(r), r.PathValue("id"), decision)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// readField reads a single text field from a JSON object body or from a
// form. On failure it writes the error response and returns false.
func readField(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return r.FormValue(name), true
	}

	var body map[string]string
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	return body[name], true
}
