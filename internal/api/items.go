package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
)

// maxFormBytes bounds a multipart item form: the photo plus its text fields.
const maxFormBytes = imaging.MaxUploadBytes + 1<<20

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Service   *service.Service
	PublicURL string
}

// List handles GET /api/items. Only items still waiting for their owner are
// listed; q searches title and description, category narrows the result.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Service.ListItems(r.Context(), q.Get("q"), q.Get("category"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine handles GET /api/items/mine.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItemsForFinder(r.Context(), actor(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Categories handles GET /api/categories.
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories)
}

// Create handles POST /api/items. It accepts either a JSON body or a
// multipart form with an optional "image" file.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cleanup, ok := readItemInput(w, r)
	if !ok {
		return
	}
	defer cleanup()

	item, err := h.Service.CreateItem(r.Context(), actor(r), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.ItemDetail(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, cleanup, ok := readItemInput(w, r)
	if !ok {
		return
	}
	defer cleanup()

	item, err := h.Service.UpdateItem(r.Context(), actor(r), r.PathValue("id"), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteItem(r.Context(), actor(r), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// MarkReturned handles POST /api/items/{id}/returned.
func (h *ItemsHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.MarkReturned(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	item, err := h.Service.SetItemPhoto(r.Context(), actor(r), r.PathValue("id"), file)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	obj, err := h.Service.ItemPhoto(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", obj.MIME)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(obj.Data)
}

// QR handles GET /api/items/{id}/qr. The code links to the item's handshake
// URL and is only served to the finder.
func (h *ItemsHandler) QR(w http.ResponseWriter, r *http.Request) {
	obj, err := h.Service.EnsureHandshakeAsset(r.Context(), actor(r), r.PathValue("id"), h.baseURL(r))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", obj.MIME)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(obj.Data)
}

// baseURL is the configured public URL, or one derived from the request.
func (h *ItemsHandler) baseURL(r *http.Request) string {
	if h.PublicURL != "" {
		return h.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// readItemInput reads item fields from a JSON body or a multipart form. On
// failure it writes the error response and returns ok == false.
func readItemInput(w http.ResponseWriter, r *http.Request) (in service.ItemInput, cleanup func(), ok bool) {
	cleanup = func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(r, &in); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return in, cleanup, false
		}
		return in, cleanup, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return in, cleanup, false
	}

	in = service.ItemInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Neighborhood: r.FormValue("neighborhood"),
		City:         r.FormValue("city"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		in.Photo = file
		cleanup = func() {
			file.Close()
			r.MultipartForm.RemoveAll()
		}
	case errors.Is(err, http.ErrMissingFile):
		cleanup = func() { r.MultipartForm.RemoveAll() }
	default:
		r.MultipartForm.RemoveAll()
		jsonError(w, http.StatusBadRequest, "invalid image upload")
		return in, func() {}, false
	}
	return in, cleanup, true
}
