package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanpdl/briefly/internal/upload"
)

// UploadHandler accepts and serves reference images.
type UploadHandler struct {
	store *upload.Store
}

// NewUploadHandler creates a handler over store.
func NewUploadHandler(store *upload.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// ServeFile handles GET /uploads/{filename}.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.store.Path(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, "serve upload", err)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/uploads (multipart/form-data, field "file").
//
//	@Summary		Upload a reference image
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image file (png, jpg, gif, bmp, webp)"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.store.MaxBytes() + 1<<20 // room for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	saved, err := h.store.Save(header.Filename, file)
	if err != nil {
		writeError(w, "upload", err, "filename", header.Filename)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{
		Filename: saved.Filename,
		Size:     saved.Size,
		URL:      saved.URL,
		MIMEType: saved.MIMEType,
	})
}
