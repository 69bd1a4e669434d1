package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/briefservice"
	"github.com/bryanpdl/briefly/internal/export"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/inline"
)

const maxBodyBytes = 1 << 20 // 1 MB

// Handler holds API route handlers.
type Handler struct {
	svc *briefservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *briefservice.Service) *Handler {
	return &Handler{svc: svc}
}

func briefID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// sectionTitle extracts the section title, accepting both "Goals:" and "Goals%3A".
func sectionTitle(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

func writeBrief(w http.ResponseWriter, status int, d *briefservice.BriefDetail) {
	w.Header().Set("ETag", `"`+d.ETag+`"`)
	writeJSON(w, status, d)
}

// CreateBrief handles POST /api/briefs.
//
//	@Summary		Generate a brief from the project form and open a draft
//	@Tags			briefs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		generator.FormData	true	"Project form"
//	@Success		201		{object}	BriefDetail
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs [post]
func (h *Handler) CreateBrief(w http.ResponseWriter, r *http.Request) {
	var form generator.FormData
	if !decodeBody(w, r, &form) {
		return
	}
	d, err := h.svc.Generate(r.Context(), form)
	if err != nil {
		writeError(w, "generate brief", err, "project", form.ProjectName)
		return
	}
	writeBrief(w, http.StatusCreated, d)
}

// ListBriefs handles GET /api/briefs.
//
//	@Summary		List open drafts
//	@Tags			briefs
//	@Produce		json
//	@Success		200	{object}	BriefListResponse
//	@Security		BearerAuth
//	@Router			/briefs [get]
func (h *Handler) ListBriefs(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, "list briefs", err)
		return
	}
	writeJSON(w, http.StatusOK, BriefListResponse{Briefs: items})
}

// GetBrief handles GET /api/briefs/{id}.
//
//	@Summary		Get a draft with its sections and regeneration state
//	@Tags			briefs
//	@Produce		json
//	@Param			id	path		string	true	"Brief ID"
//	@Success		200	{object}	BriefDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id} [get]
func (h *Handler) GetBrief(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), briefID(r))
	if err != nil {
		writeError(w, "get brief", err, "brief_id", briefID(r))
		return
	}
	writeBrief(w, http.StatusOK, d)
}

// UpdateBrief handles PUT /api/briefs/{id}.
//
//	@Summary		Replace a brief's text with optimistic concurrency
//	@Tags			briefs
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Brief ID"
//	@Param			If-Match	header		string				false	"ETag of the text being replaced"
//	@Param			body		body		UpdateBriefRequest	true	"New text"
//	@Success		200			{object}	BriefDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id} [put]
func (h *Handler) UpdateBrief(w http.ResponseWriter, r *http.Request) {
	var req UpdateBriefRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	d, err := h.svc.UpdateText(r.Context(), briefID(r), req.Text, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update brief", err, "brief_id", briefID(r))
		return
	}
	writeBrief(w, http.StatusOK, d)
}

// DeleteBrief handles DELETE /api/briefs/{id}.
//
//	@Summary		Close a draft
//	@Tags			briefs
//	@Param			id	path	string	true	"Brief ID"
//	@Success		204	"Draft closed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id} [delete]
func (h *Handler) DeleteBrief(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), briefID(r)); err != nil {
		writeError(w, "delete brief", err, "brief_id", briefID(r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditSection handles PUT /api/briefs/{id}/sections/{title}.
//
//	@Summary		Replace the content of one section
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Brief ID"
//	@Param			title		path		string				true	"Section title, with or without the colon"
//	@Param			If-Match	header		string				false	"ETag of the text being replaced"
//	@Param			body		body		EditSectionRequest	true	"New content"
//	@Success		200			{object}	BriefDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/sections/{title} [put]
func (h *Handler) EditSection(w http.ResponseWriter, r *http.Request) {
	var req EditSectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	title := sectionTitle(r)
	d, err := h.svc.EditSection(r.Context(), briefID(r), title, req.Content, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "edit section", err, "brief_id", briefID(r), "section", title)
		return
	}
	writeBrief(w, http.StatusOK, d)
}

// RegenerateSection handles POST /api/briefs/{id}/sections/{title}/regenerate.
//
//	@Summary		Regenerate one section with the model
//	@Tags			sections
//	@Produce		json
//	@Param			id		path		string	true	"Brief ID"
//	@Param			title	path		string	true	"Section title"
//	@Success		200		{object}	BriefDetail
//	@Failure		402		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse	"Another section is regenerating"
//	@Failure		410		{object}	errResponse	"Draft closed while generating"
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/sections/{title}/regenerate [post]
func (h *Handler) RegenerateSection(w http.ResponseWriter, r *http.Request) {
	title := sectionTitle(r)
	d, err := h.svc.Regenerate(r.Context(), principal(r), briefID(r), title)
	if err != nil {
		writeError(w, "regenerate section", err, "brief_id", briefID(r), "section", title)
		return
	}
	writeBrief(w, http.StatusOK, d)
}

// RenderBrief handles GET /api/briefs/{id}/render.
//
//	@Summary		Render a draft's sections into text, link and image nodes
//	@Tags			briefs
//	@Produce		json
//	@Param			id	path		string	true	"Brief ID"
//	@Success		200	{object}	RenderResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/render [get]
func (h *Handler) RenderBrief(w http.ResponseWriter, r *http.Request) {
	sections, err := h.svc.Render(r.Context(), briefID(r))
	if err != nil {
		writeError(w, "render brief", err, "brief_id", briefID(r))
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Sections: sections})
}

// ExportBrief handles GET /api/briefs/{id}/export.
//
//	@Summary		Download a draft as a document
//	@Tags			briefs
//	@Produce		text/markdown,text/html,text/plain
//	@Param			id		path	string	true	"Brief ID"
//	@Param			format	query	string	false	"Document format"	Enums(md, html, txt)
//	@Success		200		{file}	file
//	@Failure		400		{object}	errResponse
//	@Failure		402		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/export [get]
func (h *Handler) ExportBrief(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, "export brief", err)
		return
	}
	res, err := h.svc.Export(r.Context(), principal(r), briefID(r), format)
	if err != nil {
		writeError(w, "export brief", err, "brief_id", briefID(r))
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}

// ShareBrief handles GET /api/briefs/{id}/share.
//
//	@Summary		Get a mailto link carrying the brief
//	@Tags			briefs
//	@Produce		json
//	@Param			id	path		string	true	"Brief ID"
//	@Success		200	{object}	ShareResponse
//	@Failure		402	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/share [get]
func (h *Handler) ShareBrief(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.Share(r.Context(), principal(r), briefID(r))
	if err != nil {
		writeError(w, "share brief", err, "brief_id", briefID(r))
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{Mailto: link})
}

// PublishBrief handles POST /api/briefs/{id}/publish.
//
//	@Summary		Publish a draft under a public link
//	@Tags			published
//	@Produce		json
//	@Param			id	path		string	true	"Brief ID"
//	@Success		201	{object}	PublishResponse
//	@Failure		402	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/briefs/{id}/publish [post]
func (h *Handler) PublishBrief(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Publish(r.Context(), principal(r), briefID(r))
	if err != nil {
		writeError(w, "publish brief", err, "brief_id", briefID(r))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetPublished handles GET /api/published/{slug}.
//
//	@Summary		Read a published brief
//	@Tags			published
//	@Produce		json
//	@Param			slug	path		string	true	"Public slug"
//	@Success		200		{object}	PublishedView
//	@Failure		404		{object}	errResponse
//	@Router			/published/{slug} [get]
func (h *Handler) GetPublished(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	view, err := h.svc.FetchPublished(r.Context(), slug)
	if err != nil {
		writeError(w, "fetch published", err, "slug", slug)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListPublished handles GET /api/published.
//
//	@Summary		List or search published briefs
//	@Tags			published
//	@Produce		json
//	@Param			type	query		string	false	"Project type filter"
//	@Param			q		query		string	false	"Full-text query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	PublishedListResponse
//	@Router			/published [get]
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	results, err := h.svc.ListPublished(r.Context(), q.Get("type"), q.Get("q"), limit)
	if err != nil {
		writeError(w, "list published", err, "query", q.Get("q"))
		return
	}
	writeJSON(w, http.StatusOK, PublishedListResponse{Results: results})
}

// Parse handles POST /api/parse.
//
//	@Summary		Parse brief text into sections and render them
//	@Tags			utility
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Brief text"
//	@Success		200		{object}	ParseResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mode := h.svc.Mode()
	if req.Mode != "" {
		m, err := brief.ParseMode(req.Mode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		mode = m
	}
	sections := brief.Parse(req.Text, mode)
	writeJSON(w, http.StatusOK, ParseResponse{
		Sections: sections,
		Rendered: inline.RenderSections(sections),
	})
}
