package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanpdl/briefly/internal/briefservice"
	"github.com/bryanpdl/briefly/internal/identity"
	"github.com/bryanpdl/briefly/internal/upload"
)

// NewRouter creates a chi router with all API routes mounted.
// Published briefs are readable without credentials; everything else goes
// through AuthMiddleware, and paid features additionally through RequirePaid.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *briefservice.Service, resolver *identity.Resolver, uploads *upload.Store, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	uh := NewUploadHandler(uploads)

	r := chi.NewRouter()

	// Public read side of published links.
	r.Get("/published", h.ListPublished)
	r.Get("/published/{slug}", h.GetPublished)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(resolver))

		// Drafts.
		r.Get("/briefs", h.ListBriefs)
		r.Post("/briefs", h.CreateBrief)
		r.Get("/briefs/{id}", h.GetBrief)
		r.Put("/briefs/{id}", h.UpdateBrief)
		r.Delete("/briefs/{id}", h.DeleteBrief)
		r.Get("/briefs/{id}/render", h.RenderBrief)
		r.Put("/briefs/{id}/sections/{title}", h.EditSection)

		// Paid features.
		r.Group(func(r chi.Router) {
			r.Use(RequirePaid)
			r.Post("/briefs/{id}/sections/{title}/regenerate", h.RegenerateSection)
			r.Get("/briefs/{id}/export", h.ExportBrief)
			r.Get("/briefs/{id}/share", h.ShareBrief)
			r.Post("/briefs/{id}/publish", h.PublishBrief)
		})

		// Utilities.
		r.Post("/parse", h.Parse)
		r.Post("/uploads", uh.Upload)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
