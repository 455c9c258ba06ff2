// internal/app/features/feedback/routes.go
package feedback

import "github.com/go-chi/chi/v5"

// ProjectRoutes returns the per-project feedback endpoints; mounted under
// /projects/{projectID}/feedback.
func ProjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	r.Get("/", h.List)
	return r
}

// ItemRoutes returns the per-item endpoints; mounted under /feedback.
func ItemRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{feedbackID}", h.Get)
	r.Post("/{feedbackID}/transition", h.Transition)
	r.Post("/{feedbackID}/vote", h.Vote)
	r.Post("/{feedbackID}/comments", h.Comment)
	r.Get("/{feedbackID}/comments", h.ListComments)
	r.Post("/{feedbackID}/reconcile", h.Reconcile)
	return r
}
