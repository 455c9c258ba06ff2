// internal/app/features/projects/routes.go
package projects

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the project endpoints and nests the per-project member and
// feedback subtrees under /{projectID}. The whole tree requires a session
// (mounted behind auth.RequireSignedIn in the router build).
func Routes(h *Handler, members, joinRequests, feedback chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPublic)
	r.Post("/", h.Create)
	r.Get("/mine", h.ListMine)
	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Mount("/members", members)
		r.Mount("/join-requests", joinRequests)
		r.Mount("/feedback", feedback)
	})
	return r
}
