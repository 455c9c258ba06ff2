// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// JoinRequestRoutes returns the per-project join request endpoints; mounted
// under /projects/{projectID}/join-requests.
func JoinRequestRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.RequestToJoin)
	r.Get("/", h.ListJoinRequests)
	return r
}

// MemberRoutes returns the per-project member endpoints; mounted under
// /projects/{projectID}/members.
func MemberRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Delete("/{userID}", h.Remove)
	r.Put("/{userID}/role", h.SetRole)
	return r
}

// ReviewRoutes returns the request review endpoint; mounted under
// /join-requests.
func ReviewRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{requestID}/review", h.Review)
	return r
}
