// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/betalift/betalift/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the account endpoints. Signup and login are public; the
// profile surface requires a session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/me", h.Profile)
		r.Put("/me", h.UpdateProfile)
	})
	return r
}
