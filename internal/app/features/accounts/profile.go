// internal/app/features/accounts/profile.go
package accounts

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	userstore "github.com/betalift/betalift/internal/app/store/users"
	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Profile handles GET /me.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	user, err := h.Users.GetByID(r.Context(), uid)
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("account not found"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
}

// UpdateProfile handles PUT /me: display name, bio, and role tag are the
// mutable profile fields. Identity (email) is immutable.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req profileUpdateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if !models.ValidUserRole(req.Role) {
		respond.Err(w, h.Log, apperr.Validation("role must be creator, tester, or both"))
		return
	}

	err := h.Users.UpdateProfile(r.Context(), uid, userstore.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Role:        req.Role,
	})
	if err == mongo.ErrNoDocuments {
		respond.Err(w, h.Log, apperr.NotFound("account not found"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	user, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
