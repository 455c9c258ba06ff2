// internal/app/features/accounts/signup.go
package accounts

import (
	"net/http"
	"strings"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	userstore "github.com/betalift/betalift/internal/app/store/users"
	"github.com/betalift/betalift/internal/app/system/auth"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// Signup handles POST /signup: creates the account and signs the new user
// in. Email uniqueness is enforced by the store's unique index.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if strings.TrimSpace(req.DisplayName) == "" {
		respond.Err(w, h.Log, apperr.Validation("display_name is required"))
		return
	}
	if len(req.Password) < 8 {
		respond.Err(w, h.Log, apperr.Validation("password must be at least 8 characters"))
		return
	}
	if !models.ValidUserRole(req.Role) {
		respond.Err(w, h.Log, apperr.Validation("role must be creator, tester, or both"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	user, err := h.Users.Create(r.Context(), models.User{
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err == userstore.ErrDuplicateEmail {
		respond.Err(w, h.Log, apperr.Conflict("an account with this email already exists"))
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Sessions.SignIn(w, r, auth.SessionUser{
		ID:   user.ID.Hex(),
		Name: user.DisplayName,
		Role: user.Role,
	}); err != nil {
		h.Log.Error("session write failed after signup", zap.Error(err))
		respond.Err(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, user)
}
