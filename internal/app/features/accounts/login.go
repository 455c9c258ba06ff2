// internal/app/features/accounts/login.go
package accounts

import (
	"net/http"

	"github.com/betalift/betalift/internal/app/features/shared/respond"
	"github.com/betalift/betalift/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login. Unknown email and wrong password produce the
// same 401 so the endpoint does not confirm which emails have accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err == mongo.ErrNoDocuments {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	if err := h.Sessions.SignIn(w, r, auth.SessionUser{
		ID:   user.ID.Hex(),
		Name: user.DisplayName,
		Role: user.Role,
	}); err != nil {
		h.Log.Error("session write failed after login", zap.Error(err))
		respond.Err(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, user)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
