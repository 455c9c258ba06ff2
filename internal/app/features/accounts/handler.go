// internal/app/features/accounts/handler.go
package accounts

import (
	userstore "github.com/betalift/betalift/internal/app/store/users"
	"github.com/betalift/betalift/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for user accounts: signup, login,
// logout, and the profile surface.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Users    *userstore.Store
	Sessions *auth.SessionManager
}

func NewHandler(db *mongo.Database, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Users:    userstore.New(db),
		Sessions: sessions,
	}
}
