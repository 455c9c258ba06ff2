// internal/app/features/projects/handler.go
package projects

import (
	membershipstore "github.com/betalift/betalift/internal/app/store/memberships"
	projectstore "github.com/betalift/betalift/internal/app/store/projects"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for project CRUD.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Projects    *projectstore.Store
	Memberships *membershipstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Projects:    projectstore.New(db),
		Memberships: membershipstore.New(db),
	}
}
