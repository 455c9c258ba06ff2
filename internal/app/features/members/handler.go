// internal/app/features/members/handler.go
package members

import (
	"github.com/betalift/betalift/internal/app/workflow/membership"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for project access: join requests,
// review, member listings, role changes, and removal. All decisions live in
// the membership engine; handlers translate HTTP to engine calls.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Engine *membership.Engine
}

func NewHandler(db *mongo.Database, engine *membership.Engine, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Engine: engine}
}
