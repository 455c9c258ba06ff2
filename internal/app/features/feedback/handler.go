// internal/app/features/feedback/handler.go
package feedback

import (
	feedbackflow "github.com/betalift/betalift/internal/app/workflow/feedback"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level handler for the feedback lifecycle:
// submission, listing, status transitions, votes, comments, and counter
// repair. The engine owns every rule; handlers translate HTTP.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Engine *feedbackflow.Engine
}

func NewHandler(db *mongo.Database, engine *feedbackflow.Engine, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Engine: engine}
}
