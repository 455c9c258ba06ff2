// internal/app/features/notifications/handler.go
package notifications

import (
	notificationstore "github.com/betalift/betalift/internal/app/store/notifications"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes the signed-in user's notification inbox.
type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	Notifications *notificationstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		Notifications: notificationstore.New(db),
	}
}
