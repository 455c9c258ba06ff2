// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a write-once record for one recipient; only the read flag
// mutates after creation. Delivery to devices (push fan-out) is handled by
// an external collaborator reading these rows.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`

	// DedupeKey lets the delivery collaborator recognize retried emits of
	// the same event. Minted per emit, not per event attempt.
	DedupeKey string `bson:"dedupe_key,omitempty" json:"dedupe_key,omitempty"`

	IsRead    bool       `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Notification types emitted by the workflow engines.
const (
	NotifyProjectInvite         = "project_invite"
	NotifyProjectJoined         = "project_joined"
	NotifyProjectJoinRejected   = "project_join_rejected"
	NotifyFeedbackStatusChanged = "feedback_status_changed"
	NotifyFeedbackComment       = "feedback_comment"
)
