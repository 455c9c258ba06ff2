// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JoinRequest is a transient proposal for membership awaiting an owner or
// admin decision. History is append-only: resolving a request never deletes
// it, and re-requesting after rejection creates a new document. A partial
// unique index on (project_id, user_id) scoped to status "pending" ensures
// at most one outstanding request per pair.
type JoinRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`

	Status string `bson:"status" json:"status"` // pending | approved | rejected (accepted: legacy alias for approved)

	ReviewedBy      *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	RejectionReason string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Join request statuses. The engine only ever writes RequestApproved or
// RequestRejected; RequestAccepted appears in documents written by an older
// schema and reads as resolved.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
	RequestAccepted = "accepted"
)

// Resolved reports whether the request has reached a terminal state.
func (r *JoinRequest) Resolved() bool {
	return r.Status != RequestPending
}
