// internal/domain/models/projectmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectMembership is the authoritative join between users and projects.
// Exactly one document per (project_id, user_id); the unique index on that
// pair is what serializes concurrent approvals.
type ProjectMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"`                 // pending | approved | rejected
	Role      string             `bson:"role,omitempty" json:"role,omitempty"` // admin | tester
	JoinedAt  time.Time          `bson:"joined_at" json:"joined_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Membership statuses.
const (
	MembershipPending  = "pending"
	MembershipApproved = "approved"
	MembershipRejected = "rejected"
)

// Membership roles.
const (
	MemberAdmin  = "admin"
	MemberTester = "tester"
)
