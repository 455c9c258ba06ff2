// internal/domain/models/feedbackvote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackVote is one user's vote on one piece of feedback. Exactly one
// document per (feedback_id, user_id); changing a vote updates the document
// in place rather than inserting a second one.
type FeedbackVote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID primitive.ObjectID `bson:"feedback_id" json:"feedback_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Value      string             `bson:"value" json:"value"` // up | down
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// Vote values.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ValidVote reports whether v is a recognized vote value.
func ValidVote(v string) bool {
	return v == VoteUp || v == VoteDown
}
