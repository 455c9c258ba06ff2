// internal/domain/models/feedbackcomment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackComment is a discussion entry under a piece of feedback. Creating
// one increments Feedback.CommentCount in the same transaction.
type FeedbackComment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID primitive.ObjectID `bson:"feedback_id" json:"feedback_id"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Content    string             `bson:"content" json:"content"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
