// internal/app/store/feedbackcomments/commentstore.go
package feedbackcommentstore

import (
	"context"
	"time"

	"github.com/betalift/betalift/internal/app/system/normalize"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback_comments")}
}

// NewComment builds a comment document. The workflow validates length and
// sanitizes the content before calling Insert.
func NewComment(feedbackID, authorID primitive.ObjectID, content string) models.FeedbackComment {
	return models.FeedbackComment{
		ID:         primitive.NewObjectID(),
		FeedbackID: feedbackID,
		AuthorID:   authorID,
		Content:    normalize.Text(content),
		CreatedAt:  time.Now().UTC(),
	}
}

// Insert writes a comment. Callers pair it with the feedback counter bump in
// one transaction.
func (s *Store) Insert(ctx context.Context, c models.FeedbackComment) error {
	_, err := s.c.InsertOne(ctx, c)
	return err
}

// ListByFeedback returns comments oldest first with keyset pagination.
func (s *Store) ListByFeedback(ctx context.Context, feedbackID primitive.ObjectID, before, after string) ([]models.FeedbackComment, paging.Result, error) {
	filter := bson.M{"feedback_id": feedbackID}

	w := paging.Keyset(1, before, after)
	if cond := w.Filter("created_at"); cond != nil {
		filter = bson.M{"$and": []bson.M{filter, cond}}
	}
	find := options.Find()
	w.ApplyToFind(find, "created_at")

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)

	var rows []models.FeedbackComment
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}

// Count returns the number of comments on a feedback item. Used by counter
// reconciliation.
func (s *Store) Count(ctx context.Context, feedbackID primitive.ObjectID) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"feedback_id": feedbackID})
	return int(n), err
}
