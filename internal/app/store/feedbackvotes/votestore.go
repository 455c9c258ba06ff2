// internal/app/store/feedbackvotes/votestore.go

// Package feedbackvotestore holds one row per (feedback, user) pair with the
// user's current vote value. The unique index on the pair makes the upsert
// idempotent; the workflow derives counter deltas from the prior value.
package feedbackvotestore

import (
	"context"
	"time"

	"github.com/betalift/betalift/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback_votes")}
}

// Get loads the caller's vote on a feedback item. Returns
// mongo.ErrNoDocuments when the user has not voted.
func (s *Store) Get(ctx context.Context, feedbackID, userID primitive.ObjectID) (*models.FeedbackVote, error) {
	var v models.FeedbackVote
	err := s.c.FindOne(ctx, bson.M{"feedback_id": feedbackID, "user_id": userID}).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Upsert sets the user's vote to value and returns the prior value ("" when
// the row is new). Two concurrent first votes can both miss the row and race
// the insert; the unique index rejects the loser, which retries as a plain
// update.
func (s *Store) Upsert(ctx context.Context, feedbackID, userID primitive.ObjectID, value string) (prior string, err error) {
	filter := bson.M{"feedback_id": feedbackID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{"value": value, "updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var before models.FeedbackVote
	err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	switch {
	case err == mongo.ErrNoDocuments:
		return "", nil
	case wafflemongo.IsDup(err):
		err = s.c.FindOneAndUpdate(ctx, filter,
			bson.M{"$set": bson.M{"value": value, "updated_at": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.Before),
		).Decode(&before)
		if err != nil {
			return "", err
		}
		return before.Value, nil
	case err != nil:
		return "", err
	}
	return before.Value, nil
}

// Delete removes the user's vote row, returning the removed value. Returns
// mongo.ErrNoDocuments when no vote existed.
func (s *Store) Delete(ctx context.Context, feedbackID, userID primitive.ObjectID) (string, error) {
	var v models.FeedbackVote
	err := s.c.FindOneAndDelete(ctx, bson.M{"feedback_id": feedbackID, "user_id": userID}).Decode(&v)
	if err != nil {
		return "", err
	}
	return v.Value, nil
}

// Count tallies up and down votes for a feedback item straight from the vote
// rows. Used by counter reconciliation.
func (s *Store) Count(ctx context.Context, feedbackID primitive.ObjectID) (up, down int, err error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"feedback_id": feedbackID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$value",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Value string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		switch r.Value {
		case models.VoteUp:
			up = r.Count
		case models.VoteDown:
			down = r.Count
		}
	}
	return up, down, nil
}
