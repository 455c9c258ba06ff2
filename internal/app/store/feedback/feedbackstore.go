// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("feedback")}
}

// ErrStatusChanged is returned by TransitionStatus when the document's
// status no longer matches the expected source state; the caller lost a
// transition race and should re-read.
var ErrStatusChanged = errors.New("feedback status changed concurrently")

// NewFeedback builds a normalized Feedback document in pending state with
// zeroed counters. The workflow validates lengths and membership before
// calling Insert.
func NewFeedback(projectID, authorID primitive.ObjectID, ftype, title, description, priority string, device *models.DeviceInfo) models.Feedback {
	now := time.Now().UTC()
	return models.Feedback{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		AuthorID:    authorID,
		Type:        ftype,
		Title:       normalize.Text(title),
		Description: normalize.Text(description),
		Priority:    priority,
		Status:      models.FeedbackPending,
		DeviceInfo:  device,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Insert writes a feedback document.
func (s *Store) Insert(ctx context.Context, fb models.Feedback) error {
	_, err := s.c.InsertOne(ctx, fb)
	return err
}

// GetByID loads feedback by ObjectID. Returns mongo.ErrNoDocuments if
// missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var fb models.Feedback
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// TransitionStatus moves feedback from one status to another with a
// compare-and-set on the source status. resolved_at is set only when
// entering "resolved" and cleared on no other transition.
func (s *Store) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	set := bson.M{"status": to, "updated_at": time.Now()}
	if to == models.FeedbackResolved {
		set["resolved_at"] = time.Now().UTC()
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return mongo.ErrNoDocuments
		}
		return ErrStatusChanged
	}
	return nil
}

// AdjustVotes applies deltas to the denormalized vote counters. Callers run
// this in the same transaction as the vote row mutation.
func (s *Store) AdjustVotes(ctx context.Context, id primitive.ObjectID, dUp, dDown int) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"upvotes": dUp, "downvotes": dDown},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncCommentCount bumps the denormalized comment counter. Callers run this
// in the same transaction as the comment insert.
func (s *Store) IncCommentCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"comment_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetCounters overwrites the denormalized counters with recomputed values.
// Used by the reconcile/repair operation.
func (s *Store) SetCounters(ctx context.Context, id primitive.ObjectID, upvotes, downvotes, comments int) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"upvotes":       upvotes,
		"downvotes":     downvotes,
		"comment_count": comments,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListFilter narrows ListByProject results.
type ListFilter struct {
	Status string
	Type   string
}

// ListByProject returns feedback for a project, newest first with _id
// tiebreak, using keyset pagination.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, lf ListFilter, before, after string) ([]models.Feedback, paging.Result, error) {
	filter := bson.M{"project_id": projectID}
	if lf.Status != "" {
		filter["status"] = lf.Status
	}
	if lf.Type != "" {
		filter["type"] = lf.Type
	}

	w := paging.Keyset(-1, before, after)
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

	var rows []models.Feedback
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}
