// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/betalift/betalift/internal/app/system/normalize"
	"github.com/betalift/betalift/internal/app/system/paging"
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
	return &Store{c: db.Collection("join_requests")}
}

var (
	// ErrDuplicatePending is returned when a pending request already exists
	// for the (project, user) pair.
	ErrDuplicatePending = errors.New("a pending join request already exists for this project")

	// ErrNotPending is returned by Resolve when the request has already been
	// resolved; the caller lost a review race.
	ErrNotPending = errors.New("join request is not pending")
)

// GetByID loads a join request. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.JoinRequest, error) {
	var req models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new pending join request. The partial unique index on
// (project_id, user_id, status=pending) rejects a second outstanding request
// for the same pair; resolved historical requests do not collide.
func (s *Store) Create(ctx context.Context, projectID, userID primitive.ObjectID, message string) (models.JoinRequest, error) {
	req := models.JoinRequest{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Message:   normalize.Text(message),
		Status:    models.RequestPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, ErrDuplicatePending
		}
		return models.JoinRequest{}, err
	}
	return req, nil
}

// HasPending reports whether (projectID, userID) has an outstanding request.
func (s *Store) HasPending(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.RequestPending,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Resolve moves a pending request into a terminal status with a
// compare-and-set on the pending precondition. Exactly one of two
// concurrent Resolve calls succeeds; the loser gets ErrNotPending.
// The request document itself is never deleted: resolved requests are
// append-only history.
func (s *Store) Resolve(ctx context.Context, id, reviewerID primitive.ObjectID, status, rejectionReason string) error {
	if status != models.RequestApproved && status != models.RequestRejected {
		return errors.New(`resolution status must be "approved" or "rejected"`)
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
	}
	if rejectionReason != "" {
		set["rejection_reason"] = normalize.Text(rejectionReason)
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the request does not exist or it is no longer pending;
		// disambiguate for the caller.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return mongo.ErrNoDocuments
		}
		return ErrNotPending
	}
	return nil
}

// ListByProject returns join requests for a project, newest first,
// optionally filtered by status, using keyset pagination.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, status, before, after string) ([]models.JoinRequest, paging.Result, error) {
	filter := bson.M{"project_id": projectID}
	if status != "" {
		filter["status"] = status
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

	var rows []models.JoinRequest
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}
