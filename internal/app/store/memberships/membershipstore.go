// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("project_memberships")}
}

var (
	// ErrDuplicateMembership is returned when a membership already exists
	// for the (project, user) pair.
	ErrDuplicateMembership = errors.New("user already has a membership in this project")

	errBadRole = errors.New(`role must be "admin" or "tester"`)
)

// Get loads the membership for (projectID, userID). Returns
// mongo.ErrNoDocuments when none exists.
func (s *Store) Get(ctx context.Context, projectID, userID primitive.ObjectID) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetApproved loads the membership only if it is approved.
func (s *Store) GetApproved(ctx context.Context, projectID, userID primitive.ObjectID) (*models.ProjectMembership, error) {
	var m models.ProjectMembership
	err := s.c.FindOne(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.MembershipApproved,
	}).Decode(&m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert creates a membership row. The unique index on (project_id, user_id)
// rejects duplicates.
func (s *Store) Insert(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	if role != models.MemberAdmin && role != models.MemberTester {
		return errBadRole
	}
	now := time.Now().UTC()
	_, err := s.c.InsertOne(ctx, models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.MembershipApproved,
		Role:      role,
		JoinedAt:  now,
		CreatedAt: now,
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Approve upserts an approved membership for (projectID, userID) with
// joined_at set to now. A previously rejected or removed membership is
// reactivated in place; the unique index makes concurrent upserts converge
// on one document.
func (s *Store) Approve(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	if role != models.MemberAdmin && role != models.MemberTester {
		return errBadRole
	}
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID},
		bson.M{
			"$set": bson.M{
				"status":    models.MembershipApproved,
				"role":      role,
				"joined_at": now,
			},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if wafflemongo.IsDup(err) {
		// Lost an upsert race; the membership exists, so converge via a
		// plain update.
		_, err = s.c.UpdateOne(ctx,
			bson.M{"project_id": projectID, "user_id": userID},
			bson.M{"$set": bson.M{"status": models.MembershipApproved, "role": role, "joined_at": now}},
		)
	}
	return err
}

// SetRole changes the role on an approved membership. Returns
// mongo.ErrNoDocuments when no approved membership exists.
func (s *Store) SetRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	if role != models.MemberAdmin && role != models.MemberTester {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID, "status": models.MembershipApproved},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Remove deletes the membership document for (projectID, userID). Returns
// mongo.ErrNoDocuments when there is nothing to remove.
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByProject returns memberships for a project ordered by joined_at
// descending, optionally filtered by status, using keyset pagination.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, status, before, after string) ([]models.ProjectMembership, paging.Result, error) {
	filter := bson.M{"project_id": projectID}
	if status != "" {
		filter["status"] = status
	}

	w := paging.Keyset(-1, before, after)
	if cond := w.Filter("joined_at"); cond != nil {
		filter = bson.M{"$and": []bson.M{filter, cond}}
	}
	find := options.Find()
	w.ApplyToFind(find, "joined_at")

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)

	var rows []models.ProjectMembership
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}

// CountByProject returns the number of memberships for a project,
// optionally filtered by status.
func (s *Store) CountByProject(ctx context.Context, projectID primitive.ObjectID, status string) (int64, error) {
	filter := bson.M{"project_id": projectID}
	if status != "" {
		filter["status"] = status
	}
	return s.c.CountDocuments(ctx, filter)
}

// HasApproved reports whether (projectID, userID) has an approved
// membership.
func (s *Store) HasApproved(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.MembershipApproved,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
