// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/betalift/betalift/internal/app/system/normalize"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	errBadStatus     = errors.New(`status must be "active"|"beta"|"paused"|"closed"`)
	errBadVisibility = errors.New(`visibility must be "public"|"private"`)
	errEmptyName     = errors.New("name must not be empty")
)

// GetByID loads a project by ObjectID. Returns mongo.ErrNoDocuments if the
// project does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NewProject builds a normalized Project document ready for insertion. The
// caller inserts it (together with the owner membership) inside a
// transaction, so this does not write.
func NewProject(name, description string, ownerID primitive.ObjectID, visibility string) (models.Project, error) {
	if !models.ValidVisibility(visibility) {
		return models.Project{}, errBadVisibility
	}
	name = normalize.Name(name)
	if name == "" {
		return models.Project{}, errEmptyName
	}
	now := time.Now()
	return models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: normalize.Text(description),
		OwnerID:     ownerID,
		Status:      models.ProjectActive,
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Collection exposes the underlying collection for transactional writes that
// pair the project insert with the owner membership insert.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// Update holds the owner-editable project fields.
type Update struct {
	Name        string
	Description string
	Status      string
	Visibility  string
}

// ApplyUpdate updates a project's mutable fields. Returns
// mongo.ErrNoDocuments when the project does not exist.
func (s *Store) ApplyUpdate(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if !models.ValidProjectStatus(upd.Status) {
		return errBadStatus
	}
	if !models.ValidVisibility(upd.Visibility) {
		return errBadVisibility
	}
	name := normalize.Name(upd.Name)
	if name == "" {
		return errEmptyName
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": normalize.Text(upd.Description),
		"status":      upd.Status,
		"visibility":  upd.Visibility,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListPublic returns public projects, newest first, using keyset pagination.
func (s *Store) ListPublic(ctx context.Context, before, after string) ([]models.Project, paging.Result, error) {
	filter := bson.M{"visibility": models.VisibilityPublic}

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

	var rows []models.Project
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Result{}, err
	}
	if w.Reversed {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)
	return rows, res, nil
}

// ListByOwner returns all projects owned by a user, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Project
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
