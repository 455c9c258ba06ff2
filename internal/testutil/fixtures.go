package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/betalift/betalift/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role tag.
func (f *Fixtures) CreateUser(ctx context.Context, displayName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		DisplayName:   displayName,
		DisplayNameCI: text.Fold(displayName),
		Email:         email,
		Role:          role,
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCreator creates a test user with the creator role tag.
func (f *Fixtures) CreateCreator(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, displayName, email, models.RoleCreator)
}

// CreateTester creates a test user with the tester role tag.
func (f *Fixtures) CreateTester(ctx context.Context, displayName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, displayName, email, models.RoleTester)
}

// CreateProject creates a test project owned by ownerID, along with the
// owner's implicit admin membership.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID) models.Project {
	f.t.Helper()
	return f.CreateProjectWithStatus(ctx, name, ownerID, models.ProjectActive, models.VisibilityPublic)
}

// CreateProjectWithStatus creates a test project with an explicit status and
// visibility, along with the owner's implicit admin membership.
func (f *Fixtures) CreateProjectWithStatus(ctx context.Context, name string, ownerID primitive.ObjectID, status, visibility string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project description",
		OwnerID:     ownerID,
		Status:      status,
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	membership := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID,
		UserID:    ownerID,
		Status:    models.MembershipApproved,
		Role:      models.MemberAdmin,
		JoinedAt:  now,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("project_memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create owner membership: %v", err)
	}

	return project
}

// CreateMembership creates an approved tester membership.
func (f *Fixtures) CreateMembership(ctx context.Context, projectID, userID primitive.ObjectID) models.ProjectMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    models.MembershipApproved,
		Role:      models.MemberTester,
		JoinedAt:  now,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("project_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreatePendingRequest creates a pending join request.
func (f *Fixtures) CreatePendingRequest(ctx context.Context, projectID, userID primitive.ObjectID, message string) models.JoinRequest {
	f.t.Helper()

	req := models.JoinRequest{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Message:   message,
		Status:    models.RequestPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("join_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}
	return req
}

// CreateFeedback creates a piece of feedback with zeroed counters.
func (f *Fixtures) CreateFeedback(ctx context.Context, projectID, authorID primitive.ObjectID, title string) models.Feedback {
	f.t.Helper()
	return f.CreateFeedbackWithStatus(ctx, projectID, authorID, title, models.FeedbackPending)
}

// CreateFeedbackWithStatus creates a piece of feedback in the given status.
func (f *Fixtures) CreateFeedbackWithStatus(ctx context.Context, projectID, authorID primitive.ObjectID, title, status string) models.Feedback {
	f.t.Helper()

	now := time.Now().UTC()
	fb := models.Feedback{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		AuthorID:    authorID,
		Type:        models.FeedbackBug,
		Title:       title,
		Description: "Test feedback description",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("feedback").InsertOne(ctx, fb); err != nil {
		f.t.Fatalf("failed to create test feedback: %v", err)
	}
	return fb
}
