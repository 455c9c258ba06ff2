// internal/app/policy/projectpolicy.go
package projectpolicy

import (
	"context"
	"net/http"

	"github.com/betalift/betalift/internal/app/system/authz"
	"github.com/betalift/betalift/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsProjectAdmin returns true if the given user holds an approved admin
// membership in the project according to the authoritative
// project_memberships collection. Project owners always hold one (it is
// created with the project), so this also covers ownership.
func IsProjectAdmin(ctx context.Context, db *mongo.Database, projectID, userID primitive.ObjectID) (bool, error) {
	c := db.Collection("project_memberships")
	n, err := c.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.MembershipApproved,
		"role":       models.MemberAdmin,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsApprovedMember returns true if the user holds any approved membership in
// the project, regardless of role.
func IsApprovedMember(ctx context.Context, db *mongo.Database, projectID, userID primitive.ObjectID) (bool, error) {
	c := db.Collection("project_memberships")
	n, err := c.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
		"status":     models.MembershipApproved,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanManageProject reports whether the current request user can administer
// the project: edit it, review join requests, remove members, change member
// roles, and move feedback through its lifecycle.
// - The owner always can
// - Approved admin members can
// Returns an error if the database check fails, allowing callers to
// distinguish between "not authorized" (false, nil) and "database error"
// (false, err).
func CanManageProject(ctx context.Context, db *mongo.Database, r *http.Request, project *models.Project) (bool, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false, nil
	}
	if project.OwnerID == uid {
		return true, nil
	}
	return IsProjectAdmin(ctx, db, project.ID, uid)
}

// CanView reports whether userID may read the project and its feedback,
// comments, and member list. Public projects are visible to any signed-in
// user; private projects require ownership or an approved membership.
func CanView(ctx context.Context, db *mongo.Database, project *models.Project, userID primitive.ObjectID) (bool, error) {
	if project.Visibility == models.VisibilityPublic {
		return true, nil
	}
	if project.OwnerID == userID {
		return true, nil
	}
	return IsApprovedMember(ctx, db, project.ID, userID)
}

// CanViewProject is CanView with the user resolved from the request context.
func CanViewProject(ctx context.Context, db *mongo.Database, r *http.Request, project *models.Project) (bool, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false, nil
	}
	return CanView(ctx, db, project, uid)
}
