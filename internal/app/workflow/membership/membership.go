// internal/app/workflow/membership/membership.go

// Package membership is the workflow engine for project access: join
// requests, owner/admin review, member removal, and member listings. All
// transport concerns stay in features; the engine takes resolved identities
// and returns kinded errors.
package membership

import (
	"context"
	"fmt"

	"github.com/betalift/betalift/internal/app/policy/projectpolicy"
	joinrequeststore "github.com/betalift/betalift/internal/app/store/joinrequests"
	membershipstore "github.com/betalift/betalift/internal/app/store/memberships"
	projectstore "github.com/betalift/betalift/internal/app/store/projects"
	userstore "github.com/betalift/betalift/internal/app/store/users"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/app/system/txn"
	"github.com/betalift/betalift/internal/app/workflow/notify"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Review decisions accepted by ReviewJoinRequest.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Engine runs the membership workflow against the entity store.
type Engine struct {
	db          *mongo.Database
	projects    *projectstore.Store
	memberships *membershipstore.Store
	requests    *joinrequeststore.Store
	users       *userstore.Store
	notify      *notify.Dispatcher
	log         *zap.Logger
}

func New(db *mongo.Database, dispatcher *notify.Dispatcher, log *zap.Logger) *Engine {
	return &Engine{
		db:          db,
		projects:    projectstore.New(db),
		memberships: membershipstore.New(db),
		requests:    joinrequeststore.New(db),
		users:       userstore.New(db),
		notify:      dispatcher,
		log:         log,
	}
}

// RequestToJoin creates a pending join request for the user and notifies the
// project owner. The partial unique index on pending requests serializes
// concurrent submissions; the loser sees Conflict.
func (e *Engine) RequestToJoin(ctx context.Context, projectID, userID primitive.ObjectID, message string) (*models.JoinRequest, error) {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, err
	}
	if project.Status == models.ProjectClosed {
		return nil, apperr.NotFound("project is closed to new testers")
	}

	// The owner already holds the implicit admin membership.
	if project.OwnerID == userID {
		return nil, apperr.Conflict("project owner already has access")
	}

	approved, err := e.memberships.HasApproved(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if approved {
		return nil, apperr.Conflict("already a member of this project")
	}

	req, err := e.requests.Create(ctx, projectID, userID, message)
	if err == joinrequeststore.ErrDuplicatePending {
		return nil, apperr.Conflict("a join request is already pending")
	}
	if err != nil {
		return nil, err
	}

	e.notify.Emit(ctx, project.OwnerID, models.NotifyProjectInvite,
		"New join request",
		fmt.Sprintf("%s wants to join %s", e.displayName(ctx, userID), project.Name))

	return &req, nil
}

// ReviewJoinRequest resolves a pending request. Approval resolves the
// request and upserts the approved membership in one transaction; rejection
// records the reason. Concurrent reviews serialize on the pending-status
// compare-and-set and the loser sees Conflict.
func (e *Engine) ReviewJoinRequest(ctx context.Context, requestID, reviewerID primitive.ObjectID, decision, reason string) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return apperr.Validation("decision must be %q or %q", DecisionApprove, DecisionReject)
	}

	req, err := e.requests.GetByID(ctx, requestID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("join request not found")
	}
	if err != nil {
		return err
	}

	project, err := e.projects.GetByID(ctx, req.ProjectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("project not found")
	}
	if err != nil {
		return err
	}

	if project.OwnerID != reviewerID {
		admin, err := projectpolicy.IsProjectAdmin(ctx, e.db, project.ID, reviewerID)
		if err != nil {
			return err
		}
		if !admin {
			return apperr.Forbidden("only the project owner or an admin can review join requests")
		}
	}

	if decision == DecisionReject {
		err = e.requests.Resolve(ctx, req.ID, reviewerID, models.RequestRejected, reason)
		if err == joinrequeststore.ErrNotPending {
			return apperr.Conflict("join request was already resolved")
		}
		if err != nil {
			return err
		}
		e.notify.Emit(ctx, req.UserID, models.NotifyProjectJoinRejected,
			"Join request declined",
			rejectionMessage(project.Name, reason))
		return nil
	}

	// Approve: the request resolution and the membership must land together
	// or not at all.
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		if err := e.requests.Resolve(ctx, req.ID, reviewerID, models.RequestApproved, ""); err != nil {
			return err
		}
		return e.memberships.Approve(ctx, req.ProjectID, req.UserID, models.MemberTester)
	})
	if err == joinrequeststore.ErrNotPending {
		return apperr.Conflict("join request was already resolved")
	}
	if err != nil {
		return err
	}

	e.notify.Emit(ctx, req.UserID, models.NotifyProjectJoined,
		"Join request approved",
		fmt.Sprintf("You can now test %s", project.Name))
	return nil
}

// RemoveMember removes a member from the project. Owners and admins can
// remove anyone but the owner; any member can remove themself (self-leave).
// Join request history is untouched.
func (e *Engine) RemoveMember(ctx context.Context, projectID, actingUserID, targetUserID primitive.ObjectID) error {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("project not found")
	}
	if err != nil {
		return err
	}

	if targetUserID == project.OwnerID {
		return apperr.Conflict("the project owner's membership cannot be removed")
	}
	if actingUserID != targetUserID {
		allowed := actingUserID == project.OwnerID
		if !allowed {
			allowed, err = projectpolicy.IsProjectAdmin(ctx, e.db, projectID, actingUserID)
			if err != nil {
				return err
			}
		}
		if !allowed {
			return apperr.Forbidden("only the project owner or an admin can remove members")
		}
	}

	err = e.memberships.Remove(ctx, projectID, targetUserID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("membership not found")
	}
	return err
}

// SetMemberRole grants or revokes the admin role on an approved membership.
// Owner only; the owner's own membership stays admin.
func (e *Engine) SetMemberRole(ctx context.Context, projectID, actingUserID, targetUserID primitive.ObjectID, role string) error {
	if role != models.MemberAdmin && role != models.MemberTester {
		return apperr.Validation("role must be %q or %q", models.MemberAdmin, models.MemberTester)
	}

	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("project not found")
	}
	if err != nil {
		return err
	}
	if actingUserID != project.OwnerID {
		return apperr.Forbidden("only the project owner can change member roles")
	}
	if targetUserID == project.OwnerID {
		return apperr.Conflict("the project owner's role cannot be changed")
	}

	err = e.memberships.SetRole(ctx, projectID, targetUserID, role)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("approved membership not found")
	}
	return err
}

// ListMembers returns project memberships ordered by joined_at descending.
// status narrows to one membership status when non-empty. The project must
// be visible to the viewer; missing and invisible projects both read as
// NotFound.
func (e *Engine) ListMembers(ctx context.Context, projectID, viewerID primitive.ObjectID, status, before, after string) ([]models.ProjectMembership, paging.Result, error) {
	if status != "" && status != models.MembershipPending &&
		status != models.MembershipApproved && status != models.MembershipRejected {
		return nil, paging.Result{}, apperr.Validation("unrecognized membership status %q", status)
	}
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return nil, paging.Result{}, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, paging.Result{}, err
	}
	visible, err := projectpolicy.CanView(ctx, e.db, project, viewerID)
	if err != nil {
		return nil, paging.Result{}, err
	}
	if !visible {
		return nil, paging.Result{}, apperr.NotFound("project not found")
	}
	return e.memberships.ListByProject(ctx, projectID, status, before, after)
}

// ListJoinRequests returns the project's join request history, newest first.
func (e *Engine) ListJoinRequests(ctx context.Context, projectID, actingUserID primitive.ObjectID, status, before, after string) ([]models.JoinRequest, paging.Result, error) {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return nil, paging.Result{}, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, paging.Result{}, err
	}
	if project.OwnerID != actingUserID {
		admin, err := projectpolicy.IsProjectAdmin(ctx, e.db, projectID, actingUserID)
		if err != nil {
			return nil, paging.Result{}, err
		}
		if !admin {
			return nil, paging.Result{}, apperr.Forbidden("only the project owner or an admin can view join requests")
		}
	}
	return e.requests.ListByProject(ctx, projectID, status, before, after)
}

func (e *Engine) displayName(ctx context.Context, userID primitive.ObjectID) string {
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return "A tester"
	}
	return u.DisplayName
}

func rejectionMessage(projectName, reason string) string {
	if reason == "" {
		return fmt.Sprintf("Your request to join %s was declined", projectName)
	}
	return fmt.Sprintf("Your request to join %s was declined: %s", projectName, reason)
}
