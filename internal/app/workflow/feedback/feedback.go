// internal/app/workflow/feedback/feedback.go

// Package feedback is the workflow engine for the feedback lifecycle:
// submission, status transitions, voting with derived counters, comments,
// and counter reconciliation.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/betalift/betalift/internal/app/policy/projectpolicy"
	feedbackstore "github.com/betalift/betalift/internal/app/store/feedback"
	feedbackcommentstore "github.com/betalift/betalift/internal/app/store/feedbackcomments"
	feedbackvotestore "github.com/betalift/betalift/internal/app/store/feedbackvotes"
	projectstore "github.com/betalift/betalift/internal/app/store/projects"
	"github.com/betalift/betalift/internal/app/system/paging"
	"github.com/betalift/betalift/internal/app/system/txn"
	"github.com/betalift/betalift/internal/app/workflow/notify"
	"github.com/betalift/betalift/internal/domain/apperr"
	"github.com/betalift/betalift/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Length bounds on submitted text.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
	MaxCommentLen     = 2000
)

// Engine runs the feedback lifecycle against the entity store.
type Engine struct {
	db       *mongo.Database
	feedback *feedbackstore.Store
	votes    *feedbackvotestore.Store
	comments *feedbackcommentstore.Store
	projects *projectstore.Store
	notify   *notify.Dispatcher
	sanitize *bluemonday.Policy
	log      *zap.Logger
}

func New(db *mongo.Database, dispatcher *notify.Dispatcher, log *zap.Logger) *Engine {
	return &Engine{
		db:       db,
		feedback: feedbackstore.New(db),
		votes:    feedbackvotestore.New(db),
		comments: feedbackcommentstore.New(db),
		projects: projectstore.New(db),
		notify:   dispatcher,
		sanitize: bluemonday.StrictPolicy(),
		log:      log,
	}
}

// SubmitInput carries the fields of a feedback submission.
type SubmitInput struct {
	Type        string
	Title       string
	Description string
	Priority    string
	DeviceInfo  *models.DeviceInfo
}

// Submit creates feedback in pending state with zeroed counters. The
// submitter must be the project owner or hold an approved membership.
func (e *Engine) Submit(ctx context.Context, projectID, userID primitive.ObjectID, in SubmitInput) (*models.Feedback, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	switch {
	case title == "":
		return nil, apperr.Validation("title is required")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		return nil, apperr.Validation("title exceeds %d characters", MaxTitleLen)
	case desc == "":
		return nil, apperr.Validation("description is required")
	case utf8.RuneCountInString(desc) > MaxDescriptionLen:
		return nil, apperr.Validation("description exceeds %d characters", MaxDescriptionLen)
	case !models.ValidFeedbackType(in.Type):
		return nil, apperr.Validation("unrecognized feedback type %q", in.Type)
	case !models.ValidPriority(in.Priority):
		return nil, apperr.Validation("unrecognized priority %q", in.Priority)
	}

	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, err
	}
	if project.Status == models.ProjectClosed {
		return nil, apperr.NotFound("project is closed to new feedback")
	}

	if project.OwnerID != userID {
		member, err := projectpolicy.IsApprovedMember(ctx, e.db, projectID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperr.Validation("an approved membership is required to submit feedback")
		}
	}

	fb := feedbackstore.NewFeedback(projectID, userID, in.Type,
		e.sanitize.Sanitize(title), e.sanitize.Sanitize(desc), in.Priority, in.DeviceInfo)
	if err := e.feedback.Insert(ctx, fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

// TransitionStatus moves feedback along the allowed-transition table. Only
// the project owner or an admin may transition; the author is notified. The
// pending-state compare-and-set in the store serializes concurrent
// transitions.
func (e *Engine) TransitionStatus(ctx context.Context, feedbackID, actorID primitive.ObjectID, newStatus string) error {
	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("feedback not found")
	}
	if err != nil {
		return err
	}

	if err := e.requireManager(ctx, fb.ProjectID, actorID, "only the project owner or an admin can change feedback status"); err != nil {
		return err
	}

	if !CanTransition(fb.Status, newStatus) {
		return apperr.Conflict("feedback cannot move from %q to %q", fb.Status, newStatus)
	}

	err = e.feedback.TransitionStatus(ctx, fb.ID, fb.Status, newStatus)
	if err == feedbackstore.ErrStatusChanged {
		return apperr.Conflict("feedback status changed; re-read and retry")
	}
	if err != nil {
		return err
	}

	e.notify.Emit(ctx, fb.AuthorID, models.NotifyFeedbackStatusChanged,
		"Feedback status updated",
		fmt.Sprintf("%q is now %s", fb.Title, newStatus))
	return nil
}

// Vote records the user's up/down vote. Same-value votes are a no-op; a
// changed vote flips both tallies inside one transaction so the counters
// always equal the sum of vote rows.
func (e *Engine) Vote(ctx context.Context, feedbackID, userID primitive.ObjectID, value string) error {
	if !models.ValidVote(value) {
		return apperr.Validation("vote must be %q or %q", models.VoteUp, models.VoteDown)
	}

	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("feedback not found")
	}
	if err != nil {
		return err
	}
	if err := e.requireParticipant(ctx, fb.ProjectID, userID, "an approved membership is required to vote"); err != nil {
		return err
	}

	existing, err := e.votes.Get(ctx, feedbackID, userID)
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}
	if existing != nil && existing.Value == value {
		return nil
	}

	return txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		prior, err := e.votes.Upsert(ctx, feedbackID, userID, value)
		if err != nil {
			return err
		}
		dUp, dDown := voteDeltas(prior, value)
		if dUp == 0 && dDown == 0 {
			// A concurrent request already landed the same value.
			return nil
		}
		return e.feedback.AdjustVotes(ctx, feedbackID, dUp, dDown)
	})
}

// Comment adds a discussion entry and bumps the denormalized comment count
// in the same transaction. The author is notified unless they commented on
// their own feedback.
func (e *Engine) Comment(ctx context.Context, feedbackID, userID primitive.ObjectID, content string) (*models.FeedbackComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return nil, apperr.Validation("content exceeds %d characters", MaxCommentLen)
	}

	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("feedback not found")
	}
	if err != nil {
		return nil, err
	}
	if err := e.requireParticipant(ctx, fb.ProjectID, userID, "an approved membership is required to comment"); err != nil {
		return nil, err
	}

	c := feedbackcommentstore.NewComment(feedbackID, userID, e.sanitize.Sanitize(content))
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		if err := e.comments.Insert(ctx, c); err != nil {
			return err
		}
		return e.feedback.IncCommentCount(ctx, feedbackID, 1)
	})
	if err != nil {
		return nil, err
	}

	if fb.AuthorID != userID {
		e.notify.Emit(ctx, fb.AuthorID, models.NotifyFeedbackComment,
			"New comment",
			fmt.Sprintf("New comment on %q", fb.Title))
	}
	return &c, nil
}

// Counters is the result of a reconciliation pass.
type Counters struct {
	Upvotes      int `json:"upvotes"`
	Downvotes    int `json:"downvotes"`
	CommentCount int `json:"comment_count"`
}

// ReconcileCounters recomputes the denormalized counters from the vote and
// comment rows and overwrites the cached values. Repairs drift left by
// partial failures.
func (e *Engine) ReconcileCounters(ctx context.Context, feedbackID primitive.ObjectID) (Counters, error) {
	if _, err := e.feedback.GetByID(ctx, feedbackID); err != nil {
		if err == mongo.ErrNoDocuments {
			return Counters{}, apperr.NotFound("feedback not found")
		}
		return Counters{}, err
	}

	up, down, err := e.votes.Count(ctx, feedbackID)
	if err != nil {
		return Counters{}, err
	}
	nComments, err := e.comments.Count(ctx, feedbackID)
	if err != nil {
		return Counters{}, err
	}

	if err := e.feedback.SetCounters(ctx, feedbackID, up, down, nComments); err != nil {
		return Counters{}, err
	}
	return Counters{Upvotes: up, Downvotes: down, CommentCount: nComments}, nil
}

// Get returns one piece of feedback plus the viewer's own vote ("" if none).
func (e *Engine) Get(ctx context.Context, feedbackID, viewerID primitive.ObjectID) (*models.Feedback, string, error) {
	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return nil, "", apperr.NotFound("feedback not found")
	}
	if err != nil {
		return nil, "", err
	}
	if err := e.requireVisible(ctx, fb.ProjectID, viewerID, "feedback not found"); err != nil {
		return nil, "", err
	}

	vote, err := e.votes.Get(ctx, feedbackID, viewerID)
	if err == mongo.ErrNoDocuments {
		return fb, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return fb, vote.Value, nil
}

// List returns a project's feedback, newest first with deterministic
// tiebreaks, optionally filtered by status and type. The project must be
// visible to the viewer; missing and invisible projects both read as
// NotFound.
func (e *Engine) List(ctx context.Context, projectID, viewerID primitive.ObjectID, status, ftype, before, after string) ([]models.Feedback, paging.Result, error) {
	if status != "" && !validFeedbackStatus(status) {
		return nil, paging.Result{}, apperr.Validation("unrecognized feedback status %q", status)
	}
	if ftype != "" && !models.ValidFeedbackType(ftype) {
		return nil, paging.Result{}, apperr.Validation("unrecognized feedback type %q", ftype)
	}
	if err := e.requireVisible(ctx, projectID, viewerID, "project not found"); err != nil {
		return nil, paging.Result{}, err
	}
	return e.feedback.ListByProject(ctx, projectID, feedbackstore.ListFilter{Status: status, Type: ftype}, before, after)
}

// ListComments returns a feedback item's comments, oldest first. The
// feedback (and its project) must be visible to the viewer.
func (e *Engine) ListComments(ctx context.Context, feedbackID, viewerID primitive.ObjectID, before, after string) ([]models.FeedbackComment, paging.Result, error) {
	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return nil, paging.Result{}, apperr.NotFound("feedback not found")
	}
	if err != nil {
		return nil, paging.Result{}, err
	}
	if err := e.requireVisible(ctx, fb.ProjectID, viewerID, "feedback not found"); err != nil {
		return nil, paging.Result{}, err
	}
	return e.comments.ListByFeedback(ctx, feedbackID, before, after)
}

// RequireManager verifies the actor owns or administers the project the
// feedback item belongs to.
func (e *Engine) RequireManager(ctx context.Context, feedbackID, userID primitive.ObjectID) error {
	fb, err := e.feedback.GetByID(ctx, feedbackID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("feedback not found")
	}
	if err != nil {
		return err
	}
	return e.requireManager(ctx, fb.ProjectID, userID, "only the project owner or an admin can repair feedback counters")
}

func (e *Engine) requireManager(ctx context.Context, projectID, userID primitive.ObjectID, denied string) error {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("project not found")
	}
	if err != nil {
		return err
	}
	if project.OwnerID == userID {
		return nil
	}
	admin, err := projectpolicy.IsProjectAdmin(ctx, e.db, projectID, userID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.Forbidden("%s", denied)
	}
	return nil
}

func (e *Engine) requireVisible(ctx context.Context, projectID, viewerID primitive.ObjectID, denied string) error {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("%s", denied)
	}
	if err != nil {
		return err
	}
	visible, err := projectpolicy.CanView(ctx, e.db, project, viewerID)
	if err != nil {
		return err
	}
	if !visible {
		return apperr.NotFound("%s", denied)
	}
	return nil
}

func (e *Engine) requireParticipant(ctx context.Context, projectID, userID primitive.ObjectID, denied string) error {
	project, err := e.projects.GetByID(ctx, projectID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("project not found")
	}
	if err != nil {
		return err
	}
	if project.OwnerID == userID {
		return nil
	}
	member, err := projectpolicy.IsApprovedMember(ctx, e.db, projectID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.Forbidden("%s", denied)
	}
	return nil
}

// voteDeltas derives the counter adjustments for a vote change.
func voteDeltas(prior, value string) (dUp, dDown int) {
	if prior == value {
		return 0, 0
	}
	switch prior {
	case models.VoteUp:
		dUp--
	case models.VoteDown:
		dDown--
	}
	switch value {
	case models.VoteUp:
		dUp++
	case models.VoteDown:
		dDown++
	}
	return dUp, dDown
}

func validFeedbackStatus(s string) bool {
	switch s {
	case models.FeedbackPending, models.FeedbackOpen, models.FeedbackInProgress,
		models.FeedbackResolved, models.FeedbackClosed, models.FeedbackWontFix:
		return true
	}
	return false
}
