// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a tester-submitted report or suggestion tied to a project.
// Upvotes, Downvotes, and CommentCount are denormalized counters; the
// feedback_votes and feedback_comments collections are the source rows and
// the workflow layer can recompute the counters from them.
type Feedback struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Type        string             `bson:"type" json:"type"` // bug | feature | improvement | other
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Priority    string             `bson:"priority,omitempty" json:"priority,omitempty"` // low | medium | high | critical

	Status     string     `bson:"status" json:"status"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`

	Upvotes      int `bson:"upvotes" json:"upvotes"`
	Downvotes    int `bson:"downvotes" json:"downvotes"`
	CommentCount int `bson:"comment_count" json:"comment_count"`

	DeviceInfo *DeviceInfo `bson:"device_info,omitempty" json:"device_info,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DeviceInfo captures the environment a piece of feedback was filed from.
// InstallID is a per-install UUID minted by the client on first launch.
type DeviceInfo struct {
	InstallID  string `bson:"install_id,omitempty" json:"install_id,omitempty"`
	Platform   string `bson:"platform,omitempty" json:"platform,omitempty"` // ios | android | web
	OSVersion  string `bson:"os_version,omitempty" json:"os_version,omitempty"`
	AppVersion string `bson:"app_version,omitempty" json:"app_version,omitempty"`
	Model      string `bson:"model,omitempty" json:"model,omitempty"`
}

// Feedback statuses.
const (
	FeedbackPending    = "pending"
	FeedbackOpen       = "open"
	FeedbackInProgress = "in-progress"
	FeedbackResolved   = "resolved"
	FeedbackClosed     = "closed"
	FeedbackWontFix    = "wont-fix"
)

// Feedback types.
const (
	FeedbackBug         = "bug"
	FeedbackFeature     = "feature"
	FeedbackImprovement = "improvement"
	FeedbackOther       = "other"
)

// ValidFeedbackType reports whether t is a recognized feedback type.
func ValidFeedbackType(t string) bool {
	switch t {
	case FeedbackBug, FeedbackFeature, FeedbackImprovement, FeedbackOther:
		return true
	}
	return false
}

// ValidPriority reports whether p is a recognized priority. Empty is allowed
// (priority is optional).
func ValidPriority(p string) bool {
	switch p {
	case "", "low", "medium", "high", "critical":
		return true
	}
	return false
}
