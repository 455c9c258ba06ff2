// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is an app under beta test, owned by exactly one user.
//
// NOTE:
//   - Tester lists are not embedded on Project. All access is stored in the
//     project_memberships collection; the owner holds an implicit admin
//     membership created alongside the project.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Status     string `bson:"status" json:"status"`         // active | beta | paused | closed
	Visibility string `bson:"visibility" json:"visibility"` // public | private

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Project statuses.
const (
	ProjectActive = "active"
	ProjectBeta   = "beta"
	ProjectPaused = "paused"
	ProjectClosed = "closed"
)

// Project visibilities.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// ValidProjectStatus reports whether s is a recognized project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectActive, ProjectBeta, ProjectPaused, ProjectClosed:
		return true
	}
	return false
}

// ValidVisibility reports whether v is a recognized visibility.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}
