// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account on the platform. A user can publish projects
// as a creator, test other people's projects, or both.
//
// NOTE:
//   - Project access is not embedded on User. Use the project_memberships
//     collection to discover which projects a user belongs to.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName   string             `bson:"display_name" json:"display_name"`
	DisplayNameCI string             `bson:"display_name_ci" json:"display_name_ci"` // lowercase, diacritics-stripped
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	Role          string             `bson:"role" json:"role"` // creator | tester | both
	Bio           string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Status        string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User role tags.
const (
	RoleCreator = "creator"
	RoleTester  = "tester"
	RoleBoth    = "both"
)

// ValidUserRole reports whether role is one of the recognized role tags.
func ValidUserRole(role string) bool {
	switch role {
	case RoleCreator, RoleTester, RoleBoth:
		return true
	}
	return false
}
