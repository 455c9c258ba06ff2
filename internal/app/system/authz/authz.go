// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/betalift/betalift/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role tag (lowercased), display name, Mongo
// ObjectID, and a found flag. If no user is present in context or the user
// ID is malformed, it returns "visitor", "", NilObjectID, false, so ok=true
// always means a valid authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// UserID returns just the current user's ObjectID and a found flag.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	_, _, id, ok := UserCtx(r)
	return id, ok
}

// IsCreator reports whether the current user carries the creator role tag
// (creators and "both" users can publish projects).
func IsCreator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "creator" || role == "both")
}

// IsTester reports whether the current user carries the tester role tag.
func IsTester(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "tester" || role == "both")
}
