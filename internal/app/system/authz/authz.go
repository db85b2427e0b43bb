// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller passed explicitly into every mutating
// engine operation. The engine never reads identity from the request.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsTeacher reports whether the actor is a teacher.
func (a Actor) IsTeacher() bool { return a.Role == models.RoleTeacher }

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// ActorFrom returns the Actor for the signed-in user. ok is false when no
// user is present or the session carries a malformed user id; callers
// should treat that as unauthenticated.
func ActorFrom(r *http.Request) (Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: strings.ToLower(u.Role)}, true
}

// HasAnyRole reports whether the signed-in user has one of roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	a, ok := ActorFrom(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if a.Role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
