// Package reportpolicy decides whose attendance a caller may see.
//
// Authorization rules:
//   - Admins and teachers can view reports for any student and cohort
//     reports (defaulters, student-wise report)
//   - Students can only view their own reports
package reportpolicy

import (
	"context"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentLookup resolves the student profile linked to a login.
type StudentLookup interface {
	StudentByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Student, error)
}

// ResolveStudent returns the student whose report actor may view.
//
// Admins and teachers must name a student. A student may leave requested
// zero to mean themselves; naming anyone else is forbidden.
func ResolveStudent(ctx context.Context, actor authz.Actor, students StudentLookup, requested primitive.ObjectID) (primitive.ObjectID, error) {
	switch {
	case actor.IsAdmin(), actor.IsTeacher():
		if requested.IsZero() {
			return primitive.NilObjectID, apperr.Invalid("student_id", "is required")
		}
		return requested, nil
	case actor.IsStudent():
		own, err := students.StudentByUserID(ctx, actor.ID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return primitive.NilObjectID, apperr.Forbidden("no student profile is linked to this account")
			}
			return primitive.NilObjectID, err
		}
		if !requested.IsZero() && requested != own.ID {
			return primitive.NilObjectID, apperr.Forbidden("students may only view their own attendance")
		}
		return own.ID, nil
	default:
		return primitive.NilObjectID, apperr.Forbidden("unknown role")
	}
}

// CanViewCohort reports whether actor may see reports spanning many
// students.
func CanViewCohort(actor authz.Actor) bool {
	return actor.IsAdmin() || actor.IsTeacher()
}
