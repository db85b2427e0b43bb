package rosterstore

import (
	"context"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Assign binds a teacher to a subject for a batch and division. Several
// teachers may hold the same subject for the same batch. A zero semester
// defaults to the subject's semester.
func (s *Store) Assign(ctx context.Context, a models.TeacherSubject) (models.TeacherSubject, error) {
	a.ID = primitive.NewObjectID()
	a.Batch = normalize.Label(a.Batch)
	a.Division = normalize.Label(a.Division)
	a.AcademicYear = normalize.Name(a.AcademicYear)

	tc, err := s.GetTeacher(ctx, a.TeacherID)
	if err != nil {
		return models.TeacherSubject{}, err
	}
	if !tc.Active() {
		return models.TeacherSubject{}, apperr.Invalid("teacher_id", "teacher is inactive")
	}
	sub, err := s.GetSubject(ctx, a.SubjectID)
	if err != nil {
		return models.TeacherSubject{}, err
	}
	if a.Semester == 0 {
		a.Semester = sub.Semester
	}
	if a.Semester < 1 {
		return models.TeacherSubject{}, apperr.Invalid("semester", "must be at least 1")
	}

	a.CreatedAt = time.Now().UTC()
	if _, err := s.assignments.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.TeacherSubject{}, ErrDuplicateAssignment
		}
		return models.TeacherSubject{}, err
	}
	return a, nil
}

// IsAssigned reports whether teacherID teaches subjectID. Non-empty batch
// and division narrow the check to that class.
func (s *Store) IsAssigned(ctx context.Context, teacherID, subjectID primitive.ObjectID, batch, division string) (bool, error) {
	filter := bson.M{"teacher_id": teacherID, "subject_id": subjectID}
	if b := normalize.Label(batch); b != "" {
		filter["batch"] = b
	}
	if d := normalize.Label(division); d != "" {
		filter["division"] = d
	}
	n, err := s.assignments.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AssignmentsForTeacher lists a teacher's assignments.
func (s *Store) AssignmentsForTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.TeacherSubject, error) {
	return findAll[models.TeacherSubject](ctx, s.assignments, bson.M{"teacher_id": teacherID},
		options.Find().SetSort(bson.D{{Key: "semester", Value: 1}, {Key: "batch", Value: 1}, {Key: "division", Value: 1}}))
}

// ListAssignments lists assignments, optionally narrowed to a subject.
func (s *Store) ListAssignments(ctx context.Context, subjectID primitive.ObjectID) ([]models.TeacherSubject, error) {
	filter := bson.M{}
	if !subjectID.IsZero() {
		filter["subject_id"] = subjectID
	}
	return findAll[models.TeacherSubject](ctx, s.assignments, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}
