package rosterstore

import (
	"context"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateSubject validates and inserts sub. Subjects are immutable once
// created; there is no update.
func (s *Store) CreateSubject(ctx context.Context, sub models.Subject) (models.Subject, error) {
	sub.ID = primitive.NewObjectID()
	sub.Code = normalize.Code(sub.Code)
	sub.Name = normalize.Name(sub.Name)
	if sub.ClassType == "" {
		sub.ClassType = "Theory"
	}

	switch {
	case sub.Code == "":
		return models.Subject{}, apperr.Invalid("code", "is required")
	case sub.Name == "":
		return models.Subject{}, apperr.Invalid("name", "is required")
	case !models.ValidSubjectType(sub.SubjectType):
		return models.Subject{}, apperr.Invalid("subject_type", "is not a known subject type")
	case !models.ValidClassType(sub.ClassType):
		return models.Subject{}, apperr.Invalid("class_type", "must be Theory or Lab")
	case sub.Semester < 1:
		return models.Subject{}, apperr.Invalid("semester", "must be at least 1")
	case sub.Credits < 0:
		return models.Subject{}, apperr.Invalid("credits", "must not be negative")
	}

	if _, err := s.GetProgram(ctx, sub.ProgramID); err != nil {
		return models.Subject{}, err
	}

	if _, err := s.subjects.InsertOne(ctx, sub); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Subject{}, ErrDuplicateSubjectCode
		}
		return models.Subject{}, err
	}
	return sub, nil
}

// GetSubject loads a subject or returns a NotFoundError.
func (s *Store) GetSubject(ctx context.Context, id primitive.ObjectID) (*models.Subject, error) {
	var sub models.Subject
	if err := findByID(ctx, s.subjects, "subject", id, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubjectsForProgramAndSemester returns the subjects taught in one
// semester of a program, ordered by code.
func (s *Store) SubjectsForProgramAndSemester(ctx context.Context, programID primitive.ObjectID, semester int) ([]models.Subject, error) {
	return findAll[models.Subject](ctx, s.subjects,
		bson.M{"program_id": programID, "semester": semester},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

// ListSubjects returns subjects, optionally narrowed to a program.
func (s *Store) ListSubjects(ctx context.Context, programID primitive.ObjectID) ([]models.Subject, error) {
	filter := bson.M{}
	if !programID.IsZero() {
		filter["program_id"] = programID
	}
	return findAll[models.Subject](ctx, s.subjects, filter,
		options.Find().SetSort(bson.D{{Key: "semester", Value: 1}, {Key: "code", Value: 1}}))
}
