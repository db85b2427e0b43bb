package rosterstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func validTeacherType(t string) bool {
	return t == models.TeacherMajor || t == models.TeacherMinor || t == models.TeacherAssistant
}

// CreateTeacher validates and inserts tc as an active teacher.
func (s *Store) CreateTeacher(ctx context.Context, tc models.Teacher) (models.Teacher, error) {
	tc.ID = primitive.NewObjectID()
	tc.Name = normalize.Name(tc.Name)
	tc.NameCI = text.Fold(tc.Name)
	tc.Status = models.StatusActive
	if tc.TeacherType == "" {
		tc.TeacherType = models.TeacherMajor
	}

	if tc.Name == "" {
		return models.Teacher{}, apperr.Invalid("name", "is required")
	}
	if !validTeacherType(tc.TeacherType) {
		return models.Teacher{}, apperr.Invalid("teacher_type", "must be Major, Minor or Assistant")
	}

	now := time.Now().UTC()
	tc.CreatedAt = now
	tc.UpdatedAt = now
	if _, err := s.teachers.InsertOne(ctx, tc); err != nil {
		return models.Teacher{}, err
	}
	return tc, nil
}

// GetTeacher loads a teacher or returns a NotFoundError.
func (s *Store) GetTeacher(ctx context.Context, id primitive.ObjectID) (*models.Teacher, error) {
	var tc models.Teacher
	if err := findByID(ctx, s.teachers, "teacher", id, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

// TeacherByUserID returns the teacher linked to a login.
func (s *Store) TeacherByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Teacher, error) {
	var tc models.Teacher
	err := s.teachers.FindOne(ctx, bson.M{"user_id": userID}).Decode(&tc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("teacher", "user "+userID.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

// DeactivateTeacher soft-deletes a teacher.
func (s *Store) DeactivateTeacher(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.teachers.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.StatusInactive, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("teacher", id.Hex())
	}
	return nil
}

// ListTeachers returns teachers ordered by name.
func (s *Store) ListTeachers(ctx context.Context, activeOnly bool) ([]models.Teacher, error) {
	filter := bson.M{}
	if activeOnly {
		filter["status"] = models.StatusActive
	}
	return findAll[models.Teacher](ctx, s.teachers, filter,
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

