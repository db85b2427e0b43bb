// Package rosterstore holds the academic structure: programs, students,
// teachers, subjects, teacher assignments and timetable slots.
//
// Referential checks (a student's program exists, an assignment's teacher
// and subject exist) happen here; attendance and leave logic do not live
// in this package.
package rosterstore

import (
	"context"
	"errors"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateProgramCode = errors.New("a program with this code already exists")
	ErrDuplicateRollNumber  = errors.New("a student with this roll number already exists")
	ErrDuplicateSubjectCode = errors.New("a subject with this code already exists")
	ErrDuplicateAssignment  = errors.New("this teacher is already assigned to the subject for that batch and division")
)

// IsDuplicate reports whether err is one of the duplicate-key sentinels.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateProgramCode) || errors.Is(err, ErrDuplicateRollNumber) ||
		errors.Is(err, ErrDuplicateSubjectCode) || errors.Is(err, ErrDuplicateAssignment)
}

type Store struct {
	programs    *mongo.Collection
	students    *mongo.Collection
	teachers    *mongo.Collection
	subjects    *mongo.Collection
	assignments *mongo.Collection
	timetable   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		programs:    db.Collection("programs"),
		students:    db.Collection("students"),
		teachers:    db.Collection("teachers"),
		subjects:    db.Collection("subjects"),
		assignments: db.Collection("teacher_subjects"),
		timetable:   db.Collection("timetable_slots"),
	}
}

// findByID decodes the document with _id into out, translating a miss
// into a NotFoundError of kind.
func findByID(ctx context.Context, c *mongo.Collection, kind string, id primitive.ObjectID, out any) error {
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(kind, id.Hex())
	}
	return err
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
