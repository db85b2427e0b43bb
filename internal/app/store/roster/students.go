package rosterstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateStudent validates and inserts st as an active student. The program
// must exist and the semester must fall within its duration.
func (s *Store) CreateStudent(ctx context.Context, st models.Student) (models.Student, error) {
	st.ID = primitive.NewObjectID()
	st.RollNumber = normalize.RollNumber(st.RollNumber)
	st.Name = normalize.Name(st.Name)
	st.NameCI = text.Fold(st.Name)
	st.Batch = normalize.Label(st.Batch)
	st.Division = normalize.Label(st.Division)
	st.Status = models.StatusActive

	switch {
	case st.RollNumber == "":
		return models.Student{}, apperr.Invalid("roll_number", "is required")
	case st.Name == "":
		return models.Student{}, apperr.Invalid("name", "is required")
	case st.Semester < 1:
		return models.Student{}, apperr.Invalid("semester", "must be at least 1")
	}

	prog, err := s.GetProgram(ctx, st.ProgramID)
	if err != nil {
		return models.Student{}, err
	}
	if st.Semester > prog.Duration {
		return models.Student{}, apperr.Invalid("semester", "exceeds the program's duration")
	}

	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	if _, err := s.students.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateRollNumber
		}
		return models.Student{}, err
	}
	return st, nil
}

// GetStudent loads a student or returns a NotFoundError.
func (s *Store) GetStudent(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	if err := findByID(ctx, s.students, "student", id, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStudents loads the students with the given ids, keyed by id. Missing
// ids are simply absent from the map.
func (s *Store) GetStudents(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Student, error) {
	out := make(map[primitive.ObjectID]models.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := findAll[models.Student](ctx, s.students, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, st := range rows {
		out[st.ID] = st
	}
	return out, nil
}

// StudentByUserID returns the student linked to a login.
func (s *Store) StudentByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	err := s.students.FindOne(ctx, bson.M{"user_id": userID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("student", "user "+userID.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// LinkStudentUser binds a student record to a login account.
func (s *Store) LinkStudentUser(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.students.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"user_id": userID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("student", id.Hex())
	}
	return nil
}

// DeactivateStudent soft-deletes a student. Records are kept.
func (s *Store) DeactivateStudent(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.students.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.StatusInactive, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("student", id.Hex())
	}
	return nil
}

// StudentFilter narrows ListStudents. Zero fields are ignored.
type StudentFilter struct {
	ProgramID  primitive.ObjectID
	Semester   int
	Batch      string
	Division   string
	ActiveOnly bool
}

func (f StudentFilter) toBSON() bson.M {
	q := bson.M{}
	if !f.ProgramID.IsZero() {
		q["program_id"] = f.ProgramID
	}
	if f.Semester > 0 {
		q["semester"] = f.Semester
	}
	if b := normalize.Label(f.Batch); b != "" {
		q["batch"] = b
	}
	if d := normalize.Label(f.Division); d != "" {
		q["division"] = d
	}
	if f.ActiveOnly {
		q["status"] = models.StatusActive
	}
	return q
}

// ListStudents returns students matching f ordered by roll number.
func (s *Store) ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error) {
	return findAll[models.Student](ctx, s.students, f.toBSON(),
		options.Find().SetSort(bson.D{{Key: "roll_number", Value: 1}}))
}

// StudentsInBatch returns the active students of a program and semester in
// the given batch and division, ordered by roll number. Empty batch or
// division labels match any.
func (s *Store) StudentsInBatch(ctx context.Context, programID primitive.ObjectID, semester int, batch, division string) ([]models.Student, error) {
	return s.ListStudents(ctx, StudentFilter{
		ProgramID:  programID,
		Semester:   semester,
		Batch:      batch,
		Division:   division,
		ActiveOnly: true,
	})
}

