// Package attendancestore is the attendance ledger: one record per
// (student, subject, date, session type, period), written a whole session
// at a time.
package attendancestore

import (
	"context"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Roster is the read-only view of the roster the ledger validates against.
type Roster interface {
	GetSubject(ctx context.Context, id primitive.ObjectID) (*models.Subject, error)
	GetTeacher(ctx context.Context, id primitive.ObjectID) (*models.Teacher, error)
	GetStudents(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Student, error)
	IsAssigned(ctx context.Context, teacherID, subjectID primitive.ObjectID, batch, division string) (bool, error)
	AssignmentsForTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.TeacherSubject, error)
	TeacherByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Teacher, error)
}

// Config controls which statuses are accepted and the list page size.
type Config struct {
	Statuses []models.AttendanceStatus
	PageSize int
}

type Store struct {
	db     *mongo.Database
	c      *mongo.Collection
	roster Roster
	cfg    Config
	log    *zap.Logger
}

// New builds the ledger. An empty status list means models.DefaultStatuses.
func New(db *mongo.Database, roster Roster, cfg Config, logger *zap.Logger) *Store {
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = models.DefaultStatuses
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		c:      db.Collection("attendance_records"),
		roster: roster,
		cfg:    cfg,
		log:    logger,
	}
}

// Statuses returns the accepted status set.
func (s *Store) Statuses() []models.AttendanceStatus {
	return s.cfg.Statuses
}

func (s *Store) accepts(st models.AttendanceStatus) bool {
	for _, a := range s.cfg.Statuses {
		if a == st {
			return true
		}
	}
	return false
}

func keyFilter(k models.SessionKey) bson.M {
	return bson.M{
		"subject_id":   k.SubjectID,
		"date":         k.Date,
		"session_type": k.SessionType,
		"period":       k.Period,
	}
}

// SessionRecords returns every record under k ordered by student id.
func (s *Store) SessionRecords(ctx context.Context, k models.SessionKey) ([]models.AttendanceRecord, error) {
	cur, err := s.c.Find(ctx, keyFilter(k),
		options.Find().SetSort(bson.D{{Key: "student_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AttendanceRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
