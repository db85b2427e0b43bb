// Package leavestore holds leave requests and reconciles approved leave
// into the attendance ledger.
package leavestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/attendhub/internal/app/system/txn"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Students is the roster lookup leave application needs.
type Students interface {
	GetStudent(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
}

type Store struct {
	db       *mongo.Database
	c        *mongo.Collection
	records  *mongo.Collection
	students Students
	log      *zap.Logger
}

func New(db *mongo.Database, students Students, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:       db,
		c:        db.Collection("leave_requests"),
		records:  db.Collection("attendance_records"),
		students: students,
		log:      logger,
	}
}

// Application is a new leave request.
type Application struct {
	StudentID primitive.ObjectID
	FromDate  string
	ToDate    string
	LeaveType string
	Reason    string
}

// Apply files a pending leave request. Students apply for themselves;
// admins may apply on a student's behalf.
func (s *Store) Apply(ctx context.Context, actor authz.Actor, in Application) (models.LeaveRequest, error) {
	from, to, err := dates.Range(in.FromDate, in.ToDate)
	if err != nil {
		return models.LeaveRequest{}, err
	}
	if !models.ValidLeaveType(in.LeaveType) {
		return models.LeaveRequest{}, apperr.Invalid("leave_type", "must be Medical, Personal or OnDuty")
	}

	st, err := s.students.GetStudent(ctx, in.StudentID)
	if err != nil {
		return models.LeaveRequest{}, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		if st.UserID == nil || *st.UserID != actor.ID {
			return models.LeaveRequest{}, apperr.Forbidden("students may only apply for their own leave")
		}
	default:
		return models.LeaveRequest{}, apperr.Forbidden("only students and admins apply for leave")
	}
	if !st.Active() {
		return models.LeaveRequest{}, apperr.Invalid("student_id", "student "+st.RollNumber+" is inactive")
	}

	now := time.Now().UTC()
	l := models.LeaveRequest{
		ID:        primitive.NewObjectID(),
		RefCode:   uuid.NewString(),
		StudentID: st.ID,
		FromDate:  from,
		ToDate:    to,
		LeaveType: in.LeaveType,
		Reason:    htmlsanitize.PlainText(in.Reason),
		Status:    models.LeavePending,
		AppliedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.LeaveRequest{}, err
	}
	return l, nil
}

// Get loads a leave request or returns a NotFoundError.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.LeaveRequest, error) {
	var l models.LeaveRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("leave", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	StudentID primitive.ObjectID
	Status    string
}

// List returns leave requests newest first.
func (s *Store) List(ctx context.Context, f Filter, limit int) ([]models.LeaveRequest, error) {
	filter := bson.M{}
	if !f.StudentID.IsZero() {
		filter["student_id"] = f.StudentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LeaveRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func canDecide(actor authz.Actor) error {
	if actor.IsAdmin() || actor.IsTeacher() {
		return nil
	}
	return apperr.Forbidden("only teachers and admins decide leave")
}

// decide moves a pending leave to status. The status guard on the update
// makes a concurrent second decision fail instead of overwriting the first.
func (s *Store) decide(ctx context.Context, actor authz.Actor, id primitive.ObjectID, status string, now time.Time) (*models.LeaveRequest, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != models.LeavePending {
		return nil, &apperr.InvalidStateError{Kind: "leave", ID: id.Hex(), Current: l.Status, Want: models.LeavePending}
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.LeavePending},
		bson.M{"$set": bson.M{
			"status":     status,
			"decided_by": actor.ID,
			"decided_at": now,
			"updated_at": now,
		}})
	if err != nil {
		return nil, err
	}
	if res.ModifiedCount == 0 {
		return nil, &apperr.InvalidStateError{Kind: "leave", ID: id.Hex(), Current: "decided", Want: models.LeavePending}
	}

	l.Status = status
	l.DecidedBy = &actor.ID
	l.DecidedAt = &now
	l.UpdatedAt = now
	return l, nil
}

// Approve approves a pending leave and rewrites the student's existing
// attendance in [FromDate, ToDate] to OD. No records are created and
// locked records keep their status.
func (s *Store) Approve(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (models.LeaveRequest, error) {
	if err := canDecide(actor); err != nil {
		return models.LeaveRequest{}, err
	}

	var out models.LeaveRequest
	now := time.Now().UTC()
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		l, err := s.decide(ctx, actor, id, models.LeaveApproved, now)
		if err != nil {
			return err
		}

		res, err := s.records.UpdateMany(ctx,
			bson.M{
				"student_id": l.StudentID,
				"date":       bson.M{"$gte": l.FromDate, "$lte": l.ToDate},
				"is_locked":  bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{
				"status":  models.StatusOD,
				"remarks": l.LeaveType + " leave approved",
			}})
		if err != nil {
			return err
		}

		l.ReconciledCount = int(res.MatchedCount)
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
			bson.M{"$set": bson.M{"reconciled_count": l.ReconciledCount}}); err != nil {
			return err
		}
		out = *l
		return nil
	})
	if err != nil {
		return models.LeaveRequest{}, err
	}

	s.log.Info("leave approved",
		zap.String("leave_id", id.Hex()),
		zap.String("student_id", out.StudentID.Hex()),
		zap.Int("reconciled", out.ReconciledCount))
	return out, nil
}

// Reject rejects a pending leave. The ledger is not touched.
func (s *Store) Reject(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (models.LeaveRequest, error) {
	if err := canDecide(actor); err != nil {
		return models.LeaveRequest{}, err
	}
	l, err := s.decide(ctx, actor, id, models.LeaveRejected, time.Now().UTC())
	if err != nil {
		return models.LeaveRequest{}, err
	}
	s.log.Info("leave rejected", zap.String("leave_id", id.Hex()))
	return *l, nil
}
