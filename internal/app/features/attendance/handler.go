// Package attendance is the HTTP surface of the attendance ledger: session
// submission, record listing, session locks and the class roster used to
// fill a marking sheet.
package attendance

import (
	"context"

	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	attendancestore "github.com/dalemusser/attendhub/internal/app/store/attendance"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Ledger   *attendancestore.Store
	Roster   *rosterstore.Store
	PageSize int
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, cfg attendancestore.Config, logger *zap.Logger) *Handler {
	roster := rosterstore.New(db)
	return &Handler{
		Log:      logger,
		ErrLog:   apierrors.NewErrorLogger(logger),
		AuditLog: audit,
		Ledger:   attendancestore.New(db, roster, cfg, logger),
		Roster:   roster,
		PageSize: cfg.PageSize,
	}
}

// teacherFor returns the teacher profile linked to a teacher actor.
func (h *Handler) teacherFor(ctx context.Context, actor authz.Actor) (*models.Teacher, error) {
	tc, err := h.Roster.TeacherByUserID(ctx, actor.ID)
	if apperr.IsNotFound(err) {
		return nil, apperr.Forbidden("no teacher profile is linked to this account")
	}
	return tc, err
}

// studentFor returns the student profile linked to a student actor.
func (h *Handler) studentFor(ctx context.Context, actor authz.Actor) (*models.Student, error) {
	st, err := h.Roster.StudentByUserID(ctx, actor.ID)
	if apperr.IsNotFound(err) {
		return nil, apperr.Forbidden("no student profile is linked to this account")
	}
	return st, err
}

// resolveTeacherID picks the teacher a submission is recorded under:
// teachers always record as themselves; admins must name one.
func (h *Handler) resolveTeacherID(ctx context.Context, actor authz.Actor, requested primitive.ObjectID) (primitive.ObjectID, error) {
	if actor.IsTeacher() {
		tc, err := h.teacherFor(ctx, actor)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return tc.ID, nil
	}
	if !actor.IsAdmin() {
		return primitive.NilObjectID, apperr.Forbidden("only teachers and admins record attendance")
	}
	if requested.IsZero() {
		return primitive.NilObjectID, apperr.Invalid("teacher_id", "is required")
	}
	return requested, nil
}
