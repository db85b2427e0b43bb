// Package leaves handles leave applications and their approval.
package leaves

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/attendhub/internal/app/features/errors"
	leavestore "github.com/dalemusser/attendhub/internal/app/store/leaves"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/auditlog"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/paging"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Leaves   *leavestore.Store
	Roster   *rosterstore.Store
	PageSize int
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, pageSize int, logger *zap.Logger) *Handler {
	roster := rosterstore.New(db)
	return &Handler{
		Log:      logger,
		ErrLog:   apierrors.NewErrorLogger(logger),
		AuditLog: audit,
		Leaves:   leavestore.New(db, roster, logger),
		Roster:   roster,
		PageSize: pageSize,
	}
}

type applyRequest struct {
	StudentID string `json:"student_id,omitempty"`
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason,omitempty"`
}

// ownStudentID returns the student profile id linked to a student actor.
func (h *Handler) ownStudentID(ctx context.Context, actor authz.Actor) (primitive.ObjectID, error) {
	st, err := h.Roster.StudentByUserID(ctx, actor.ID)
	if apperr.IsNotFound(err) {
		return primitive.NilObjectID, apperr.Forbidden("no student profile is linked to this account")
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return st.ID, nil
}

// HandleApply handles POST /leaves. Students apply for themselves and may
// omit student_id; admins must name the student.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	studentID, err := inputval.OptionalObjectID("student_id", req.StudentID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if studentID.IsZero() {
		if !actor.IsStudent() {
			h.ErrLog.Write(w, r, apperr.Invalid("student_id", "is required"))
			return
		}
		if studentID, err = h.ownStudentID(ctx, actor); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
	}

	l, err := h.Leaves.Apply(ctx, actor, leavestore.Application{
		StudentID: studentID,
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
		LeaveType: req.LeaveType,
		Reason:    req.Reason,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.AuditLog.LeaveApplied(ctx, r, actor.ID, l)
	httputil.WriteJSON(w, http.StatusCreated, l)
}

// ServeList handles GET /leaves[?status=&student=&limit=]. Students see
// only their own requests.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	f := leavestore.Filter{Status: query.Get(r, "status")}
	if f.Status != "" && !models.ValidLeaveStatus(f.Status) {
		h.ErrLog.Write(w, r, apperr.Invalid("status", "must be pending, approved or rejected"))
		return
	}
	var err error
	if f.StudentID, err = inputval.OptionalObjectID("student", query.Get(r, "student")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if actor.IsStudent() {
		if f.StudentID, err = h.ownStudentID(ctx, actor); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
	}

	list, err := h.Leaves.List(ctx, f, paging.Limit(r, h.PageSize))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"leaves": list})
}

// ServeLeave handles GET /leaves/{id}.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	id, err := inputval.ObjectID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err := h.Leaves.Get(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if actor.IsStudent() {
		own, err := h.ownStudentID(ctx, actor)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		if own != l.StudentID {
			// Other students' requests are reported as missing.
			h.ErrLog.Write(w, r, apperr.NotFound("leave", id.Hex()))
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, l)
}

// HandleApprove handles POST /leaves/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Leaves.Approve)
}

// HandleReject handles POST /leaves/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Leaves.Reject)
}

type decideFunc func(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (models.LeaveRequest, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decideFunc) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	id, err := inputval.ObjectID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, err := fn(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.AuditLog.LeaveDecided(ctx, r, actor.ID, l)
	httputil.WriteJSON(w, http.StatusOK, l)
}
