package roster

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	rosterstore "github.com/dalemusser/attendhub/internal/app/store/roster"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/app/system/txn"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type teacherRequest struct {
	Name        string      `json:"name"`
	TeacherType string      `json:"teacher_type"`
	Contact     string      `json:"contact,omitempty"`
	Login       *loginInput `json:"login,omitempty"`
}

type studentRequest struct {
	RollNumber string      `json:"roll_number"`
	Name       string      `json:"name"`
	ProgramID  string      `json:"program_id"`
	Batch      string      `json:"batch"`
	Division   string      `json:"division"`
	Semester   int         `json:"semester"`
	Login      *loginInput `json:"login,omitempty"`
}

// createLogin makes the linked account when in is non-nil. It runs inside
// the caller's transaction.
func (h *Handler) createLogin(ctx context.Context, in *loginInput, fullName, role string) (*primitive.ObjectID, error) {
	if in == nil {
		return nil, nil
	}
	if in.Email != "" && !inputval.IsValidEmail(in.Email) {
		return nil, apperr.Invalid("login.email", "is not a valid email address")
	}
	u, err := h.Users.Create(ctx, models.User{
		LoginID:  in.LoginID,
		Email:    in.Email,
		FullName: fullName,
		Role:     role,
	}, in.Password)
	if err != nil {
		return nil, err
	}
	return &u.ID, nil
}

// HandleCreateTeacher handles POST /admin/teachers.
func (h *Handler) HandleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req teacherRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var tc models.Teacher
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		userID, err := h.createLogin(ctx, req.Login, req.Name, models.RoleTeacher)
		if err != nil {
			return err
		}
		tc, err = h.Roster.CreateTeacher(ctx, models.Teacher{
			UserID:      userID,
			Name:        req.Name,
			TeacherType: req.TeacherType,
			Contact:     req.Contact,
		})
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventTeacherCreated, tc.ID, map[string]string{"name": tc.Name})
	httputil.WriteJSON(w, http.StatusCreated, tc)
}

// ServeTeachers handles GET /admin/teachers[?active=true].
func (h *Handler) ServeTeachers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Roster.ListTeachers(ctx, query.Get(r, "active") == "true")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"teachers": list})
}

// HandleDeactivateTeacher handles POST /admin/teachers/{id}/deactivate.
func (h *Handler) HandleDeactivateTeacher(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	id, err := inputval.ObjectID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Roster.DeactivateTeacher(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventTeacherDeactivated, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateStudent handles POST /admin/students.
func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req studentRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	programID, err := inputval.ObjectID("program_id", req.ProgramID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var st models.Student
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		userID, err := h.createLogin(ctx, req.Login, req.Name, models.RoleStudent)
		if err != nil {
			return err
		}
		st, err = h.Roster.CreateStudent(ctx, models.Student{
			UserID:     userID,
			RollNumber: req.RollNumber,
			Name:       req.Name,
			ProgramID:  programID,
			Batch:      req.Batch,
			Division:   req.Division,
			Semester:   req.Semester,
		})
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventStudentCreated, st.ID, map[string]string{"roll_number": st.RollNumber})
	httputil.WriteJSON(w, http.StatusCreated, st)
}

// ServeStudents handles GET /admin/students?program=&semester=&batch=&division=&active=.
func (h *Handler) ServeStudents(w http.ResponseWriter, r *http.Request) {
	programID, err := inputval.OptionalObjectID("program", query.Get(r, "program"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f := rosterstore.StudentFilter{
		ProgramID:  programID,
		Batch:      query.Get(r, "batch"),
		Division:   query.Get(r, "division"),
		ActiveOnly: query.Get(r, "active") != "false",
	}
	if s := query.Get(r, "semester"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.fail(w, r, apperr.Invalid("semester", "must be a number"))
			return
		}
		f.Semester = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Roster.ListStudents(ctx, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"students": list})
}

// HandleDeactivateStudent handles POST /admin/students/{id}/deactivate.
func (h *Handler) HandleDeactivateStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	id, err := inputval.ObjectID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Roster.DeactivateStudent(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventStudentDeactivated, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
