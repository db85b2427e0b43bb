package roster

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
)

type subjectRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	SubjectType string `json:"subject_type"`
	ClassType   string `json:"class_type"`
	ProgramID   string `json:"program_id"`
	Semester    int    `json:"semester"`
}

type assignmentRequest struct {
	TeacherID    string `json:"teacher_id"`
	SubjectID    string `json:"subject_id"`
	Batch        string `json:"batch"`
	Division     string `json:"division"`
	Semester     int    `json:"semester,omitempty"`
	AcademicYear string `json:"academic_year,omitempty"`
}

type slotRequest struct {
	SubjectID   string             `json:"subject_id"`
	TeacherID   string             `json:"teacher_id"`
	Day         string             `json:"day"`
	Period      int                `json:"period"`
	SessionType models.SessionType `json:"session_type"`
	Room        string             `json:"room,omitempty"`
	Batch       string             `json:"batch"`
	Division    string             `json:"division"`
}

// HandleCreateSubject handles POST /admin/subjects.
func (h *Handler) HandleCreateSubject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req subjectRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	programID, err := inputval.ObjectID("program_id", req.ProgramID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.Roster.CreateSubject(ctx, models.Subject{
		Code:        req.Code,
		Name:        req.Name,
		Credits:     req.Credits,
		SubjectType: req.SubjectType,
		ClassType:   req.ClassType,
		ProgramID:   programID,
		Semester:    req.Semester,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventSubjectCreated, sub.ID, map[string]string{"code": sub.Code})
	httputil.WriteJSON(w, http.StatusCreated, sub)
}

// ServeSubjects handles GET /admin/subjects[?program=&semester=].
func (h *Handler) ServeSubjects(w http.ResponseWriter, r *http.Request) {
	programID, err := inputval.OptionalObjectID("program", query.Get(r, "program"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var list []models.Subject
	if sem, _ := strconv.Atoi(query.Get(r, "semester")); sem > 0 && !programID.IsZero() {
		list, err = h.Roster.SubjectsForProgramAndSemester(ctx, programID, sem)
	} else {
		list, err = h.Roster.ListSubjects(ctx, programID)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"subjects": list})
}

// HandleAssign handles POST /admin/assignments.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req assignmentRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	teacherID, err := inputval.ObjectID("teacher_id", req.TeacherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subjectID, err := inputval.ObjectID("subject_id", req.SubjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Roster.Assign(ctx, models.TeacherSubject{
		TeacherID:    teacherID,
		SubjectID:    subjectID,
		Batch:        req.Batch,
		Division:     req.Division,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventSubjectAssigned, a.ID, map[string]string{
		"teacher_id": a.TeacherID.Hex(),
		"subject_id": a.SubjectID.Hex(),
		"batch":      a.Batch,
		"division":   a.Division,
	})
	httputil.WriteJSON(w, http.StatusCreated, a)
}

// ServeAssignments handles GET /admin/assignments[?subject=|?teacher=].
func (h *Handler) ServeAssignments(w http.ResponseWriter, r *http.Request) {
	subjectID, err := inputval.OptionalObjectID("subject", query.Get(r, "subject"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	teacherID, err := inputval.OptionalObjectID("teacher", query.Get(r, "teacher"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var list []models.TeacherSubject
	if !teacherID.IsZero() {
		list, err = h.Roster.AssignmentsForTeacher(ctx, teacherID)
	} else {
		list, err = h.Roster.ListAssignments(ctx, subjectID)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// HandleAddSlot handles POST /admin/timetable.
func (h *Handler) HandleAddSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req slotRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	subjectID, err := inputval.ObjectID("subject_id", req.SubjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	teacherID, err := inputval.ObjectID("teacher_id", req.TeacherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slot, err := h.Roster.AddSlot(ctx, models.TimetableSlot{
		SubjectID:   subjectID,
		TeacherID:   teacherID,
		Day:         req.Day,
		Period:      req.Period,
		SessionType: req.SessionType,
		Room:        req.Room,
		Batch:       req.Batch,
		Division:    req.Division,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventTimetableSlotAdded, slot.ID, map[string]string{
		"day":    slot.Day,
		"period": strconv.Itoa(slot.Period),
	})
	httputil.WriteJSON(w, http.StatusCreated, slot)
}

// ServeSlots handles GET /admin/timetable[?teacher=].
func (h *Handler) ServeSlots(w http.ResponseWriter, r *http.Request) {
	teacherID, err := inputval.OptionalObjectID("teacher", query.Get(r, "teacher"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Roster.ListSlots(ctx, teacherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"slots": list})
}
