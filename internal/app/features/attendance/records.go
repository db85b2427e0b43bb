package attendance

import (
	"context"
	"net/http"

	attendancestore "github.com/dalemusser/attendhub/internal/app/store/attendance"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/paging"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
)

// recordFilter reads the listing filter from the query string and narrows
// it to what actor may see: students get their own records, teachers the
// records they marked.
func (h *Handler) recordFilter(ctx context.Context, r *http.Request, actor authz.Actor) (attendancestore.Filter, error) {
	var f attendancestore.Filter
	var err error
	if f.StudentID, err = inputval.OptionalObjectID("student", query.Get(r, "student")); err != nil {
		return f, err
	}
	if f.SubjectID, err = inputval.OptionalObjectID("subject", query.Get(r, "subject")); err != nil {
		return f, err
	}
	if f.TeacherID, err = inputval.OptionalObjectID("teacher", query.Get(r, "teacher")); err != nil {
		return f, err
	}
	f.From = query.Get(r, "from")
	f.To = query.Get(r, "to")

	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		tc, err := h.teacherFor(ctx, actor)
		if err != nil {
			return f, err
		}
		f.TeacherID = tc.ID
	case actor.IsStudent():
		st, err := h.studentFor(ctx, actor)
		if err != nil {
			return f, err
		}
		f.StudentID = st.ID
	default:
		return f, apperr.Forbidden("unknown role")
	}
	return f, nil
}

// ServeRecords handles GET /attendance/records
// [?student=&subject=&teacher=&from=&to=&cursor=&limit=].
func (h *Handler) ServeRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.recordFilter(ctx, r, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	page, err := h.Ledger.ListRecords(ctx, f, query.Get(r, "cursor"), paging.Limit(r, h.PageSize))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// ServeRoster handles GET /attendance/roster?subject=&batch=&division=.
// It lists the active students a session of the subject is marked for,
// together with the statuses the ledger accepts.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	subjectID, err := inputval.ObjectID("subject", query.Get(r, "subject"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	batch := query.Get(r, "batch")
	division := query.Get(r, "division")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.Roster.GetSubject(ctx, subjectID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if actor.IsTeacher() {
		tc, err := h.teacherFor(ctx, actor)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		assigned, err := h.Roster.IsAssigned(ctx, tc.ID, sub.ID, batch, division)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		if !assigned {
			h.ErrLog.Write(w, r, apperr.Forbidden("teacher is not assigned to this subject"))
			return
		}
	}

	students, err := h.Roster.StudentsInBatch(ctx, sub.ProgramID, sub.Semester, batch, division)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"subject":  sub,
		"students": students,
		"statuses": h.Ledger.Statuses(),
	})
}

// statusesResponse is the body of ServeStatuses.
type statusesResponse struct {
	Statuses []models.AttendanceStatus `json:"statuses"`
}

// ServeStatuses handles GET /attendance/statuses.
func (h *Handler) ServeStatuses(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusesResponse{Statuses: h.Ledger.Statuses()})
}
