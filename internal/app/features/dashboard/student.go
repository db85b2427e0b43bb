package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
)

type studentData struct {
	Role       string                         `json:"role"`
	StudentID  string                         `json:"student_id"`
	RollNumber string                         `json:"roll_number"`
	Name       string                         `json:"name"`
	Overall    attendancequeries.Counts       `json:"overall"`
	Subjects   []attendancequeries.SubjectRow `json:"subjects"`
}

// ServeStudent reports the student's overall percentage and subject
// breakdown.
func (h *Handler) ServeStudent(w http.ResponseWriter, r *http.Request, actor authz.Actor) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	st, err := h.Roster.StudentByUserID(ctx, actor.ID)
	if apperr.IsNotFound(err) {
		err = apperr.Forbidden("no student profile is linked to this account")
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	overall, err := attendancequeries.Percentage(ctx, h.DB, st.ID, attendancequeries.Scope{})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	subjects, err := attendancequeries.SubjectBreakdown(ctx, h.DB, st.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, studentData{
		Role:       models.RoleStudent,
		StudentID:  st.ID.Hex(),
		RollNumber: st.RollNumber,
		Name:       st.Name,
		Overall:    overall,
		Subjects:   subjects,
	})
}
