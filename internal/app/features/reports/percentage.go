package reports

import (
	"context"
	"net/http"

	"github.com/dalemusser/attendhub/internal/app/policy/reportpolicy"
	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServePercentage handles GET /reports/percentage?student=&subject=&from=&to=.
// Students may omit student to mean themselves.
func (h *Handler) ServePercentage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	requested, err := inputval.OptionalObjectID("student", query.Get(r, "student"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	subjectID, err := inputval.OptionalObjectID("subject", query.Get(r, "subject"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	sc := attendancequeries.Scope{SubjectID: subjectID, From: query.Get(r, "from"), To: query.Get(r, "to")}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	studentID, err := reportpolicy.ResolveStudent(ctx, actor, h.Roster, requested)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	c, err := attendancequeries.Percentage(ctx, h.DB, studentID, sc)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	resp := percentageResponse{StudentID: studentID, From: sc.From, To: sc.To, Counts: c}
	if !subjectID.IsZero() {
		resp.SubjectID = subjectID.Hex()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ServeBreakdown handles GET /reports/breakdown?student=.
func (h *Handler) ServeBreakdown(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	requested, err := inputval.OptionalObjectID("student", query.Get(r, "student"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	studentID, err := reportpolicy.ResolveStudent(ctx, actor, h.Roster, requested)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	rows, err := attendancequeries.SubjectBreakdown(ctx, h.DB, studentID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, breakdownResponse{StudentID: studentID, Subjects: rows})
}
