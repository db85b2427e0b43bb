package reports

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
)

// cohortFrom reads ?program=&semester=&batch=&division=.
func cohortFrom(r *http.Request) (attendancequeries.Cohort, error) {
	var c attendancequeries.Cohort
	var err error
	if c.ProgramID, err = inputval.OptionalObjectID("program", query.Get(r, "program")); err != nil {
		return c, err
	}
	if s := query.Get(r, "semester"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c, apperr.Invalid("semester", "must be a positive number")
		}
		c.Semester = n
	}
	c.Batch = query.Get(r, "batch")
	c.Division = query.Get(r, "division")
	return c, nil
}

// threshold resolves the defaulter cut-off: the query parameter when
// given, otherwise the stored setting, otherwise DefaultThreshold.
func (h *Handler) threshold(ctx context.Context, r *http.Request) (float64, error) {
	if s := query.Get(r, "threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, apperr.Invalid("threshold", "must be a number")
		}
		return v, nil
	}
	return h.Settings.DefaulterThreshold(ctx, h.DefaultThreshold)
}

// ServeStudentReport handles GET /reports/students. Every active student
// in the cohort is listed with their overall percentage.
func (h *Handler) ServeStudentReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ErrLog.Actor(w, r); !ok {
		return
	}
	cohort, err := cohortFrom(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := attendancequeries.StudentReport(ctx, h.DB, cohort)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cohortResponse{Students: rows})
}

// ServeDefaulters handles GET /reports/defaulters[?threshold=&program=...].
func (h *Handler) ServeDefaulters(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ErrLog.Actor(w, r); !ok {
		return
	}
	cohort, err := cohortFrom(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	threshold, err := h.threshold(ctx, r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	rows, err := attendancequeries.Defaulters(ctx, h.DB, threshold, cohort)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, defaultersResponse{Threshold: threshold, Count: len(rows), Defaulters: rows})
}

// ServeDefaulterHistory handles GET /reports/defaulters/history[?limit=].
func (h *Handler) ServeDefaulterHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			h.ErrLog.Write(w, r, apperr.Invalid("limit", "must be a positive number"))
			return
		}
		limit = min(n, 200)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	snaps, err := h.Snapshots.Recent(ctx, int64(limit))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse{Snapshots: snaps})
}
