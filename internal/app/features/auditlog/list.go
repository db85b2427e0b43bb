package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"github.com/dalemusser/waffle/pantry/query"
)

const pageSize = 50

// parseFilter reads ?category=&event_type=&actor=&start_date=&end_date=.
// end_date covers the whole day.
func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Limit:     pageSize,
	}
	if f.Category != "" && !categories[f.Category] {
		return f, apperr.Invalid("category", "must be auth, admin or attendance")
	}
	actor, err := inputval.OptionalObjectID("actor", query.Get(r, "actor"))
	if err != nil {
		return f, err
	}
	if !actor.IsZero() {
		f.ActorID = &actor
	}

	start, err := dates.ParseOptional("start_date", query.Get(r, "start_date"))
	if err != nil {
		return f, err
	}
	if start != "" {
		t, _ := time.Parse(models.DateLayout, start)
		f.StartTime = &t
	}
	end, err := dates.ParseOptional("end_date", query.Get(r, "end_date"))
	if err != nil {
		return f, err
	}
	if end != "" {
		t, _ := time.Parse(models.DateLayout, end)
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &t
	}
	return f, nil
}

// ServeList handles GET /admin/audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}
	f.Offset = int64((page - 1) * pageSize)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	total, err := h.Events.CountByFilter(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	events, err := h.Events.Query(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Events:     events,
		Page:       page,
		TotalPages: int((total + pageSize - 1) / pageSize),
		Total:      total,
	})
}
