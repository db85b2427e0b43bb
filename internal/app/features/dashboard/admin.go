package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/attendhub/internal/app/store/metrics"
	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"go.uber.org/zap"
)

type adminData struct {
	Role            string                         `json:"role"`
	Counts          metricsstore.Counts            `json:"counts"`
	Threshold       float64                        `json:"threshold"`
	DefaultersCount int                            `json:"defaulters_count"`
	TopDefaulters   []attendancequeries.StudentRow `json:"top_defaulters"`
}

// ServeAdmin reports college-wide counts and the defaulters at the
// current threshold.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	threshold, err := h.Settings.DefaulterThreshold(ctx, h.DefaultThreshold)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	defaulters, err := attendancequeries.Defaulters(ctx, h.DB, threshold, attendancequeries.Cohort{})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	data := adminData{
		Role:            models.RoleAdmin,
		Counts:          metricsstore.FetchDashboardCounts(ctx, h.DB),
		Threshold:       threshold,
		DefaultersCount: len(defaulters),
		TopDefaulters:   defaulters[:min(len(defaulters), topDefaulters)],
	}

	h.Log.Debug("admin dashboard served", zap.Int("defaulters", data.DefaultersCount))

	httputil.WriteJSON(w, http.StatusOK, data)
}
