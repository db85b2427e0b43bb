package settings

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	wafflerr "github.com/dalemusser/waffle/pantry/errors"
	"go.uber.org/zap"
)

type settingsResponse struct {
	DefaulterThreshold float64          `json:"defaulter_threshold"`
	Stored             []models.Setting `json:"stored"`
}

type updateRequest struct {
	DefaulterThreshold *float64 `json:"defaulter_threshold"`
}

// ServeSettings handles GET /admin/settings. The effective threshold is
// reported even when only the configured default applies.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	h.writeCurrent(ctx, w, r)
}

func (h *Handler) writeCurrent(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	threshold, err := h.Settings.DefaulterThreshold(ctx, h.DefaultThreshold)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	stored, err := h.Settings.All(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settingsResponse{DefaulterThreshold: threshold, Stored: stored})
}

// HandleSettings handles PUT /admin/settings.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	if req.DefaulterThreshold == nil {
		wafflerr.Write(w, wafflerr.Validation("defaulter_threshold is required").WithDetail("field", "defaulter_threshold"))
		return
	}
	v := *req.DefaulterThreshold

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Settings.SetDefaulterThreshold(ctx, v, &actor.ID); err != nil {
		if errors.Is(err, settingsstore.ErrBadThreshold) {
			wafflerr.Write(w, wafflerr.Validation(err.Error()).WithDetail("field", "defaulter_threshold"))
			return
		}
		h.ErrLog.Write(w, r, err)
		return
	}
	h.AuditLog.SettingChanged(ctx, r, actor.ID, models.SettingDefaulterThreshold, strconv.FormatFloat(v, 'f', -1, 64))
	h.Log.Info("defaulter threshold changed", zap.Float64("threshold", v), zap.String("by", actor.ID.Hex()))

	h.writeCurrent(ctx, w, r)
}
