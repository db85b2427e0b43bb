package roster

import (
	"context"
	"net/http"

	"github.com/dalemusser/attendhub/internal/app/store/audit"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
)

type programRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// HandleCreateProgram handles POST /admin/programs.
func (h *Handler) HandleCreateProgram(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req programRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Roster.CreateProgram(ctx, models.Program{
		Name: req.Name, Code: req.Code, Type: req.Type, Duration: req.Duration,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.AuditLog.RosterChanged(ctx, r, actor.ID, audit.EventProgramCreated, p.ID, map[string]string{"code": p.Code})
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// ServePrograms handles GET /admin/programs.
func (h *Handler) ServePrograms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Roster.ListPrograms(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"programs": list})
}
