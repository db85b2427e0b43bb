package leaves

import (
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the leave API (typically under "/leaves").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeLeave)
		pr.With(sm.RequireRole(models.RoleStudent, models.RoleAdmin)).Post("/", h.HandleApply)

		pr.Group(func(staff chi.Router) {
			staff.Use(sm.RequireRole(models.RoleAdmin, models.RoleTeacher))
			staff.Post("/{id}/approve", h.HandleApprove)
			staff.Post("/{id}/reject", h.HandleReject)
		})
	})

	return r
}
