package attendance

import (
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the attendance API (typically under "/attendance").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/records", h.ServeRecords)
		pr.Get("/statuses", h.ServeStatuses)

		pr.Group(func(staff chi.Router) {
			staff.Use(sm.RequireRole(models.RoleAdmin, models.RoleTeacher))
			staff.Get("/roster", h.ServeRoster)
			staff.Post("/sessions", h.HandleRecordSession)
			staff.Post("/sessions/lock", h.HandleLock)
		})

		pr.With(sm.RequireRole(models.RoleAdmin)).Post("/sessions/unlock", h.HandleUnlock)
	})

	return r
}
