package reports

import (
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the report API (typically under "/reports").
// Per-student reports are open to every signed-in role; the handlers
// narrow students to their own record. Cohort reports are staff only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/percentage", h.ServePercentage)
		pr.Get("/breakdown", h.ServeBreakdown)

		pr.Group(func(staff chi.Router) {
			staff.Use(sm.RequireRole(models.RoleAdmin, models.RoleTeacher))
			staff.Get("/students", h.ServeStudentReport)
			staff.Get("/defaulters", h.ServeDefaulters)
			staff.Get("/defaulters/history", h.ServeDefaulterHistory)
		})
	})

	return r
}
