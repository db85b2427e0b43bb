package roster

import (
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the roster admin API (typically under "/admin").
// Every route requires the admin role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/programs", h.ServePrograms)
		pr.Post("/programs", h.HandleCreateProgram)

		pr.Get("/teachers", h.ServeTeachers)
		pr.Post("/teachers", h.HandleCreateTeacher)
		pr.Post("/teachers/{id}/deactivate", h.HandleDeactivateTeacher)

		pr.Get("/students", h.ServeStudents)
		pr.Post("/students", h.HandleCreateStudent)
		pr.Post("/students/{id}/deactivate", h.HandleDeactivateStudent)

		pr.Get("/subjects", h.ServeSubjects)
		pr.Post("/subjects", h.HandleCreateSubject)

		pr.Get("/assignments", h.ServeAssignments)
		pr.Post("/assignments", h.HandleAssign)

		pr.Get("/timetable", h.ServeSlots)
		pr.Post("/timetable", h.HandleAddSlot)
	})

	return r
}
