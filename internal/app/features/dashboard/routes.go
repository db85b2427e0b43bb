package dashboard

import (
	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
//
// The handler dispatches to the admin, teacher or student view based on
// the current user's role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})

	return r
}
