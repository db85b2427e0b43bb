package settings

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the settings routes on r. The caller gates r to
// admins.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeSettings)
	r.Put("/", h.HandleSettings)
}
