package targetshttp

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the target submission endpoint onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Post("/targets/bulk", h.handleBulkSubmit)
}
