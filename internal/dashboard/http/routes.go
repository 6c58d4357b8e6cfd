package dashhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/branchpulse/branchpulse/internal/shared"
)

// MountRoutes registers the dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/dashboard/overview", h.handleOverview)
	r.Get("/dashboard/products", h.handleProducts)
	r.Get("/dashboard/progress", h.handleProgress)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/dashboard/report", h.handleReport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if user, ok := shared.IdentityFromContext(r.Context()); ok && user.EmployeeCode != "" {
		return "user:" + user.EmployeeCode, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
