package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/branchpulse/branchpulse/internal/directory"
	"github.com/branchpulse/branchpulse/internal/observability"
	"github.com/branchpulse/branchpulse/internal/platform/httpx"
	"github.com/branchpulse/branchpulse/internal/shared"
)

// StaffResolver turns an employee code into a directory record.
type StaffResolver interface {
	GetStaffByCode(ctx context.Context, code string) (directory.StaffMember, error)
}

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Staff   StaffResolver
	Metrics *observability.Metrics
}

// IdentityMiddleware resolves the employee code header set by the fronting
// SSO proxy into a staff record on the request context. Requests without the
// header pass through unauthenticated; handlers decide whether identity is
// required.
func IdentityMiddleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	header := "X-Employee-Code"
	if cfg.Config != nil && cfg.Config.IdentityHeader != "" {
		header = cfg.Config.IdentityHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.Header.Get(header)
			if code == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := cfg.Staff.GetStaffByCode(r.Context(), code)
			if err != nil {
				if errors.Is(err, directory.ErrNotFound) {
					httpx.RespondError(w, httpx.ErrUnauthorized)
					return
				}
				cfg.Logger.Error("resolve identity", slog.String("code", code), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), user)))
		})
	}
}

// MiddlewareStack installs the BranchPulse middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		FeaturePolicy:         "none",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(120, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
	if cfg.Staff != nil {
		middlewares = append(middlewares, IdentityMiddleware(cfg))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, func(next http.Handler) http.Handler {
			return cfg.Metrics.Middleware(next)
		})
	}
	return middlewares
}
