package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/transport/middleware"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID string, role string, err error)
}

type callerLoader interface {
	Caller(ctx context.Context) (*domain.User, error)
}

// RouterDeps groups everything the HTTP router wires together.
type RouterDeps struct {
	Logger    *slog.Logger
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
	Limiter   *middleware.RateLimiter
	Tokens    tokenValidator
	Callers   callerLoader

	Health   *HealthHandler
	Auth     *AuthHandler
	Me       *MeHandler
	Purchase *PurchaseHandler
	Admin    *AdminHandler
}

// NewRouter builds the HTTP routing tree.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.ClientIP,
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
		middleware.Auth(d.Tokens),
		middleware.TrackRequest,
	)

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)
	r.Get("/plans", Plans)

	loginLimit := d.Limiter.Limit("login", d.RateLimit.LoginPerMinute)
	r.With(loginLimit).Post("/auth/register", d.Auth.Register)
	r.With(loginLimit).Post("/auth/login", d.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/auth/logout", d.Auth.Logout)
		r.With(d.Limiter.Limit("purchase", d.RateLimit.PurchasePerMinute)).Post("/purchases", d.Purchase.Submit)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", d.Me.Profile)
			r.Get("/permissions", d.Me.Profile)
			r.Get("/usage", d.Me.Usage)
			r.Get("/subscription", d.Me.Subscription)
			r.Post("/subscription/upgrade", d.Me.Upgrade)
			r.Post("/subscription/cancel", d.Me.Cancel)
			r.Get("/quota/mutation", d.Me.MutationQuota)
			r.Post("/quota/upload", d.Me.UploadQuota)
			r.Get("/mutations", d.Me.Mutations)
			r.Post("/mutations", d.Me.RecordMutation)
			r.Post("/media", d.Me.UploadMedia)
			r.Delete("/media/*", d.Me.DeleteMedia)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RouteGuard(d.Logger, d.Callers))

			r.Get("/logs", d.Admin.Logs)
			r.Get("/users", d.Admin.Users)
			r.Put("/users/{id}/role", d.Admin.SetRole)

			suspend := middleware.RequirePermission(d.Logger, d.Callers, domain.PermSuspendAccounts)
			r.With(suspend).Post("/users/{id}/suspend", d.Admin.Suspend)
			r.With(suspend).Post("/users/{id}/unsuspend", d.Admin.Unsuspend)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}
