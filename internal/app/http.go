package app

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/transport/middleware"
	"github.com/mutationwave/entitlements/internal/transport/rest"
)

// NewHTTPHandler builds the REST API on top of svcs.
func NewHTTPHandler(
	logger *slog.Logger,
	cfg *config.Config,
	clock clockwork.Clock,
	stores *Stores,
	svcs *Services,
	limiter *middleware.RateLimiter,
) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())

	health := rest.NewHealthHandler(map[string]rest.Pinger{stores.Driver: stores}, BuildVersion(), clock)

	return rest.NewRouter(rest.RouterDeps{
		Logger:    logger,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		Limiter:   limiter,
		Tokens:    svcs.Auth,
		Callers:   svcs.Users,

		Health: health,
		Auth:   rest.NewAuthHandler(svcs.Auth, validate, logger),
		Me: rest.NewMeHandler(rest.MeDeps{
			Profiles:      svcs.Users,
			Usage:         svcs.Usage,
			Subscriptions: svcs.Subscriptions,
			Quota:         svcs.Quota,
			Media:         svcs.Media,
			MaxUploadMB:   cfg.Storage.MaxUploadMB,
		}, validate, logger),
		Purchase: rest.NewPurchaseHandler(svcs.Purchases, validate, logger),
		Admin:    rest.NewAdminHandler(svcs.Audit, svcs.Users, validate, logger),
	})
}
