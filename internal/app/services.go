package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/adapter/memory"
	"github.com/mutationwave/entitlements/internal/adapter/s3store"
	jwtauth "github.com/mutationwave/entitlements/internal/auth"
	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/service/audit"
	"github.com/mutationwave/entitlements/internal/service/auth"
	"github.com/mutationwave/entitlements/internal/service/idempotency"
	"github.com/mutationwave/entitlements/internal/service/media"
	"github.com/mutationwave/entitlements/internal/service/purchase"
	"github.com/mutationwave/entitlements/internal/service/quota"
	"github.com/mutationwave/entitlements/internal/service/subscription"
	"github.com/mutationwave/entitlements/internal/service/usage"
	"github.com/mutationwave/entitlements/internal/service/user"
)

// Services holds every domain service, wired to one set of stores.
type Services struct {
	Audit         *audit.Service
	Usage         *usage.Service
	Subscriptions *subscription.Service
	Quota         *quota.Service
	Keys          *idempotency.Service
	Purchases     *purchase.Service
	Auth          *auth.Service
	Users         *user.Service
	Media         *media.Service
}

// NewServices wires the domain services. objects may be nil when media
// uploads are not served.
func NewServices(
	logger *slog.Logger,
	cfg *config.Config,
	clock clockwork.Clock,
	stores *Stores,
	objects objectStore,
) *Services {
	auditSvc := audit.NewService(logger, stores.Audit, clock, cfg.Audit.Capacity)
	usageSvc := usage.NewService(logger, stores.Usage, stores.Tx, clock, cfg.Usage.HistoryCap)
	subsSvc := subscription.NewService(logger, stores.Subscriptions, usageSvc, stores.Users, auditSvc, stores.Tx, clock)
	quotaSvc := quota.NewService(logger, subsSvc, usageSvc, stores.Users, stores.Tx, clock)
	keysSvc := idempotency.NewService(logger, stores.Keys, clock)
	jwt := jwtauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, clock)

	svcs := &Services{
		Audit:         auditSvc,
		Usage:         usageSvc,
		Subscriptions: subsSvc,
		Quota:         quotaSvc,
		Keys:          keysSvc,
		Purchases:     purchase.NewService(logger, keysSvc, stores.Users, auditSvc, stores.Tx),
		Auth:          auth.NewService(logger, stores.Users, auditSvc, stores.Tx, jwt, clock, cfg.Auth),
		Users:         user.NewService(logger, stores.Users, auditSvc, stores.Tx),
	}
	if objects != nil {
		svcs.Media = media.NewService(logger, objects, quotaSvc, stores.Users, auditSvc, cfg.Storage.MaxUploadMB)
	}
	return svcs
}

type objectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// OpenObjectStore returns the S3 store when a bucket is configured and the
// in-memory store otherwise.
func OpenObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (objectStore, error) {
	if cfg.Bucket == "" {
		logger.WarnContext(ctx, "no storage bucket configured, media is kept in memory")
		return memory.NewObjectStore(), nil
	}

	client, err := s3store.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	logger.InfoContext(ctx, "media stored in s3", slog.String("bucket", cfg.Bucket))
	return s3store.New(client, cfg.Bucket), nil
}
