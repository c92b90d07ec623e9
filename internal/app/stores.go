package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mutationwave/entitlements/internal/adapter/memory"
	"github.com/mutationwave/entitlements/internal/adapter/postgres"
	pgaudit "github.com/mutationwave/entitlements/internal/adapter/postgres/audit"
	pgidempotency "github.com/mutationwave/entitlements/internal/adapter/postgres/idempotency"
	pgsubscription "github.com/mutationwave/entitlements/internal/adapter/postgres/subscription"
	pgusage "github.com/mutationwave/entitlements/internal/adapter/postgres/usage"
	pguser "github.com/mutationwave/entitlements/internal/adapter/postgres/user"
	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type userStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u domain.User) error
	Update(ctx context.Context, u domain.User) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

type usageStore interface {
	GetOrCreate(ctx context.Context, fresh domain.UserUsage) (domain.UserUsage, error)
	Save(ctx context.Context, u domain.UserUsage) error
	AppendMutation(ctx context.Context, rec domain.MutationRecord, keep int) error
	ListMutations(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error)
}

type subscriptionStore interface {
	GetOrCreate(ctx context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error)
	Save(ctx context.Context, s domain.UserSubscription) error
}

type auditStore interface {
	Append(ctx context.Context, e domain.AuditLogEntry, capacity int) error
	All(ctx context.Context) ([]domain.AuditLogEntry, error)
	List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)
}

type keyStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Claim(ctx context.Context, k domain.IdempotencyKey) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores is the persistence layer selected by the store driver.
type Stores struct {
	Driver        string
	Users         userStore
	Usage         usageStore
	Subscriptions subscriptionStore
	Audit         auditStore
	Keys          keyStore
	Tx            txRunner

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backing store is reachable.
func (s *Stores) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backing store's resources.
func (s *Stores) Close() { s.close() }

// NewMemoryStores returns process-local stores.
func NewMemoryStores() *Stores {
	return &Stores{
		Driver:        DriverMemory,
		Users:         memory.NewUserRepo(),
		Usage:         memory.NewUsageRepo(),
		Subscriptions: memory.NewSubscriptionRepo(),
		Audit:         memory.NewAuditRepo(),
		Keys:          memory.NewIdempotencyRepo(),
		Tx:            memory.NewTxManager(),
		ping:          func(context.Context) error { return nil },
		close:         func() {},
	}
}

// OpenStores opens the stores configured in cfg. For postgres, pending
// migrations are applied first when migrate_on_start is set.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case DriverMemory:
		logger.WarnContext(ctx, "using in-memory store, state is lost on restart")
		return NewMemoryStores(), nil

	case DriverPostgres:
		if cfg.Database.MigrateOnStart {
			n, err := postgres.Migrate(ctx, cfg.Database.DSN)
			if err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.InfoContext(ctx, "migrations applied", slog.Int("count", n))
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPostgresStores(pool), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewPostgresStores returns stores backed by pool. Closing the stores closes
// the pool.
func NewPostgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Driver:        DriverPostgres,
		Users:         pguser.New(pool),
		Usage:         pgusage.New(pool),
		Subscriptions: pgsubscription.New(pool),
		Audit:         pgaudit.New(pool),
		Keys:          pgidempotency.New(pool),
		Tx:            postgres.NewTxManager(pool),
		ping:          pool.Ping,
		close:         pool.Close,
	}
}
