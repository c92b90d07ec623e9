// Package idempotency implements the purchase idempotency key set on PostgreSQL.
package idempotency

import (
	"context"
	"fmt"
	"time"

	postgres "github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Repo provides idempotency key persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new idempotency key repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// Has reports whether key was ever claimed and not swept.
func (r *Repo) Has(ctx context.Context, key string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM idempotency_keys WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "idempotency_key", key)
	}
	return exists, nil
}

// Claim inserts k and reports whether this call inserted it. A second claim
// of the same key returns false.
func (r *Repo) Claim(ctx context.Context, k domain.IdempotencyKey) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx,
		`INSERT INTO idempotency_keys (key, created_at) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
		k.Key, k.CreatedAt,
	)
	if err != nil {
		return false, postgres.MapError(err, "idempotency_key", k.Key)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteOlderThan removes keys created before cutoff and returns how many
// were removed.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete idempotency_keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
