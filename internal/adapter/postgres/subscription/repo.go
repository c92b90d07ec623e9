// Package subscription implements subscription persistence on PostgreSQL.
package subscription

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Repo provides subscription persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new subscription repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type subscriptionRow struct {
	UserID        string     `db:"user_id"`
	Tier          string     `db:"tier"`
	Status        string     `db:"status"`
	PeriodStart   time.Time  `db:"period_start"`
	PeriodEnd     time.Time  `db:"period_end"`
	LastPaymentAt *time.Time `db:"last_payment_at"`
}

const insertSubscriptionSQL = `
INSERT INTO user_subscriptions (user_id, tier, status, period_start, period_end, last_payment_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO NOTHING`

const selectSubscriptionSQL = `
SELECT user_id, tier, status, period_start, period_end, last_payment_at
FROM user_subscriptions
WHERE user_id = $1
FOR UPDATE`

// GetOrCreate returns the stored subscription for fresh.UserID, inserting
// fresh when none exists. Tier and status are returned as stored, so callers
// must validate them.
func (r *Repo) GetOrCreate(ctx context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, insertSubscriptionSQL,
		fresh.UserID, string(fresh.Tier), string(fresh.Status),
		fresh.CurrentPeriodStart, fresh.CurrentPeriodEnd, fresh.LastPaymentAt,
	)
	if err != nil {
		return domain.UserSubscription{}, postgres.MapError(err, "subscription", fresh.UserID)
	}

	var row subscriptionRow
	if err := pgxscan.Get(ctx, q, &row, selectSubscriptionSQL, fresh.UserID); err != nil {
		return domain.UserSubscription{}, postgres.MapError(err, "subscription", fresh.UserID)
	}

	return domain.UserSubscription{
		UserID:             row.UserID,
		Tier:               domain.Tier(row.Tier),
		Status:             domain.SubscriptionStatus(row.Status),
		CurrentPeriodStart: row.PeriodStart,
		CurrentPeriodEnd:   row.PeriodEnd,
		LastPaymentAt:      row.LastPaymentAt,
	}, nil
}

const upsertSubscriptionSQL = `
INSERT INTO user_subscriptions (user_id, tier, status, period_start, period_end, last_payment_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    tier            = EXCLUDED.tier,
    status          = EXCLUDED.status,
    period_start    = EXCLUDED.period_start,
    period_end      = EXCLUDED.period_end,
    last_payment_at = EXCLUDED.last_payment_at`

// Save writes s, replacing any stored row for the same user.
func (r *Repo) Save(ctx context.Context, s domain.UserSubscription) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, upsertSubscriptionSQL,
		s.UserID, string(s.Tier), string(s.Status),
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.LastPaymentAt,
	)
	if err != nil {
		return postgres.MapError(err, "subscription", s.UserID)
	}
	return nil
}
