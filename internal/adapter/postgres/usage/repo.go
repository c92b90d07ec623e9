// Package usage implements usage counters and mutation history on PostgreSQL.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Repo provides usage persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new usage repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type usageRow struct {
	UserID        string    `db:"user_id"`
	MutationsUsed int       `db:"mutations_used"`
	UploadsUsed   int       `db:"uploads_used"`
	StorageUsedMB float64   `db:"storage_used_mb"`
	PeriodStart   time.Time `db:"period_start"`
	PeriodEnd     time.Time `db:"period_end"`
}

func (r usageRow) toDomain() domain.UserUsage {
	return domain.UserUsage{
		UserID:             r.UserID,
		MutationsUsed:      r.MutationsUsed,
		UploadsUsed:        r.UploadsUsed,
		StorageUsedMB:      r.StorageUsedMB,
		CurrentPeriodStart: r.PeriodStart,
		CurrentPeriodEnd:   r.PeriodEnd,
	}
}

type mutationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Resource  string    `db:"resource"`
	CreatedAt time.Time `db:"created_at"`
}

// ---------------------------------------------------------------------------
// Counters
// ---------------------------------------------------------------------------

const insertUsageSQL = `
INSERT INTO user_usage (user_id, mutations_used, uploads_used, storage_used_mb, period_start, period_end)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO NOTHING`

const selectUsageForUpdateSQL = `
SELECT user_id, mutations_used, uploads_used, storage_used_mb, period_start, period_end
FROM user_usage
WHERE user_id = $1
FOR UPDATE`

// GetOrCreate returns the stored usage row for fresh.UserID, inserting fresh
// when none exists. Inside a transaction the row stays locked until commit.
func (r *Repo) GetOrCreate(ctx context.Context, fresh domain.UserUsage) (domain.UserUsage, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, insertUsageSQL,
		fresh.UserID, fresh.MutationsUsed, fresh.UploadsUsed, fresh.StorageUsedMB,
		fresh.CurrentPeriodStart, fresh.CurrentPeriodEnd,
	)
	if err != nil {
		return domain.UserUsage{}, postgres.MapError(err, "usage", fresh.UserID)
	}

	var row usageRow
	if err := pgxscan.Get(ctx, q, &row, selectUsageForUpdateSQL, fresh.UserID); err != nil {
		return domain.UserUsage{}, postgres.MapError(err, "usage", fresh.UserID)
	}

	return row.toDomain(), nil
}

const upsertUsageSQL = `
INSERT INTO user_usage (user_id, mutations_used, uploads_used, storage_used_mb, period_start, period_end)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    mutations_used  = EXCLUDED.mutations_used,
    uploads_used    = EXCLUDED.uploads_used,
    storage_used_mb = EXCLUDED.storage_used_mb,
    period_start    = EXCLUDED.period_start,
    period_end      = EXCLUDED.period_end`

// Save writes u, replacing any stored row for the same user.
func (r *Repo) Save(ctx context.Context, u domain.UserUsage) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, upsertUsageSQL,
		u.UserID, u.MutationsUsed, u.UploadsUsed, u.StorageUsedMB,
		u.CurrentPeriodStart, u.CurrentPeriodEnd,
	)
	if err != nil {
		return postgres.MapError(err, "usage", u.UserID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mutation history
// ---------------------------------------------------------------------------

const insertMutationSQL = `
INSERT INTO mutation_records (id, user_id, action, resource, created_at)
VALUES ($1, $2, $3, $4, $5)`

const trimMutationsSQL = `
DELETE FROM mutation_records
WHERE user_id = $1
  AND seq <= (
    SELECT seq FROM mutation_records
    WHERE user_id = $1
    ORDER BY seq DESC
    OFFSET $2 LIMIT 1
  )`

// AppendMutation stores rec and drops the user's records beyond the newest keep.
func (r *Repo) AppendMutation(ctx context.Context, rec domain.MutationRecord, keep int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if _, err := q.Exec(ctx, insertMutationSQL, rec.ID, rec.UserID, rec.Action, rec.Resource, rec.Timestamp); err != nil {
		return postgres.MapError(err, "mutation_record", rec.ID)
	}

	if keep > 0 {
		if _, err := q.Exec(ctx, trimMutationsSQL, rec.UserID, keep); err != nil {
			return fmt.Errorf("trim mutation_records for %s: %w", rec.UserID, err)
		}
	}
	return nil
}

const listMutationsSQL = `
SELECT id, user_id, action, resource, created_at
FROM mutation_records
WHERE user_id = $1
ORDER BY seq DESC
LIMIT $2`

// ListMutations returns the user's newest limit mutation records, newest first.
func (r *Repo) ListMutations(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var rows []mutationRow
	if err := pgxscan.Select(ctx, q, &rows, listMutationsSQL, userID, limit); err != nil {
		return nil, fmt.Errorf("list mutation_records for %s: %w", userID, err)
	}

	out := make([]domain.MutationRecord, len(rows))
	for i, row := range rows {
		out[i] = domain.MutationRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			Resource:  row.Resource,
			Timestamp: row.CreatedAt,
		}
	}
	return out, nil
}
