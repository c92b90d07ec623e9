// Package audit implements the append-only audit log on PostgreSQL.
// No update or delete of individual entries is exposed; the only removal is
// trimming the oldest rows beyond the retention cap.
package audit

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new audit repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

var columns = []string{
	"id", "user_id", "user_name", "role", "action", "target_resource",
	"previous_value", "new_value", "ip", "created_at",
}

type entryRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	UserName       string    `db:"user_name"`
	Role           string    `db:"role"`
	Action         string    `db:"action"`
	TargetResource string    `db:"target_resource"`
	PreviousValue  *string   `db:"previous_value"`
	NewValue       *string   `db:"new_value"`
	IP             *string   `db:"ip"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r entryRow) toDomain() domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ID:             r.ID,
		UserID:         r.UserID,
		UserName:       r.UserName,
		Role:           domain.Role(r.Role),
		Action:         domain.AuditAction(r.Action),
		TargetResource: r.TargetResource,
		PreviousValue:  r.PreviousValue,
		NewValue:       r.NewValue,
		IP:             r.IP,
		Timestamp:      r.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts e and trims the log to the newest capacity rows.
// capacity <= 0 disables trimming.
func (r *Repo) Append(ctx context.Context, e domain.AuditLogEntry, capacity int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder.
		Insert("audit_log").
		Columns(columns...).
		Values(e.ID, e.UserID, e.UserName, string(e.Role), string(e.Action), e.TargetResource,
			e.PreviousValue, e.NewValue, e.IP, e.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_log", e.ID)
	}

	if capacity > 0 {
		if _, err := q.Exec(ctx, `
DELETE FROM audit_log
WHERE seq <= (SELECT seq FROM audit_log ORDER BY seq DESC OFFSET $1 LIMIT 1)`, capacity); err != nil {
			return fmt.Errorf("trim audit_log: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// All returns every retained entry, newest first.
func (r *Repo) All(ctx context.Context) ([]domain.AuditLogEntry, error) {
	entries, _, err := r.List(ctx, domain.AuditFilter{})
	return entries, err
}

// List returns entries matching f, newest first, with the total number of
// matching entries before pagination.
func (r *Repo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	where := filterClause(f)

	countSQL, countArgs, err := postgres.Builder.Select("count(*)").From("audit_log").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build audit count: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit_log: %w", err)
	}

	sel := postgres.Builder.Select(columns...).From("audit_log").Where(where).OrderBy("seq DESC")
	if f.Limit > 0 {
		sel = sel.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		sel = sel.Offset(uint64(f.Offset))
	}

	listSQL, listArgs, err := sel.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build audit select: %w", err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, q, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select audit_log: %w", err)
	}

	entries := make([]domain.AuditLogEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toDomain()
	}
	return entries, total, nil
}

func filterClause(f domain.AuditFilter) sq.And {
	where := sq.And{}
	if f.UserID != "" {
		where = append(where, sq.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		where = append(where, sq.Eq{"action": string(f.Action)})
	}
	if f.TargetPrefix != "" {
		where = append(where, sq.Like{"target_resource": escapeLike(f.TargetPrefix) + "%"})
	}
	if f.Since != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.Since})
	}
	if f.Until != nil {
		where = append(where, sq.LtOrEq{"created_at": *f.Until})
	}
	return where
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
