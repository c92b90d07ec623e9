// Package user implements the user registry on PostgreSQL.
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/domain"
)

// Repo provides user registry persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new user repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

var columns = []string{
	"id", "name", "email", "password_hash", "role", "tier", "suspended",
	"failed_login_attempts", "locked_until", "last_login_at", "created_at",
}

type userRow struct {
	ID                  string     `db:"id"`
	Name                string     `db:"name"`
	Email               string     `db:"email"`
	PasswordHash        string     `db:"password_hash"`
	Role                string     `db:"role"`
	Tier                string     `db:"tier"`
	Suspended           bool       `db:"suspended"`
	FailedLoginAttempts int        `db:"failed_login_attempts"`
	LockedUntil         *time.Time `db:"locked_until"`
	LastLoginAt         *time.Time `db:"last_login_at"`
	CreatedAt           time.Time  `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:                  r.ID,
		Name:                r.Name,
		Email:               r.Email,
		PasswordHash:        r.PasswordHash,
		Role:                domain.Role(r.Role),
		Tier:                domain.Tier(r.Tier),
		Suspended:           r.Suspended,
		FailedLoginAttempts: r.FailedLoginAttempts,
		LockedUntil:         r.LockedUntil,
		LastLoginAt:         r.LastLoginAt,
		CreatedAt:           r.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail returns a user by email address.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *Repo) getOne(ctx context.Context, col, val string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder.Select(columns...).From("users").Where(col+" = ?", val).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user select: %w", err)
	}

	var row userRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", val)
	}

	u := row.toDomain()
	return &u, nil
}

// List returns users ordered by creation time with pagination.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder.Select(columns...).From("users").
		OrderBy("created_at", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user list: %w", err)
	}

	var rows []userRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
	}
	return users, nil
}

// Count returns the number of registered users.
func (r *Repo) Count(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var n int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Create inserts a new user. A duplicate id or email yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u domain.User) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder.Insert("users").Columns(columns...).
		Values(u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), string(u.Tier), u.Suspended,
			u.FailedLoginAttempts, u.LockedUntil, u.LastLoginAt, u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "user", u.ID)
	}
	return nil
}

// Update overwrites the mutable fields of an existing user.
func (r *Repo) Update(ctx context.Context, u domain.User) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder.Update("users").
		Set("name", u.Name).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("role", string(u.Role)).
		Set("tier", string(u.Tier)).
		Set("suspended", u.Suspended).
		Set("failed_login_attempts", u.FailedLoginAttempts).
		Set("locked_until", u.LockedUntil).
		Set("last_login_at", u.LastLoginAt).
		Where("id = ?", u.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}
