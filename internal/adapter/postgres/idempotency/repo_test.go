package idempotency_test

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutationwave/entitlements/internal/adapter/postgres/idempotency"
	"github.com/mutationwave/entitlements/internal/domain"
)

func newRepo(t *testing.T) (*idempotency.Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return idempotency.New(mock), mock
}

func TestRepo_Claim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"first claim", 1, true},
		{"duplicate", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo, mock := newRepo(t)

			mock.ExpectExec(`INSERT INTO idempotency_keys`).
				WithArgs("u-1-evt-1-1-full", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", tt.affected))

			got, err := repo.Claim(context.Background(), domain.IdempotencyKey{Key: "u-1-evt-1-1-full", CreatedAt: time.Now()})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_Has(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Has(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepo_DeleteOlderThan(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM idempotency_keys`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
