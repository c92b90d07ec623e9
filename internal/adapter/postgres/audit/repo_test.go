package audit_test

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutationwave/entitlements/internal/adapter/postgres/audit"
	"github.com/mutationwave/entitlements/internal/domain"
)

func newRepo(t *testing.T) (*audit.Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return audit.New(mock), mock
}

func ptr[T any](v T) *T { return &v }

var entryCols = []string{
	"id", "user_id", "user_name", "role", "action", "target_resource",
	"previous_value", "new_value", "ip", "created_at",
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// ---------------------------------------------------------------------------
// Append
// ---------------------------------------------------------------------------

func TestRepo_Append_TrimsToCapacity(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	e := domain.AuditLogEntry{
		ID:             "a-1",
		UserID:         "admin-001",
		UserName:       "Ada",
		Role:           domain.RoleAdmin,
		Action:         domain.AuditRoleChange,
		TargetResource: "user:u-7",
		PreviousValue:  ptr("user"),
		NewValue:       ptr("editor"),
		Timestamp:      time.Now(),
	}

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM audit_log`).
		WithArgs(10000).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Append(context.Background(), e, 10000))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Append_NoTrimWithoutCapacity(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Append(context.Background(), domain.AuditLogEntry{ID: "a-2"}, 0))
	require.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestRepo_List_FilterAndPagination(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM audit_log WHERE \(user_id = \$1 AND action = \$2\)`).
		WithArgs("admin-001", "role_change").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM audit_log WHERE \(user_id = \$1 AND action = \$2\) ORDER BY seq DESC LIMIT 1 OFFSET 1`).
		WithArgs("admin-001", "role_change").
		WillReturnRows(pgxmock.NewRows(entryCols).
			AddRow("a-2", "admin-001", "Ada", "admin", "role_change", "user:u-7",
				ptr("user"), ptr("editor"), (*string)(nil), ts))

	got, total, err := repo.List(context.Background(), domain.AuditFilter{
		UserID: "admin-001",
		Action: domain.AuditRoleChange,
		Limit:  1,
		Offset: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RoleAdmin, got[0].Role)
	assert.Equal(t, "editor", *got[0].NewValue)
	assert.Nil(t, got[0].IP)
	assert.Equal(t, ts, got[0].Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_All(t *testing.T) {
	t.Parallel()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM audit_log`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM audit_log (.+) ORDER BY seq DESC`).
		WillReturnRows(pgxmock.NewRows(entryCols))

	got, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
