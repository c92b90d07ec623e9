package usage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutationwave/entitlements/internal/adapter/postgres"
	"github.com/mutationwave/entitlements/internal/adapter/postgres/testhelper"
	"github.com/mutationwave/entitlements/internal/adapter/postgres/usage"
	"github.com/mutationwave/entitlements/internal/domain"
)

func TestRepo_Integration_RowLockSerializesIncrements(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := usage.New(pool)
	tm := postgres.NewTxManager(pool)
	u := testhelper.SeedUser(t, pool, domain.RoleUser, domain.TierMember)

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
					cur, err := repo.GetOrCreate(ctx, domain.NewUsage(u.ID, time.Now()))
					if err != nil {
						return err
					}
					cur.AddMutation()
					return repo.Save(ctx, cur)
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetOrCreate(context.Background(), domain.NewUsage(u.ID, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, got.MutationsUsed)
}

func TestRepo_Integration_MutationHistoryCap(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := usage.New(pool)
	u := testhelper.SeedUser(t, pool, domain.RoleUser, domain.TierPro)
	ctx := context.Background()

	for i := range 5 {
		rec := domain.MutationRecord{
			ID:        u.ID + "-mut-" + string(rune('a'+i)),
			UserID:    u.ID,
			Action:    "edit",
			Resource:  "event",
			Timestamp: time.Now(),
		}
		require.NoError(t, repo.AppendMutation(ctx, rec, 3))
	}

	got, err := repo.ListMutations(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, u.ID+"-mut-e", got[0].ID)
	assert.Equal(t, u.ID+"-mut-c", got[2].ID)
}
