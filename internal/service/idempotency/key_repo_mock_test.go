package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ keyRepo = &keyRepoMock{}

type keyRepoMock struct {
	HasFunc             func(ctx context.Context, key string) (bool, error)
	ClaimFunc           func(ctx context.Context, k domain.IdempotencyKey) (bool, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	calls struct {
		Has []struct {
			Key string
		}
		Claim []struct {
			K domain.IdempotencyKey
		}
		DeleteOlderThan []struct {
			Cutoff time.Time
		}
	}
	lockHas             sync.RWMutex
	lockClaim           sync.RWMutex
	lockDeleteOlderThan sync.RWMutex
}

func (mock *keyRepoMock) Has(ctx context.Context, key string) (bool, error) {
	if mock.HasFunc == nil {
		panic("keyRepoMock.HasFunc: method is nil but keyRepo.Has was just called")
	}
	mock.lockHas.Lock()
	mock.calls.Has = append(mock.calls.Has, struct{ Key string }{Key: key})
	mock.lockHas.Unlock()
	return mock.HasFunc(ctx, key)
}

func (mock *keyRepoMock) Claim(ctx context.Context, k domain.IdempotencyKey) (bool, error) {
	if mock.ClaimFunc == nil {
		panic("keyRepoMock.ClaimFunc: method is nil but keyRepo.Claim was just called")
	}
	mock.lockClaim.Lock()
	mock.calls.Claim = append(mock.calls.Claim, struct{ K domain.IdempotencyKey }{K: k})
	mock.lockClaim.Unlock()
	return mock.ClaimFunc(ctx, k)
}

func (mock *keyRepoMock) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if mock.DeleteOlderThanFunc == nil {
		panic("keyRepoMock.DeleteOlderThanFunc: method is nil but keyRepo.DeleteOlderThan was just called")
	}
	mock.lockDeleteOlderThan.Lock()
	mock.calls.DeleteOlderThan = append(mock.calls.DeleteOlderThan, struct{ Cutoff time.Time }{Cutoff: cutoff})
	mock.lockDeleteOlderThan.Unlock()
	return mock.DeleteOlderThanFunc(ctx, cutoff)
}

func (mock *keyRepoMock) DeleteOlderThanCalls() []struct{ Cutoff time.Time } {
	mock.lockDeleteOlderThan.RLock()
	calls := mock.calls.DeleteOlderThan
	mock.lockDeleteOlderThan.RUnlock()
	return calls
}
