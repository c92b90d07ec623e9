package subscription

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ subscriptionRepo = &subscriptionRepoMock{}

type subscriptionRepoMock struct {
	GetOrCreateFunc func(ctx context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error)
	SaveFunc        func(ctx context.Context, s domain.UserSubscription) error

	calls struct {
		GetOrCreate []struct {
			Fresh domain.UserSubscription
		}
		Save []struct {
			S domain.UserSubscription
		}
	}
	lockGetOrCreate sync.RWMutex
	lockSave        sync.RWMutex
}

func (mock *subscriptionRepoMock) GetOrCreate(ctx context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error) {
	if mock.GetOrCreateFunc == nil {
		panic("subscriptionRepoMock.GetOrCreateFunc: method is nil but subscriptionRepo.GetOrCreate was just called")
	}
	mock.lockGetOrCreate.Lock()
	mock.calls.GetOrCreate = append(mock.calls.GetOrCreate, struct{ Fresh domain.UserSubscription }{Fresh: fresh})
	mock.lockGetOrCreate.Unlock()
	return mock.GetOrCreateFunc(ctx, fresh)
}

func (mock *subscriptionRepoMock) GetOrCreateCalls() []struct{ Fresh domain.UserSubscription } {
	mock.lockGetOrCreate.RLock()
	calls := mock.calls.GetOrCreate
	mock.lockGetOrCreate.RUnlock()
	return calls
}

func (mock *subscriptionRepoMock) Save(ctx context.Context, s domain.UserSubscription) error {
	if mock.SaveFunc == nil {
		panic("subscriptionRepoMock.SaveFunc: method is nil but subscriptionRepo.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct{ S domain.UserSubscription }{S: s})
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, s)
}
