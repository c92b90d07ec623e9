package usage

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ usageRepo = &usageRepoMock{}

type usageRepoMock struct {
	GetOrCreateFunc    func(ctx context.Context, fresh domain.UserUsage) (domain.UserUsage, error)
	SaveFunc           func(ctx context.Context, u domain.UserUsage) error
	AppendMutationFunc func(ctx context.Context, rec domain.MutationRecord, keep int) error
	ListMutationsFunc  func(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error)

	calls struct {
		GetOrCreate []struct {
			Fresh domain.UserUsage
		}
		Save []struct {
			U domain.UserUsage
		}
		AppendMutation []struct {
			Rec  domain.MutationRecord
			Keep int
		}
		ListMutations []struct {
			UserID string
			Limit  int
		}
	}
	lockGetOrCreate    sync.RWMutex
	lockSave           sync.RWMutex
	lockAppendMutation sync.RWMutex
	lockListMutations  sync.RWMutex
}

func (mock *usageRepoMock) GetOrCreate(ctx context.Context, fresh domain.UserUsage) (domain.UserUsage, error) {
	if mock.GetOrCreateFunc == nil {
		panic("usageRepoMock.GetOrCreateFunc: method is nil but usageRepo.GetOrCreate was just called")
	}
	mock.lockGetOrCreate.Lock()
	mock.calls.GetOrCreate = append(mock.calls.GetOrCreate, struct{ Fresh domain.UserUsage }{Fresh: fresh})
	mock.lockGetOrCreate.Unlock()
	return mock.GetOrCreateFunc(ctx, fresh)
}

func (mock *usageRepoMock) Save(ctx context.Context, u domain.UserUsage) error {
	if mock.SaveFunc == nil {
		panic("usageRepoMock.SaveFunc: method is nil but usageRepo.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct{ U domain.UserUsage }{U: u})
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, u)
}

func (mock *usageRepoMock) AppendMutation(ctx context.Context, rec domain.MutationRecord, keep int) error {
	if mock.AppendMutationFunc == nil {
		panic("usageRepoMock.AppendMutationFunc: method is nil but usageRepo.AppendMutation was just called")
	}
	callInfo := struct {
		Rec  domain.MutationRecord
		Keep int
	}{Rec: rec, Keep: keep}
	mock.lockAppendMutation.Lock()
	mock.calls.AppendMutation = append(mock.calls.AppendMutation, callInfo)
	mock.lockAppendMutation.Unlock()
	return mock.AppendMutationFunc(ctx, rec, keep)
}

func (mock *usageRepoMock) AppendMutationCalls() []struct {
	Rec  domain.MutationRecord
	Keep int
} {
	mock.lockAppendMutation.RLock()
	calls := mock.calls.AppendMutation
	mock.lockAppendMutation.RUnlock()
	return calls
}

func (mock *usageRepoMock) ListMutations(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error) {
	if mock.ListMutationsFunc == nil {
		panic("usageRepoMock.ListMutationsFunc: method is nil but usageRepo.ListMutations was just called")
	}
	callInfo := struct {
		UserID string
		Limit  int
	}{UserID: userID, Limit: limit}
	mock.lockListMutations.Lock()
	mock.calls.ListMutations = append(mock.calls.ListMutations, callInfo)
	mock.lockListMutations.Unlock()
	return mock.ListMutationsFunc(ctx, userID, limit)
}
