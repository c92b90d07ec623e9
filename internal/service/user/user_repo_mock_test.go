package user

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.User, error)
	UpdateFunc  func(ctx context.Context, u domain.User) error
	ListFunc    func(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountFunc   func(ctx context.Context) (int, error)

	calls struct {
		GetByID []struct {
			ID string
		}
		Update []struct {
			U domain.User
		}
		List []struct {
			Limit  int
			Offset int
		}
		Count []struct{}
	}
	lockGetByID sync.RWMutex
	lockUpdate  sync.RWMutex
	lockList    sync.RWMutex
	lockCount   sync.RWMutex
}

func (mock *userRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if mock.GetByIDFunc == nil {
		panic("userRepoMock.GetByIDFunc: method is nil but userRepo.GetByID was just called")
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct{ ID string }{ID: id})
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *userRepoMock) Update(ctx context.Context, u domain.User) error {
	if mock.UpdateFunc == nil {
		panic("userRepoMock.UpdateFunc: method is nil but userRepo.Update was just called")
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, struct{ U domain.User }{U: u})
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, u)
}

func (mock *userRepoMock) UpdateCalls() []struct{ U domain.User } {
	mock.lockUpdate.RLock()
	calls := mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}

func (mock *userRepoMock) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if mock.ListFunc == nil {
		panic("userRepoMock.ListFunc: method is nil but userRepo.List was just called")
	}
	callInfo := struct {
		Limit  int
		Offset int
	}{Limit: limit, Offset: offset}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, limit, offset)
}

func (mock *userRepoMock) Count(ctx context.Context) (int, error) {
	if mock.CountFunc == nil {
		panic("userRepoMock.CountFunc: method is nil but userRepo.Count was just called")
	}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, struct{}{})
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx)
}
