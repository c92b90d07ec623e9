package audit

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ auditRepo = &auditRepoMock{}

type auditRepoMock struct {
	AppendFunc func(ctx context.Context, e domain.AuditLogEntry, capacity int) error
	AllFunc    func(ctx context.Context) ([]domain.AuditLogEntry, error)
	ListFunc   func(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)

	calls struct {
		Append []struct {
			E        domain.AuditLogEntry
			Capacity int
		}
		All  []struct{}
		List []struct {
			F domain.AuditFilter
		}
	}
	lockAppend sync.RWMutex
	lockAll    sync.RWMutex
	lockList   sync.RWMutex
}

func (mock *auditRepoMock) Append(ctx context.Context, e domain.AuditLogEntry, capacity int) error {
	if mock.AppendFunc == nil {
		panic("auditRepoMock.AppendFunc: method is nil but auditRepo.Append was just called")
	}
	callInfo := struct {
		E        domain.AuditLogEntry
		Capacity int
	}{E: e, Capacity: capacity}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, callInfo)
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, e, capacity)
}

func (mock *auditRepoMock) AppendCalls() []struct {
	E        domain.AuditLogEntry
	Capacity int
} {
	mock.lockAppend.RLock()
	calls := mock.calls.Append
	mock.lockAppend.RUnlock()
	return calls
}

func (mock *auditRepoMock) All(ctx context.Context) ([]domain.AuditLogEntry, error) {
	if mock.AllFunc == nil {
		panic("auditRepoMock.AllFunc: method is nil but auditRepo.All was just called")
	}
	mock.lockAll.Lock()
	mock.calls.All = append(mock.calls.All, struct{}{})
	mock.lockAll.Unlock()
	return mock.AllFunc(ctx)
}

func (mock *auditRepoMock) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	if mock.ListFunc == nil {
		panic("auditRepoMock.ListFunc: method is nil but auditRepo.List was just called")
	}
	callInfo := struct{ F domain.AuditFilter }{F: f}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, f)
}
