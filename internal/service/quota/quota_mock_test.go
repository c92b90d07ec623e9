package quota

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// ---------------------------------------------------------------------------
// subscriptionReaderMock
// ---------------------------------------------------------------------------

var _ subscriptionReader = &subscriptionReaderMock{}

type subscriptionReaderMock struct {
	GetSubscriptionFunc func(ctx context.Context, userID string) (domain.UserSubscription, error)

	calls struct {
		GetSubscription []struct {
			UserID string
		}
	}
	lockGetSubscription sync.RWMutex
}

func (mock *subscriptionReaderMock) GetSubscription(ctx context.Context, userID string) (domain.UserSubscription, error) {
	if mock.GetSubscriptionFunc == nil {
		panic("subscriptionReaderMock.GetSubscriptionFunc: method is nil but subscriptionReader.GetSubscription was just called")
	}
	mock.lockGetSubscription.Lock()
	mock.calls.GetSubscription = append(mock.calls.GetSubscription, struct{ UserID string }{UserID: userID})
	mock.lockGetSubscription.Unlock()
	return mock.GetSubscriptionFunc(ctx, userID)
}

func (mock *subscriptionReaderMock) GetSubscriptionCalls() []struct{ UserID string } {
	mock.lockGetSubscription.RLock()
	calls := mock.calls.GetSubscription
	mock.lockGetSubscription.RUnlock()
	return calls
}

// ---------------------------------------------------------------------------
// usageStoreMock
// ---------------------------------------------------------------------------

var _ usageStore = &usageStoreMock{}

type usageStoreMock struct {
	GetUsageFunc       func(ctx context.Context, userID string) (domain.UserUsage, error)
	RecordMutationFunc func(ctx context.Context, userID, action, resource string) (domain.MutationRecord, error)
	RecordUploadFunc   func(ctx context.Context, userID string, sizeMB float64) (domain.UserUsage, error)

	calls struct {
		GetUsage []struct {
			UserID string
		}
		RecordMutation []struct {
			UserID   string
			Action   string
			Resource string
		}
		RecordUpload []struct {
			UserID string
			SizeMB float64
		}
	}
	lockGetUsage       sync.RWMutex
	lockRecordMutation sync.RWMutex
	lockRecordUpload   sync.RWMutex
}

func (mock *usageStoreMock) GetUsage(ctx context.Context, userID string) (domain.UserUsage, error) {
	if mock.GetUsageFunc == nil {
		panic("usageStoreMock.GetUsageFunc: method is nil but usageStore.GetUsage was just called")
	}
	mock.lockGetUsage.Lock()
	mock.calls.GetUsage = append(mock.calls.GetUsage, struct{ UserID string }{UserID: userID})
	mock.lockGetUsage.Unlock()
	return mock.GetUsageFunc(ctx, userID)
}

func (mock *usageStoreMock) RecordMutation(ctx context.Context, userID, action, resource string) (domain.MutationRecord, error) {
	if mock.RecordMutationFunc == nil {
		panic("usageStoreMock.RecordMutationFunc: method is nil but usageStore.RecordMutation was just called")
	}
	callInfo := struct {
		UserID   string
		Action   string
		Resource string
	}{UserID: userID, Action: action, Resource: resource}
	mock.lockRecordMutation.Lock()
	mock.calls.RecordMutation = append(mock.calls.RecordMutation, callInfo)
	mock.lockRecordMutation.Unlock()
	return mock.RecordMutationFunc(ctx, userID, action, resource)
}

func (mock *usageStoreMock) RecordUpload(ctx context.Context, userID string, sizeMB float64) (domain.UserUsage, error) {
	if mock.RecordUploadFunc == nil {
		panic("usageStoreMock.RecordUploadFunc: method is nil but usageStore.RecordUpload was just called")
	}
	callInfo := struct {
		UserID string
		SizeMB float64
	}{UserID: userID, SizeMB: sizeMB}
	mock.lockRecordUpload.Lock()
	mock.calls.RecordUpload = append(mock.calls.RecordUpload, callInfo)
	mock.lockRecordUpload.Unlock()
	return mock.RecordUploadFunc(ctx, userID, sizeMB)
}

func (mock *usageStoreMock) RecordUploadCalls() []struct {
	UserID string
	SizeMB float64
} {
	mock.lockRecordUpload.RLock()
	calls := mock.calls.RecordUpload
	mock.lockRecordUpload.RUnlock()
	return calls
}
