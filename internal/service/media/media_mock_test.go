package media

import (
	"context"
	"io"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// ---------------------------------------------------------------------------
// objectStoreMock
// ---------------------------------------------------------------------------

var _ objectStore = &objectStoreMock{}

type objectStoreMock struct {
	PutFunc    func(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	DeleteFunc func(ctx context.Context, key string) error

	calls struct {
		Put []struct {
			Key         string
			Size        int64
			ContentType string
		}
		Delete []struct {
			Key string
		}
	}
	lockPut    sync.RWMutex
	lockDelete sync.RWMutex
}

func (mock *objectStoreMock) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if mock.PutFunc == nil {
		panic("objectStoreMock.PutFunc: method is nil but objectStore.Put was just called")
	}
	callInfo := struct {
		Key         string
		Size        int64
		ContentType string
	}{Key: key, Size: size, ContentType: contentType}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, callInfo)
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, key, body, size, contentType)
}

func (mock *objectStoreMock) Delete(ctx context.Context, key string) error {
	if mock.DeleteFunc == nil {
		panic("objectStoreMock.DeleteFunc: method is nil but objectStore.Delete was just called")
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct{ Key string }{Key: key})
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, key)
}

func (mock *objectStoreMock) DeleteCalls() []struct{ Key string } {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

// ---------------------------------------------------------------------------
// quotaCheckerMock
// ---------------------------------------------------------------------------

var _ quotaChecker = &quotaCheckerMock{}

type quotaCheckerMock struct {
	CanUploadFileFunc    func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error)
	TryConsumeUploadFunc func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error)

	calls struct {
		CanUploadFile []struct {
			UserID string
			Tier   domain.Tier
			SizeMB float64
		}
		TryConsumeUpload []struct {
			UserID string
			Tier   domain.Tier
			SizeMB float64
		}
	}
	lockCanUploadFile    sync.RWMutex
	lockTryConsumeUpload sync.RWMutex
}

func (mock *quotaCheckerMock) CanUploadFile(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
	if mock.CanUploadFileFunc == nil {
		panic("quotaCheckerMock.CanUploadFileFunc: method is nil but quotaChecker.CanUploadFile was just called")
	}
	callInfo := struct {
		UserID string
		Tier   domain.Tier
		SizeMB float64
	}{UserID: userID, Tier: tier, SizeMB: sizeMB}
	mock.lockCanUploadFile.Lock()
	mock.calls.CanUploadFile = append(mock.calls.CanUploadFile, callInfo)
	mock.lockCanUploadFile.Unlock()
	return mock.CanUploadFileFunc(ctx, userID, tier, sizeMB)
}

func (mock *quotaCheckerMock) TryConsumeUpload(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
	if mock.TryConsumeUploadFunc == nil {
		panic("quotaCheckerMock.TryConsumeUploadFunc: method is nil but quotaChecker.TryConsumeUpload was just called")
	}
	callInfo := struct {
		UserID string
		Tier   domain.Tier
		SizeMB float64
	}{UserID: userID, Tier: tier, SizeMB: sizeMB}
	mock.lockTryConsumeUpload.Lock()
	mock.calls.TryConsumeUpload = append(mock.calls.TryConsumeUpload, callInfo)
	mock.lockTryConsumeUpload.Unlock()
	return mock.TryConsumeUploadFunc(ctx, userID, tier, sizeMB)
}
