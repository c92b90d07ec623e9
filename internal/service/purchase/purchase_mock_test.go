package purchase

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ keyClaimer = &keyClaimerMock{}

type keyClaimerMock struct {
	ClaimFunc func(ctx context.Context, key string) (bool, error)

	calls struct {
		Claim []struct {
			Key string
		}
	}
	lockClaim sync.RWMutex
}

func (mock *keyClaimerMock) Claim(ctx context.Context, key string) (bool, error) {
	if mock.ClaimFunc == nil {
		panic("keyClaimerMock.ClaimFunc: method is nil but keyClaimer.Claim was just called")
	}
	mock.lockClaim.Lock()
	mock.calls.Claim = append(mock.calls.Claim, struct{ Key string }{Key: key})
	mock.lockClaim.Unlock()
	return mock.ClaimFunc(ctx, key)
}

func (mock *keyClaimerMock) ClaimCalls() []struct{ Key string } {
	mock.lockClaim.RLock()
	calls := mock.calls.Claim
	mock.lockClaim.RUnlock()
	return calls
}

var _ auditLogger = &auditLoggerMock{}

type auditLoggerMock struct {
	AppendFunc func(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)

	calls struct {
		Append []struct {
			E domain.NewAuditEntry
		}
	}
	lockAppend sync.RWMutex
}

func (mock *auditLoggerMock) Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error) {
	if mock.AppendFunc == nil {
		panic("auditLoggerMock.AppendFunc: method is nil but auditLogger.Append was just called")
	}
	mock.lockAppend.Lock()
	mock.calls.Append = append(mock.calls.Append, struct{ E domain.NewAuditEntry }{E: e})
	mock.lockAppend.Unlock()
	return mock.AppendFunc(ctx, e)
}
