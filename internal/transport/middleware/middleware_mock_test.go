package middleware

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

var _ tokenValidator = &tokenValidatorMock{}

type tokenValidatorMock struct {
	ValidateTokenFunc func(ctx context.Context, token string) (string, string, error)

	calls struct {
		ValidateToken []struct {
			Ctx   context.Context
			Token string
		}
	}
	lockValidateToken sync.RWMutex
}

func (mock *tokenValidatorMock) ValidateToken(ctx context.Context, token string) (string, string, error) {
	if mock.ValidateTokenFunc == nil {
		panic("tokenValidatorMock.ValidateTokenFunc: method is nil but tokenValidator.ValidateToken was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Token string
	}{Ctx: ctx, Token: token}
	mock.lockValidateToken.Lock()
	mock.calls.ValidateToken = append(mock.calls.ValidateToken, callInfo)
	mock.lockValidateToken.Unlock()
	return mock.ValidateTokenFunc(ctx, token)
}

func (mock *tokenValidatorMock) ValidateTokenCalls() []struct {
	Ctx   context.Context
	Token string
} {
	mock.lockValidateToken.RLock()
	calls := mock.calls.ValidateToken
	mock.lockValidateToken.RUnlock()
	return calls
}

var _ callerLoader = &callerLoaderMock{}

type callerLoaderMock struct {
	CallerFunc func(ctx context.Context) (*domain.User, error)

	calls struct {
		Caller []struct {
			Ctx context.Context
		}
	}
	lockCaller sync.RWMutex
}

func (mock *callerLoaderMock) Caller(ctx context.Context) (*domain.User, error) {
	if mock.CallerFunc == nil {
		panic("callerLoaderMock.CallerFunc: method is nil but callerLoader.Caller was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockCaller.Lock()
	mock.calls.Caller = append(mock.calls.Caller, callInfo)
	mock.lockCaller.Unlock()
	return mock.CallerFunc(ctx)
}

func (mock *callerLoaderMock) CallerCalls() []struct {
	Ctx context.Context
} {
	mock.lockCaller.RLock()
	calls := mock.calls.Caller
	mock.lockCaller.RUnlock()
	return calls
}
