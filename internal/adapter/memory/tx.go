// Package memory implements every store on process memory. It backs the
// "memory" store driver and service tests.
package memory

import (
	"context"
	"sync"
)

type txCtxKey struct{}

// TxManager serialises read-modify-write sequences across all memory stores.
// Nested RunInTx calls join the outer one. There is no rollback: a failing fn
// leaves whatever writes it already made.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a new TxManager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTx executes fn while holding the store-wide lock.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(txCtxKey{}).(*TxManager); held == m {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txCtxKey{}, m))
}
