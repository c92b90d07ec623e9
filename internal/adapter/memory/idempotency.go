package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mutationwave/entitlements/internal/domain"
)

// IdempotencyRepo is an in-memory purchase key set.
type IdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

// NewIdempotencyRepo creates an empty IdempotencyRepo.
func NewIdempotencyRepo() *IdempotencyRepo {
	return &IdempotencyRepo{keys: make(map[string]time.Time)}
}

// Has reports whether key is in the set.
func (r *IdempotencyRepo) Has(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.keys[key]
	return ok, nil
}

// Claim adds k and reports whether it was absent.
func (r *IdempotencyRepo) Claim(_ context.Context, k domain.IdempotencyKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[k.Key]; ok {
		return false, nil
	}
	r.keys[k.Key] = k.CreatedAt
	return true, nil
}

// DeleteOlderThan removes keys created before cutoff.
func (r *IdempotencyRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, created := range r.keys {
		if created.Before(cutoff) {
			delete(r.keys, k)
			n++
		}
	}
	return n, nil
}
