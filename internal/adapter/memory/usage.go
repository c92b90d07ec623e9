package memory

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// UsageRepo keeps usage counters and mutation history in memory.
type UsageRepo struct {
	mu      sync.Mutex
	usage   map[string]domain.UserUsage
	history map[string][]domain.MutationRecord // newest first
}

// NewUsageRepo creates an empty UsageRepo.
func NewUsageRepo() *UsageRepo {
	return &UsageRepo{
		usage:   make(map[string]domain.UserUsage),
		history: make(map[string][]domain.MutationRecord),
	}
}

// GetOrCreate returns the stored usage for fresh.UserID, storing fresh when
// none exists.
func (r *UsageRepo) GetOrCreate(_ context.Context, fresh domain.UserUsage) (domain.UserUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.usage[fresh.UserID]; ok {
		return u, nil
	}
	r.usage[fresh.UserID] = fresh
	return fresh, nil
}

// Save stores u.
func (r *UsageRepo) Save(_ context.Context, u domain.UserUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usage[u.UserID] = u
	return nil
}

// AppendMutation prepends rec to the user's history and keeps the newest keep.
func (r *UsageRepo) AppendMutation(_ context.Context, rec domain.MutationRecord, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := append([]domain.MutationRecord{rec}, r.history[rec.UserID]...)
	if keep > 0 && len(h) > keep {
		h = h[:keep]
	}
	r.history[rec.UserID] = h
	return nil
}

// ListMutations returns up to limit records, newest first.
func (r *UsageRepo) ListMutations(_ context.Context, userID string, limit int) ([]domain.MutationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.history[userID]
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return append([]domain.MutationRecord(nil), h...), nil
}
