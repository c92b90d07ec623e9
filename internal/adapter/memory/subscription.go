package memory

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// SubscriptionRepo keeps subscriptions in memory.
type SubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]domain.UserSubscription
}

// NewSubscriptionRepo creates an empty SubscriptionRepo.
func NewSubscriptionRepo() *SubscriptionRepo {
	return &SubscriptionRepo{subs: make(map[string]domain.UserSubscription)}
}

// GetOrCreate returns the stored subscription for fresh.UserID, storing
// fresh when none exists.
func (r *SubscriptionRepo) GetOrCreate(_ context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.subs[fresh.UserID]; ok {
		return s, nil
	}
	r.subs[fresh.UserID] = fresh
	return fresh, nil
}

// Save stores s.
func (r *SubscriptionRepo) Save(_ context.Context, s domain.UserSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[s.UserID] = s
	return nil
}
