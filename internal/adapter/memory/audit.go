package memory

import (
	"context"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// AuditRepo is an append-only in-memory audit log. Entries are kept oldest
// first and read back newest first.
type AuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
}

// NewAuditRepo creates an empty AuditRepo.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

// Append stores a copy of e and drops the oldest entries beyond capacity.
// capacity <= 0 disables truncation.
func (r *AuditRepo) Append(_ context.Context, e domain.AuditLogEntry, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e.Clone())
	if capacity > 0 && len(r.entries) > capacity {
		drop := len(r.entries) - capacity
		clear(r.entries[:drop])
		r.entries = r.entries[drop:]
	}
	return nil
}

// All returns a copy of every retained entry, newest first.
func (r *AuditRepo) All(_ context.Context) ([]domain.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AuditLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i].Clone())
	}
	return out, nil
}

// List returns entries matching f, newest first, and the match count before
// pagination.
func (r *AuditRepo) List(_ context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.AuditLogEntry{}
	total := 0
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !f.Matches(e) {
			continue
		}
		total++
		if total <= f.Offset || (f.Limit > 0 && len(out) >= f.Limit) {
			continue
		}
		out = append(out, e.Clone())
	}
	return out, total, nil
}
