// Package idempotency guards purchases against duplicate submission.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/domain"
)

type keyRepo interface {
	Has(ctx context.Context, key string) (bool, error)
	Claim(ctx context.Context, k domain.IdempotencyKey) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service stores claimed idempotency keys.
type Service struct {
	log   *slog.Logger
	repo  keyRepo
	clock clockwork.Clock
}

// NewService creates an idempotency service.
func NewService(logger *slog.Logger, repo keyRepo, clock clockwork.Clock) *Service {
	return &Service{
		log:   logger.With("service", "idempotency"),
		repo:  repo,
		clock: clock,
	}
}

// HasKey reports whether key was already claimed.
func (s *Service) HasKey(ctx context.Context, key string) (bool, error) {
	ok, err := s.repo.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("idempotency.HasKey: %w", err)
	}
	return ok, nil
}

// AddKey records key. Adding an existing key is a no-op.
func (s *Service) AddKey(ctx context.Context, key string) error {
	if _, err := s.Claim(ctx, key); err != nil {
		return err
	}
	return nil
}

// Claim records key and reports whether this call was the one that added it.
func (s *Service) Claim(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, domain.NewValidationError("key", "required")
	}

	claimed, err := s.repo.Claim(ctx, domain.IdempotencyKey{Key: key, CreatedAt: s.clock.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("idempotency.Claim: %w", err)
	}
	return claimed, nil
}

// Sweep removes keys claimed more than retention ago. A non-positive
// retention keeps every key.
func (s *Service) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := s.clock.Now().UTC().Add(-retention)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("idempotency.Sweep: %w", err)
	}

	if n > 0 {
		s.log.InfoContext(ctx, "idempotency keys swept",
			slog.Int64("deleted", n),
			slog.Time("cutoff", cutoff),
		)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done. It returns nil
// immediately when retention or interval is non-positive.
func (s *Service) RunSweeper(ctx context.Context, interval, retention time.Duration) error {
	if retention <= 0 || interval <= 0 {
		return nil
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if _, err := s.Sweep(ctx, retention); err != nil {
				s.log.ErrorContext(ctx, "idempotency sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
