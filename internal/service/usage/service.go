// Package usage tracks per-user consumption counters for the current billing
// period and the mutation history.
package usage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/domain"
)

// DefaultHistoryLimit is the page size of MutationHistory when none is given.
const DefaultHistoryLimit = 50

type usageRepo interface {
	GetOrCreate(ctx context.Context, fresh domain.UserUsage) (domain.UserUsage, error)
	Save(ctx context.Context, u domain.UserUsage) error
	AppendMutation(ctx context.Context, rec domain.MutationRecord, keep int) error
	ListMutations(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service reads and updates usage counters.
type Service struct {
	log        *slog.Logger
	repo       usageRepo
	tx         txManager
	clock      clockwork.Clock
	historyCap int
}

// NewService creates a usage service. historyCap bounds the stored mutation
// history per user.
func NewService(logger *slog.Logger, repo usageRepo, tx txManager, clock clockwork.Clock, historyCap int) *Service {
	return &Service{
		log:        logger.With("service", "usage"),
		repo:       repo,
		tx:         tx,
		clock:      clock,
		historyCap: historyCap,
	}
}

// GetUsage returns the current-period usage of userID. A missing record is
// created; an elapsed period is replaced by a fresh zeroed one.
func (s *Service) GetUsage(ctx context.Context, userID string) (domain.UserUsage, error) {
	var u domain.UserUsage
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.current(ctx, userID)
		return err
	})
	if err != nil {
		return domain.UserUsage{}, fmt.Errorf("usage.GetUsage: %w", err)
	}
	return u, nil
}

// ResetUsage unconditionally starts a fresh zeroed period for userID.
func (s *Service) ResetUsage(ctx context.Context, userID string) (domain.UserUsage, error) {
	if userID == "" {
		return domain.UserUsage{}, domain.NewValidationError("user_id", "required")
	}

	u := domain.NewUsage(userID, s.clock.Now().UTC())
	if err := s.repo.Save(ctx, u); err != nil {
		return domain.UserUsage{}, fmt.Errorf("usage.ResetUsage: %w", err)
	}

	s.log.InfoContext(ctx, "usage reset", slog.String("user_id", userID))
	return u, nil
}

// RecordMutation counts one mutation against userID and appends it to the
// mutation history.
func (s *Service) RecordMutation(ctx context.Context, userID, action, resource string) (domain.MutationRecord, error) {
	var rec domain.MutationRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.current(ctx, userID)
		if err != nil {
			return err
		}

		u.AddMutation()
		if err := s.repo.Save(ctx, u); err != nil {
			return err
		}

		rec = domain.MutationRecord{
			ID:        "mut-" + uuid.NewString(),
			UserID:    userID,
			Action:    action,
			Resource:  resource,
			Timestamp: s.clock.Now().UTC(),
		}
		return s.repo.AppendMutation(ctx, rec, s.historyCap)
	})
	if err != nil {
		return domain.MutationRecord{}, fmt.Errorf("usage.RecordMutation: %w", err)
	}
	return rec, nil
}

// RecordUpload counts one upload of sizeMB against userID.
func (s *Service) RecordUpload(ctx context.Context, userID string, sizeMB float64) (domain.UserUsage, error) {
	if sizeMB < 0 {
		return domain.UserUsage{}, domain.NewValidationError("size_mb", "must be >= 0")
	}

	var u domain.UserUsage
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.current(ctx, userID)
		if err != nil {
			return err
		}
		u.AddUpload(sizeMB)
		return s.repo.Save(ctx, u)
	})
	if err != nil {
		return domain.UserUsage{}, fmt.Errorf("usage.RecordUpload: %w", err)
	}
	return u, nil
}

// MutationHistory returns up to limit mutation records of userID, newest
// first.
func (s *Service) MutationHistory(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if s.historyCap > 0 {
		limit = min(limit, s.historyCap)
	}

	recs, err := s.repo.ListMutations(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("usage.MutationHistory: %w", err)
	}
	return recs, nil
}

// current loads (or creates) the usage record and rolls an elapsed period
// over. Callers run it inside a transaction so the record stays locked until
// they save.
func (s *Service) current(ctx context.Context, userID string) (domain.UserUsage, error) {
	if userID == "" {
		return domain.UserUsage{}, domain.NewValidationError("user_id", "required")
	}

	now := s.clock.Now().UTC()
	u, err := s.repo.GetOrCreate(ctx, domain.NewUsage(userID, now))
	if err != nil {
		return domain.UserUsage{}, err
	}

	switch {
	case !u.Valid():
		s.log.WarnContext(ctx, "unreadable usage replaced with fresh period",
			slog.String("user_id", userID),
			slog.Int("mutations_used", u.MutationsUsed),
			slog.Int("uploads_used", u.UploadsUsed),
		)
	case u.Elapsed(now):
		s.log.DebugContext(ctx, "usage period rolled over", slog.String("user_id", userID))
	default:
		return u, nil
	}

	u = domain.NewUsage(userID, now)
	if err := s.repo.Save(ctx, u); err != nil {
		return domain.UserUsage{}, err
	}
	return u, nil
}

