// Package quota decides whether a user may perform a mutation or upload
// under their tier and subscription.
package quota

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/domain"
)

type subscriptionReader interface {
	GetSubscription(ctx context.Context, userID string) (domain.UserSubscription, error)
}

type usageStore interface {
	GetUsage(ctx context.Context, userID string) (domain.UserUsage, error)
	RecordMutation(ctx context.Context, userID, action, resource string) (domain.MutationRecord, error)
	RecordUpload(ctx context.Context, userID string, sizeMB float64) (domain.UserUsage, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service evaluates quota rules against stored usage and subscriptions.
type Service struct {
	log   *slog.Logger
	subs  subscriptionReader
	usage usageStore
	users userRepo
	tx    txManager
	clock clockwork.Clock
}

// NewService creates a quota service.
func NewService(
	logger *slog.Logger,
	subs subscriptionReader,
	usage usageStore,
	users userRepo,
	tx txManager,
	clock clockwork.Clock,
) *Service {
	return &Service{
		log:   logger.With("service", "quota"),
		subs:  subs,
		usage: usage,
		users: users,
		tx:    tx,
		clock: clock,
	}
}

// CanPerformMutation reports whether userID on tier may perform one more
// mutation. It does not record anything.
func (s *Service) CanPerformMutation(ctx context.Context, userID string, tier domain.Tier) (domain.MutationDecision, error) {
	sub, u, err := s.load(ctx, userID)
	if err != nil {
		return domain.MutationDecision{}, fmt.Errorf("quota.CanPerformMutation: %w", err)
	}
	return domain.EvaluateMutation(tier, sub, u, s.clock.Now()), nil
}

// CanUploadFile reports whether userID on tier may upload a file of sizeMB.
// It does not record anything.
func (s *Service) CanUploadFile(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
	if sizeMB < 0 {
		return domain.UploadDecision{}, domain.NewValidationError("size_mb", "must be >= 0")
	}

	sub, u, err := s.load(ctx, userID)
	if err != nil {
		return domain.UploadDecision{}, fmt.Errorf("quota.CanUploadFile: %w", err)
	}
	return domain.EvaluateUpload(tier, sub, u, sizeMB, s.clock.Now()), nil
}

// CheckMutationFor is CanPerformMutation with the tier read from the user
// registry.
func (s *Service) CheckMutationFor(ctx context.Context, userID string) (domain.MutationDecision, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.MutationDecision{}, fmt.Errorf("quota.CheckMutationFor: %w", err)
	}
	return s.CanPerformMutation(ctx, userID, u.Tier)
}

// TryConsumeMutation checks and records one mutation in a single
// transaction. Used in an allowed decision includes the recorded mutation.
func (s *Service) TryConsumeMutation(ctx context.Context, userID string, tier domain.Tier, action, resource string) (domain.MutationDecision, error) {
	var d domain.MutationDecision
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sub, u, err := s.load(ctx, userID)
		if err != nil {
			return err
		}

		d = domain.EvaluateMutation(tier, sub, u, s.clock.Now())
		if !d.Allowed {
			return nil
		}

		if _, err := s.usage.RecordMutation(ctx, userID, action, resource); err != nil {
			return err
		}
		d.Used++
		return nil
	})
	if err != nil {
		return domain.MutationDecision{}, fmt.Errorf("quota.TryConsumeMutation: %w", err)
	}

	s.logDecision(ctx, "mutation", userID, d.Allowed, d.Reason)
	return d, nil
}

// TryConsumeUpload checks and records one upload of sizeMB in a single
// transaction. Counters in an allowed decision include the recorded upload.
func (s *Service) TryConsumeUpload(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
	if sizeMB < 0 {
		return domain.UploadDecision{}, domain.NewValidationError("size_mb", "must be >= 0")
	}

	var d domain.UploadDecision
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sub, u, err := s.load(ctx, userID)
		if err != nil {
			return err
		}

		d = domain.EvaluateUpload(tier, sub, u, sizeMB, s.clock.Now())
		if !d.Allowed {
			return nil
		}

		after, err := s.usage.RecordUpload(ctx, userID, sizeMB)
		if err != nil {
			return err
		}
		d.UploadsUsed = after.UploadsUsed
		d.StorageUsedMB = after.StorageUsedMB
		return nil
	})
	if err != nil {
		return domain.UploadDecision{}, fmt.Errorf("quota.TryConsumeUpload: %w", err)
	}

	s.logDecision(ctx, "upload", userID, d.Allowed, d.Reason)
	return d, nil
}

func (s *Service) load(ctx context.Context, userID string) (domain.UserSubscription, domain.UserUsage, error) {
	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return domain.UserSubscription{}, domain.UserUsage{}, err
	}
	u, err := s.usage.GetUsage(ctx, userID)
	if err != nil {
		return domain.UserSubscription{}, domain.UserUsage{}, err
	}
	return sub, u, nil
}

func (s *Service) logDecision(ctx context.Context, kind, userID string, allowed bool, reason domain.DenialReason) {
	if allowed {
		return
	}
	s.log.InfoContext(ctx, "quota denied",
		slog.String("kind", kind),
		slog.String("user_id", userID),
		slog.String("reason", reason.String()),
	)
}
