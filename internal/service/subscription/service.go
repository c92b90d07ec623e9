// Package subscription manages each user's paid-tier state.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

type subscriptionRepo interface {
	GetOrCreate(ctx context.Context, fresh domain.UserSubscription) (domain.UserSubscription, error)
	Save(ctx context.Context, s domain.UserSubscription) error
}

type usageResetter interface {
	ResetUsage(ctx context.Context, userID string) (domain.UserUsage, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u domain.User) error
}

type auditLogger interface {
	Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service reads and changes subscriptions.
type Service struct {
	log   *slog.Logger
	repo  subscriptionRepo
	usage usageResetter
	users userRepo
	audit auditLogger
	tx    txManager
	clock clockwork.Clock
}

// NewService creates a subscription service.
func NewService(
	logger *slog.Logger,
	repo subscriptionRepo,
	usage usageResetter,
	users userRepo,
	audit auditLogger,
	tx txManager,
	clock clockwork.Clock,
) *Service {
	return &Service{
		log:   logger.With("service", "subscription"),
		repo:  repo,
		usage: usage,
		users: users,
		audit: audit,
		tx:    tx,
		clock: clock,
	}
}

// GetSubscription returns the subscription of userID, creating the free
// default on first access. An active paid subscription past its period end is
// persisted as expired before it is returned.
func (s *Service) GetSubscription(ctx context.Context, userID string) (domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.current(ctx, userID)
		return err
	})
	if err != nil {
		return domain.UserSubscription{}, fmt.Errorf("subscription.GetSubscription: %w", err)
	}
	return sub, nil
}

// IsActive reports whether userID's subscription currently grants its tier.
func (s *Service) IsActive(ctx context.Context, userID string) (bool, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.IsActive(s.clock.Now()), nil
}

// Upgrade moves userID to tier with a fresh active period and resets usage.
// The registry tier is updated when the user exists there.
func (s *Service) Upgrade(ctx context.Context, userID string, tier domain.Tier) (domain.UserSubscription, error) {
	if !tier.IsValid() {
		return domain.UserSubscription{}, domain.NewValidationError("tier", fmt.Sprintf("unknown tier %q", tier))
	}

	var sub domain.UserSubscription
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		prev, err := s.current(ctx, userID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		start, end := domain.PeriodFrom(now)
		sub = domain.UserSubscription{
			UserID:             userID,
			Tier:               tier,
			Status:             domain.SubscriptionActive,
			CurrentPeriodStart: start,
			CurrentPeriodEnd:   end,
			LastPaymentAt:      &now,
		}
		if err := s.repo.Save(ctx, sub); err != nil {
			return fmt.Errorf("save subscription: %w", err)
		}

		if _, err := s.usage.ResetUsage(ctx, userID); err != nil {
			return fmt.Errorf("reset usage: %w", err)
		}

		actor := audit.Actor{UserID: userID, Role: domain.RoleUser}
		u, err := s.users.GetByID(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("get user: %w", err)
		default:
			u.Tier = tier
			if err := s.users.Update(ctx, *u); err != nil {
				return fmt.Errorf("update user tier: %w", err)
			}
			actor = audit.ActorOf(*u)
		}

		entry := audit.WithChange(
			actor.Entry(domain.AuditUpgradeSubscription, "subscription:"+userID),
			prev.Tier.String(), tier.String(),
		)
		if _, err := s.audit.Append(ctx, entry); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.UserSubscription{}, fmt.Errorf("subscription.Upgrade: %w", err)
	}

	s.log.InfoContext(ctx, "subscription upgraded",
		slog.String("user_id", userID),
		slog.String("tier", tier.String()),
	)

	return sub, nil
}

// Cancel marks a paid subscription cancelled. The tier stays recorded but is
// no longer granted.
func (s *Service) Cancel(ctx context.Context, userID string) (domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.current(ctx, userID)
		if err != nil {
			return err
		}
		if !sub.Tier.IsPaid() {
			return domain.NewValidationError("tier", "free subscription cannot be cancelled")
		}
		if sub.Status == domain.SubscriptionCancelled {
			return nil
		}
		sub.Status = domain.SubscriptionCancelled
		return s.repo.Save(ctx, sub)
	})
	if err != nil {
		return domain.UserSubscription{}, fmt.Errorf("subscription.Cancel: %w", err)
	}

	s.log.InfoContext(ctx, "subscription cancelled", slog.String("user_id", userID))
	return sub, nil
}

// current loads the subscription and applies lazy expiry. A stored record
// with an unknown tier or status is replaced by the free default.
func (s *Service) current(ctx context.Context, userID string) (domain.UserSubscription, error) {
	if userID == "" {
		return domain.UserSubscription{}, domain.NewValidationError("user_id", "required")
	}

	now := s.clock.Now().UTC()
	sub, err := s.repo.GetOrCreate(ctx, domain.NewFreeSubscription(userID, now))
	if err != nil {
		return domain.UserSubscription{}, err
	}

	switch {
	case !sub.Tier.IsValid() || !sub.Status.IsValid():
		s.log.WarnContext(ctx, "unreadable subscription replaced with default",
			slog.String("user_id", userID),
			slog.String("tier", sub.Tier.String()),
			slog.String("status", sub.Status.String()),
		)
		sub = domain.NewFreeSubscription(userID, now)
	case sub.ShouldExpire(now):
		sub.Status = domain.SubscriptionExpired
	default:
		return sub, nil
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		return domain.UserSubscription{}, err
	}
	return sub, nil
}
