// Package purchase accepts purchase submissions exactly once per logical
// purchase.
package purchase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

type keyClaimer interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type auditLogger interface {
	Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service submits purchases.
type Service struct {
	log   *slog.Logger
	keys  keyClaimer
	users userRepo
	audit auditLogger
	tx    txManager
}

// NewService creates a purchase service.
func NewService(logger *slog.Logger, keys keyClaimer, users userRepo, audit auditLogger, tx txManager) *Service {
	return &Service{
		log:   logger.With("service", "purchase"),
		keys:  keys,
		users: users,
		audit: audit,
		tx:    tx,
	}
}

// Submit accepts req unless the same logical purchase was already submitted.
// The buyer must exist, must not be suspended and must hold canPurchase.
func (s *Service) Submit(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseResult, error) {
	if err := validate(req); err != nil {
		return domain.PurchaseResult{}, err
	}

	buyer, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase.Submit: %w", err)
	}
	if buyer.Suspended || !domain.HasPermission(buyer.Role, domain.PermPurchase) {
		return domain.PurchaseResult{}, fmt.Errorf("purchase.Submit: %w", domain.ErrForbidden)
	}

	key := domain.PurchaseKey(req.UserID, req.ResourceID, req.Quantity, req.PaymentType)
	result := domain.PurchaseResult{Key: key}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		claimed, err := s.keys.Claim(ctx, key)
		if err != nil {
			return err
		}
		if !claimed {
			result.Error = domain.PurchaseErrDuplicate
			return nil
		}

		entry := audit.ActorOf(*buyer).Entry(domain.AuditPurchaseTicket, "resource:"+req.ResourceID)
		details := fmt.Sprintf("qty=%d payment=%s", req.Quantity, req.PaymentType)
		entry.NewValue = &details
		if _, err := s.audit.Append(ctx, entry); err != nil {
			return err
		}

		result.Accepted = true
		return nil
	})
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase.Submit: %w", err)
	}

	if result.Accepted {
		s.log.InfoContext(ctx, "purchase accepted",
			slog.String("user_id", req.UserID),
			slog.String("resource_id", req.ResourceID),
			slog.Int("quantity", req.Quantity),
		)
	} else {
		s.log.InfoContext(ctx, "duplicate purchase rejected", slog.String("key", key))
	}

	return result, nil
}

func validate(req domain.PurchaseRequest) error {
	var errs []domain.FieldError
	if req.UserID == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if req.ResourceID == "" {
		errs = append(errs, domain.FieldError{Field: "resource_id", Message: "required"})
	}
	if req.Quantity < 1 {
		errs = append(errs, domain.FieldError{Field: "quantity", Message: "must be >= 1"})
	}
	if !req.PaymentType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "payment_type", Message: "must be full or installment"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
