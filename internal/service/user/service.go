// Package user exposes the user registry: the caller's own profile and the
// permission-gated administration of other users.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

// userRepo defines the user repository interface needed by user service.
type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, u domain.User) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

// auditLogger defines the audit interface needed by user service.
type auditLogger interface {
	Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)
}

// txManager defines the transaction manager interface needed by user service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements profile and user administration operations.
type Service struct {
	log   *slog.Logger
	users userRepo
	audit auditLogger
	tx    txManager
}

// NewService creates a new user service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	audit auditLogger,
	tx txManager,
) *Service {
	return &Service{
		log:   logger.With("service", "user"),
		users: users,
		audit: audit,
		tx:    tx,
	}
}

// Caller loads the authenticated user from the registry. The role used for
// permission checks is always the stored one, never a token claim.
// Returns ErrUnauthorized if no userID is in context and ErrForbidden if the
// caller is suspended.
func (s *Service) Caller(ctx context.Context) (*domain.User, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Suspended {
		return nil, domain.ErrForbidden
	}
	return u, nil
}

// authorize returns the caller when they hold perm.
func (s *Service) authorize(ctx context.Context, perm domain.Permission) (*domain.User, error) {
	caller, err := s.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.HasPermission(caller.Role, perm) {
		s.log.WarnContext(ctx, "permission denied",
			slog.String("user_id", caller.ID),
			slog.String("permission", perm.String()),
		)
		return nil, fmt.Errorf("%w: requires %s", domain.ErrForbidden, perm)
	}
	return caller, nil
}
