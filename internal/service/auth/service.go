// Package auth registers users and authenticates them with email and password.
package auth

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/domain"
)

// userRepo defines the user repository interface needed by auth service.
type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u domain.User) error
	Update(ctx context.Context, u domain.User) error
}

// auditLogger records authentication events.
type auditLogger interface {
	Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)
}

// txManager defines the transaction manager interface needed by auth service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// jwtManager defines the JWT token management interface needed by auth service.
type jwtManager interface {
	GenerateAccessToken(userID, role string) (string, error)
	ValidateAccessToken(token string) (string, string, error)
}

// Service implements auth operations.
type Service struct {
	log   *slog.Logger
	users userRepo
	audit auditLogger
	tx    txManager
	jwt   jwtManager
	clock clockwork.Clock
	cfg   config.AuthConfig
}

// NewService creates a new auth service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	audit auditLogger,
	tx txManager,
	jwt jwtManager,
	clock clockwork.Clock,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		log:   logger.With("service", "auth"),
		users: users,
		audit: audit,
		tx:    tx,
		jwt:   jwt,
		clock: clock,
		cfg:   cfg,
	}
}

// issueToken signs an access token for u and builds a successful result.
func (s *Service) issueToken(u *domain.User) (domain.AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, u.Role.String())
	if err != nil {
		return domain.AuthResult{}, err
	}
	return domain.AuthResult{Success: true, User: u, Token: token}, nil
}
