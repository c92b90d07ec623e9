package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

// Register creates a user with the user role on the free tier. Invalid input
// and a taken email are reported in the result, not as errors.
func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.AuthResult, error) {
	// Normalize input before validation.
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return domain.AuthFailure(domain.AuthErrInvalidInput), nil
	}

	// Step 2: Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("auth.Register hash password: %w", err)
	}

	// Step 3: Create the user and its audit entry together.
	// Email uniqueness is enforced by the store.
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Tier:         domain.TierFree,
		CreatedAt:    s.clock.Now().UTC(),
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		_, err := s.audit.Append(txCtx, audit.ActorOf(user).Entry(domain.AuditRegister, "user:"+user.ID))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.AuthFailure(domain.AuthErrEmailTaken), nil
		}
		return domain.AuthResult{}, fmt.Errorf("auth.Register: %w", err)
	}

	// Step 4: Issue token
	result, err := s.issueToken(&user)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("auth.Register issue token: %w", err)
	}

	s.log.InfoContext(ctx, "user registered via password",
		slog.String("user_id", user.ID))

	return result, nil
}
