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

// EnsureAdmin creates an admin account with the given credentials unless a
// user with that email already exists. It reports whether a user was created.
// An existing account is left untouched, whatever its role.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	input := RegisterInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if err := input.Validate(); err != nil {
		return false, fmt.Errorf("auth.EnsureAdmin: %w", err)
	}

	_, err := s.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("auth.EnsureAdmin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("auth.EnsureAdmin hash password: %w", err)
	}

	admin := domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Tier:         domain.TierFree,
		CreatedAt:    s.clock.Now().UTC(),
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, admin); err != nil {
			return err
		}
		_, err := s.audit.Append(txCtx, audit.ActorOf(admin).Entry(domain.AuditRegister, "user:"+admin.ID))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("auth.EnsureAdmin: %w", err)
	}

	s.log.InfoContext(ctx, "bootstrap admin created", slog.String("user_id", admin.ID))
	return true, nil
}
