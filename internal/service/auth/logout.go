package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

// Logout records the end of the authenticated user's session. Access tokens
// are stateless and stay valid until they expire.
// Returns ErrUnauthorized if no userID is found in context.
func (s *Service) Logout(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	if _, err := s.audit.Append(ctx, audit.ActorOf(*user).Entry(domain.AuditLogout, "session")); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	s.log.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// ValidateToken validates an access token and returns the user ID and role.
// Returns ErrUnauthorized if the token is invalid or expired.
func (s *Service) ValidateToken(_ context.Context, token string) (string, string, error) {
	userID, role, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}
	return userID, role, nil
}
