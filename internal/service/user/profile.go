package user

import (
	"context"
	"fmt"

	"github.com/mutationwave/entitlements/internal/domain"
)

// Profile is the authenticated user together with their effective
// permissions.
type Profile struct {
	ID          string
	Name        string
	Email       string
	Role        string
	RoleLabel   string
	Tier        string
	Permissions []string
}

// GetProfile returns the authenticated user's profile.
// Returns ErrUnauthorized if no userID is found in context.
func (s *Service) GetProfile(ctx context.Context) (Profile, error) {
	u, err := s.Caller(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("user.GetProfile: %w", err)
	}

	granted := domain.PermissionsFor(u.Role).Granted()
	perms := make([]string, 0, len(granted))
	for _, p := range granted {
		perms = append(perms, p.String())
	}

	return Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role.String(),
		RoleLabel:   domain.RoleMeta(u.Role).Label,
		Tier:        u.Tier.String(),
		Permissions: perms,
	}, nil
}
