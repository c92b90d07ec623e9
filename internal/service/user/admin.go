package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

// SetRole changes the role of targetID. The caller needs canManageUsers and
// cannot take that permission away from themselves.
func (s *Service) SetRole(ctx context.Context, targetID string, role domain.Role) (*domain.User, error) {
	caller, err := s.authorize(ctx, domain.PermManageUsers)
	if err != nil {
		return nil, fmt.Errorf("user.SetRole: %w", err)
	}

	if !role.IsValid() {
		return nil, domain.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}

	// Prevent an administrator from locking themselves out.
	if caller.ID == targetID && !domain.HasPermission(role, domain.PermManageUsers) {
		return nil, domain.NewValidationError("role", "cannot demote yourself")
	}

	updated, err := s.applyRole(ctx, audit.ActorOf(*caller), targetID, role)
	if err != nil {
		return nil, fmt.Errorf("user.SetRole: %w", err)
	}
	return updated, nil
}

// OperatorActor is recorded as the actor of changes made from the ops CLI.
var OperatorActor = audit.Actor{UserID: "system", UserName: "operator", Role: domain.RoleAdmin}

// AssignRole changes the role of targetID on behalf of an operator, without
// a caller permission check.
func (s *Service) AssignRole(ctx context.Context, targetID string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	updated, err := s.applyRole(ctx, OperatorActor, targetID, role)
	if err != nil {
		return nil, fmt.Errorf("user.AssignRole: %w", err)
	}
	return updated, nil
}

func (s *Service) applyRole(ctx context.Context, actor audit.Actor, targetID string, role domain.Role) (*domain.User, error) {
	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		target, err := s.users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		prev := target.Role
		target.Role = role
		if err := s.users.Update(ctx, *target); err != nil {
			return err
		}

		entry := audit.WithChange(actor.Entry(domain.AuditRoleChange, "user:"+targetID), prev.String(), role.String())
		if _, err := s.audit.Append(ctx, entry); err != nil {
			return err
		}

		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user role updated",
		slog.String("actor_id", actor.UserID),
		slog.String("target_user_id", targetID),
		slog.String("new_role", role.String()),
	)

	return updated, nil
}

// Suspend blocks targetID from logging in and purchasing. The caller needs
// canSuspendAccounts.
func (s *Service) Suspend(ctx context.Context, targetID string) (*domain.User, error) {
	return s.setSuspended(ctx, targetID, true)
}

// Unsuspend lifts a suspension. The caller needs canSuspendAccounts.
func (s *Service) Unsuspend(ctx context.Context, targetID string) (*domain.User, error) {
	return s.setSuspended(ctx, targetID, false)
}

func (s *Service) setSuspended(ctx context.Context, targetID string, suspended bool) (*domain.User, error) {
	caller, err := s.authorize(ctx, domain.PermSuspendAccounts)
	if err != nil {
		return nil, fmt.Errorf("user.setSuspended: %w", err)
	}
	if caller.ID == targetID {
		return nil, domain.NewValidationError("user_id", "cannot suspend yourself")
	}

	action := domain.AuditUnsuspendUser
	if suspended {
		action = domain.AuditSuspendUser
	}

	var updated *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		target, err := s.users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.Suspended == suspended {
			updated = target
			return nil
		}

		target.Suspended = suspended
		if err := s.users.Update(ctx, *target); err != nil {
			return err
		}

		entry := audit.WithChange(
			audit.ActorOf(*caller).Entry(action, "user:"+targetID),
			fmt.Sprint(!suspended), fmt.Sprint(suspended),
		)
		if _, err := s.audit.Append(ctx, entry); err != nil {
			return err
		}

		updated = target
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user.setSuspended: %w", err)
	}

	s.log.InfoContext(ctx, "user suspension changed",
		slog.String("target_user_id", targetID),
		slog.Bool("suspended", suspended),
	)

	return updated, nil
}

// ListUsers returns a page of users and the total count. The caller needs
// canManageUsers.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	if _, err := s.authorize(ctx, domain.PermManageUsers); err != nil {
		return nil, 0, fmt.Errorf("user.ListUsers: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("user.ListUsers: %w", err)
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("user.CountUsers: %w", err)
	}

	return users, total, nil
}
