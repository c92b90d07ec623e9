package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

// LoginWithPassword authenticates a user with email + password. Every
// failure kind is reported in the result; errors mean the stores failed.
//
// MaxLoginAttempts consecutive wrong passwords lock the account for
// LockoutDuration. An expired lock clears the counter.
func (s *Service) LoginWithPassword(ctx context.Context, input LoginPasswordInput) (domain.AuthResult, error) {
	// Normalize input before validation.
	input.Email = strings.TrimSpace(input.Email)

	// Step 1: Validate input
	if err := input.Validate(); err != nil {
		return domain.AuthFailure(domain.AuthErrInvalidInput), nil
	}

	// Step 2: Find user by email
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthFailure(domain.AuthErrNotFound), nil
		}
		return domain.AuthResult{}, fmt.Errorf("auth.LoginWithPassword: get user: %w", err)
	}

	// Step 3: Account state
	if failure, refused := refusal(*user, s.clock.Now().UTC()); refused {
		return failure, nil
	}

	// Step 4: Verify password outside the transaction; the outcome is applied
	// to a fresh read of the user.
	matched := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) == nil

	var result domain.AuthResult
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.recordAttempt(txCtx, user.ID, matched)
		return err
	})
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("auth.LoginWithPassword: %w", err)
	}

	if result.Success {
		s.log.InfoContext(ctx, "user logged in via password",
			slog.String("user_id", result.User.ID))
	}
	return result, nil
}

// refusal reports the failure for an account that may not log in at now.
func refusal(user domain.User, now time.Time) (domain.AuthResult, bool) {
	if user.Suspended {
		return domain.AuthFailure(domain.AuthErrSuspended), true
	}
	if user.IsLocked(now) {
		return domain.AuthFailure(domain.AuthErrAccountLocked), true
	}
	return domain.AuthResult{}, false
}

// recordAttempt applies a verified or failed password check to the current
// stored user. State is re-checked since the user may have changed after the
// password was compared.
func (s *Service) recordAttempt(ctx context.Context, userID string, matched bool) (domain.AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthFailure(domain.AuthErrNotFound), nil
		}
		return domain.AuthResult{}, fmt.Errorf("get user: %w", err)
	}

	actor := audit.ActorOf(*user)
	now := s.clock.Now().UTC()

	if failure, refused := refusal(*user, now); refused {
		return failure, nil
	}
	if user.LockedUntil != nil {
		user.LockedUntil = nil
		user.FailedLoginAttempts = 0
	}

	if !matched {
		user.FailedLoginAttempts++
		left := max(0, s.cfg.MaxLoginAttempts-user.FailedLoginAttempts)

		action := domain.AuditLoginFailed
		if left == 0 {
			until := now.Add(s.cfg.LockoutDuration)
			user.LockedUntil = &until
			action = domain.AuditAccountLocked
		}

		if err := s.users.Update(ctx, *user); err != nil {
			return domain.AuthResult{}, fmt.Errorf("record failed login: %w", err)
		}
		entry := audit.WithChange(actor.Entry(action, "user:"+user.ID),
			strconv.Itoa(user.FailedLoginAttempts-1), strconv.Itoa(user.FailedLoginAttempts))
		if _, err := s.audit.Append(ctx, entry); err != nil {
			return domain.AuthResult{}, fmt.Errorf("audit: %w", err)
		}

		if left == 0 {
			s.log.WarnContext(ctx, "account locked", slog.String("user_id", user.ID))
			return domain.AuthFailure(domain.AuthErrAccountLocked), nil
		}
		return domain.AuthResult{Error: domain.AuthErrWrongPassword, AttemptsLeft: left}, nil
	}

	// Step 5: Reset counters and record the login
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, *user); err != nil {
		return domain.AuthResult{}, fmt.Errorf("record login: %w", err)
	}
	if _, err := s.audit.Append(ctx, actor.Entry(domain.AuditLogin, "session")); err != nil {
		return domain.AuthResult{}, fmt.Errorf("audit: %w", err)
	}

	// Step 6: Issue token
	result, err := s.issueToken(user)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return result, nil
}
