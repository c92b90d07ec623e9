// Package audit records and reads the append-only audit log.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

// Page size bounds for List.
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

type auditRepo interface {
	Append(ctx context.Context, e domain.AuditLogEntry, capacity int) error
	All(ctx context.Context) ([]domain.AuditLogEntry, error)
	List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)
}

// Service appends to and reads from the audit log.
type Service struct {
	log      *slog.Logger
	repo     auditRepo
	clock    clockwork.Clock
	capacity int
}

// NewService creates an audit service retaining at most capacity entries.
func NewService(logger *slog.Logger, repo auditRepo, clock clockwork.Clock, capacity int) *Service {
	return &Service{
		log:      logger.With("service", "audit"),
		repo:     repo,
		clock:    clock,
		capacity: capacity,
	}
}

// Append assigns an ID and timestamp to e, stores it at the head of the log
// and returns the stored entry. When e.IP is nil the client address from ctx
// is used. The stored entry keeps its own copies of e's values.
func (s *Service) Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error) {
	if !e.Action.IsValid() {
		return domain.AuditLogEntry{}, domain.NewValidationError("action", fmt.Sprintf("unknown audit action %q", e.Action))
	}

	ip := e.IP
	if ip == nil {
		ip = ctxutil.ClientIPFromCtx(ctx)
	}

	entry := domain.AuditLogEntry{
		ID:             uuid.NewString(),
		UserID:         e.UserID,
		UserName:       e.UserName,
		Role:           e.Role,
		Action:         e.Action,
		TargetResource: e.TargetResource,
		PreviousValue:  e.PreviousValue,
		NewValue:       e.NewValue,
		IP:             ip,
		Timestamp:      s.clock.Now().UTC(),
	}.Clone()

	if err := s.repo.Append(ctx, entry, s.capacity); err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("audit.Append: %w", err)
	}

	s.log.DebugContext(ctx, "audit entry appended",
		slog.String("action", entry.Action.String()),
		slog.String("user_id", entry.UserID),
		slog.String("target", entry.TargetResource),
	)

	return entry, nil
}

// All returns every retained entry, newest first.
func (s *Service) All(ctx context.Context) ([]domain.AuditLogEntry, error) {
	entries, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit.All: %w", err)
	}
	return entries, nil
}

// List returns a page of entries matching f, newest first, and the number of
// matches before pagination.
func (s *Service) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	if f.Action != "" && !f.Action.IsValid() {
		return nil, 0, domain.NewValidationError("action", fmt.Sprintf("unknown audit action %q", f.Action))
	}
	if f.Offset < 0 {
		return nil, 0, domain.NewValidationError("offset", "must be >= 0")
	}
	if f.Since != nil && f.Until != nil && f.Until.Before(*f.Since) {
		return nil, 0, domain.NewValidationError("until", "must not be before since")
	}

	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}

	entries, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("audit.List: %w", err)
	}
	return entries, total, nil
}

// Actor describes who performed an audited action.
type Actor struct {
	UserID   string
	UserName string
	Role     domain.Role
}

// ActorOf builds an Actor from a registry user.
func ActorOf(u domain.User) Actor {
	return Actor{UserID: u.ID, UserName: u.Name, Role: u.Role}
}

// Entry starts a NewAuditEntry for actor.
func (a Actor) Entry(action domain.AuditAction, target string) domain.NewAuditEntry {
	return domain.NewAuditEntry{
		UserID:         a.UserID,
		UserName:       a.UserName,
		Role:           a.Role,
		Action:         action,
		TargetResource: target,
	}
}

// WithChange sets the previous and new values of e.
func WithChange(e domain.NewAuditEntry, previous, next string) domain.NewAuditEntry {
	e.PreviousValue = &previous
	e.NewValue = &next
	return e
}
