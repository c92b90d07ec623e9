// Package media stores user uploads under the upload and storage quotas.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

const bytesPerMB = 1024 * 1024

type objectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

type quotaChecker interface {
	CanUploadFile(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error)
	TryConsumeUpload(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type auditLogger interface {
	Append(ctx context.Context, e domain.NewAuditEntry) (domain.AuditLogEntry, error)
}

// Service uploads and deletes media objects.
type Service struct {
	log         *slog.Logger
	objects     objectStore
	quota       quotaChecker
	users       userRepo
	audit       auditLogger
	maxUploadMB int
}

// NewService creates a media service. Single uploads above maxUploadMB are
// rejected before any quota is consulted.
func NewService(
	logger *slog.Logger,
	objects objectStore,
	quota quotaChecker,
	users userRepo,
	audit auditLogger,
	maxUploadMB int,
) *Service {
	return &Service{
		log:         logger.With("service", "media"),
		objects:     objects,
		quota:       quota,
		users:       users,
		audit:       audit,
		maxUploadMB: maxUploadMB,
	}
}

// UploadInput describes one file upload.
type UploadInput struct {
	UserID      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult reports the quota decision and, when allowed, where the
// object was stored.
type UploadResult struct {
	Decision domain.UploadDecision
	Key      string
	SizeMB   float64
}

// SizeMB converts a byte count to megabytes rounded to two decimals.
func SizeMB(size int64) float64 {
	return domain.RoundMB(float64(size) / bytesPerMB)
}

// Upload stores the file when the caller's quota allows it. The object is
// written first and the upload is consumed afterwards; if consumption is
// refused or fails, the object is removed again.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if in.Size < 0 {
		return UploadResult{}, domain.NewValidationError("size", "must be >= 0")
	}
	sizeMB := SizeMB(in.Size)
	if sizeMB > float64(s.maxUploadMB) {
		return UploadResult{}, domain.NewValidationError("size", fmt.Sprintf("exceeds %d MB", s.maxUploadMB))
	}

	owner, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("media.Upload: %w", err)
	}
	if owner.Suspended {
		return UploadResult{}, fmt.Errorf("media.Upload: %w", domain.ErrForbidden)
	}

	// Step 1: Cheap pre-check so refused uploads never reach the object store.
	pre, err := s.quota.CanUploadFile(ctx, owner.ID, owner.Tier, sizeMB)
	if err != nil {
		return UploadResult{}, fmt.Errorf("media.Upload: %w", err)
	}
	if !pre.Allowed {
		return UploadResult{Decision: pre, SizeMB: sizeMB}, nil
	}

	// Step 2: Store the object.
	key := objectKey(owner.ID, in.Filename)
	if err := s.objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return UploadResult{}, fmt.Errorf("media.Upload: %w", err)
	}

	// Step 3: Consume the quota atomically.
	d, err := s.quota.TryConsumeUpload(ctx, owner.ID, owner.Tier, sizeMB)
	if err != nil || !d.Allowed {
		s.discard(ctx, key)
		if err != nil {
			return UploadResult{}, fmt.Errorf("media.Upload: %w", err)
		}
		return UploadResult{Decision: d, SizeMB: sizeMB}, nil
	}

	// Step 4: Audit.
	entry := audit.ActorOf(*owner).Entry(domain.AuditUploadMedia, "media:"+key)
	size := fmt.Sprintf("%.2fMB", sizeMB)
	entry.NewValue = &size
	if _, err := s.audit.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit upload failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "media uploaded",
		slog.String("user_id", owner.ID),
		slog.String("key", key),
		slog.Float64("size_mb", sizeMB),
	)

	return UploadResult{Decision: d, Key: key, SizeMB: sizeMB}, nil
}

// Delete removes an object. Owners may delete their own uploads; anyone
// else needs canManageMedia. Storage already counted this period is not
// given back.
func (s *Service) Delete(ctx context.Context, callerID, key string) error {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("media.Delete: %w", err)
	}

	owned := strings.HasPrefix(key, ownerPrefix(caller.ID))
	if caller.Suspended || (!owned && !domain.HasPermission(caller.Role, domain.PermManageMedia)) {
		return fmt.Errorf("media.Delete: %w", domain.ErrForbidden)
	}

	if err := s.objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("media.Delete: %w", err)
	}

	if _, err := s.audit.Append(ctx, audit.ActorOf(*caller).Entry(domain.AuditDeleteMedia, "media:"+key)); err != nil {
		return fmt.Errorf("media.Delete: %w", err)
	}
	return nil
}

func (s *Service) discard(ctx context.Context, key string) {
	// A detached context so a cancelled request still cleans up.
	if err := s.objects.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.ErrorContext(ctx, "failed to discard refused upload",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func ownerPrefix(userID string) string {
	return "media/" + userID + "/"
}

func objectKey(userID, filename string) string {
	name := unsafeName.ReplaceAllString(path.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "file"
	}
	return ownerPrefix(userID) + uuid.NewString() + "-" + name
}
