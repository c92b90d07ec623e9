package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutationwave/entitlements/internal/adapter/memory"
	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
	"github.com/mutationwave/entitlements/internal/service/quota"
	"github.com/mutationwave/entitlements/internal/service/subscription"
	"github.com/mutationwave/entitlements/internal/service/usage"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type fixture struct {
	svc     *Service
	objects *memory.ObjectStore
	usage   *usage.Service
	audits  *audit.Service
	users   *memory.UserRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 8, 8, 0, 0, 0, time.UTC))
	tx := memory.NewTxManager()
	users := memory.NewUserRepo()
	usageSvc := usage.NewService(logger, memory.NewUsageRepo(), tx, clock, 100)
	auditSvc := audit.NewService(logger, memory.NewAuditRepo(), clock, 100)
	subSvc := subscription.NewService(logger, memory.NewSubscriptionRepo(), usageSvc, users, auditSvc, tx, clock)
	quotaSvc := quota.NewService(logger, subSvc, usageSvc, users, tx, clock)
	objects := memory.NewObjectStore()

	ctx := context.Background()
	require.NoError(t, users.Create(ctx, domain.User{ID: "u-1", Name: "Ivy", Email: "ivy@example.com", Role: domain.RoleUser, Tier: domain.TierFree}))
	require.NoError(t, users.Create(ctx, domain.User{ID: "u-2", Email: "zed@example.com", Role: domain.RoleUser, Tier: domain.TierFree}))
	require.NoError(t, users.Create(ctx, domain.User{ID: "ed", Email: "ed@example.com", Role: domain.RoleEditor, Tier: domain.TierFree}))

	return fixture{
		svc:     NewService(logger, objects, quotaSvc, users, auditSvc, 50),
		objects: objects,
		usage:   usageSvc,
		audits:  auditSvc,
		users:   users,
	}
}

func file(userID string, sizeMB float64) UploadInput {
	size := int64(sizeMB * bytesPerMB)
	return UploadInput{
		UserID:      userID,
		Filename:    "../../poster final.png",
		ContentType: "image/png",
		Size:        size,
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func TestService_Upload_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, file("u-1", 2))
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed)
	assert.Equal(t, 1, res.Decision.UploadsUsed)
	assert.Equal(t, 2.0, res.Decision.StorageUsedMB)
	assert.True(t, strings.HasPrefix(res.Key, "media/u-1/"))
	assert.True(t, strings.HasSuffix(res.Key, "-poster_final.png"))

	size, err := f.objects.Size(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(2*bytesPerMB), size)

	entries, err := f.audits.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditUploadMedia, entries[0].Action)
	assert.Equal(t, "2.00MB", *entries[0].NewValue)
}

func TestService_Upload_DeniedByQuotaStoresNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.usage.RecordUpload(ctx, "u-1", 99)
	require.NoError(t, err)

	res, err := f.svc.Upload(ctx, file("u-1", 2))
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Equal(t, domain.ReasonStorageLimit, res.Decision.Reason)
	assert.Empty(t, res.Key)

	u, err := f.usage.GetUsage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.UploadsUsed)
}

func TestService_Upload_TooLarge(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), UploadInput{UserID: "u-1", Filename: "x", Size: 51 * bytesPerMB, Body: strings.NewReader("")})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Upload_ConsumeRefusedRemovesObject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var putKey string
	objects := &objectStoreMock{
		PutFunc: func(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
			putKey = key
			return nil
		},
		DeleteFunc: func(ctx context.Context, key string) error { return nil },
	}
	quotas := &quotaCheckerMock{
		CanUploadFileFunc: func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
			return domain.UploadDecision{Allowed: true}, nil
		},
		TryConsumeUploadFunc: func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
			return domain.UploadDecision{Reason: domain.ReasonUploadLimit, UploadsUsed: 5, UploadLimit: 5}, nil
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, objects, quotas, f.users, f.audits, 50)

	res, err := svc.Upload(context.Background(), file("u-1", 1))
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonUploadLimit, res.Decision.Reason)

	require.Len(t, objects.DeleteCalls(), 1)
	assert.Equal(t, putKey, objects.DeleteCalls()[0].Key)
}

func TestService_Upload_ConsumeErrorRemovesObject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	objects := &objectStoreMock{
		PutFunc:    func(ctx context.Context, key string, body io.Reader, size int64, contentType string) error { return nil },
		DeleteFunc: func(ctx context.Context, key string) error { return nil },
	}
	consumeErr := errors.New("deadlock detected")
	quotas := &quotaCheckerMock{
		CanUploadFileFunc: func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
			return domain.UploadDecision{Allowed: true}, nil
		},
		TryConsumeUploadFunc: func(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error) {
			return domain.UploadDecision{}, consumeErr
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, objects, quotas, f.users, f.audits, 50)

	_, err := svc.Upload(context.Background(), file("u-1", 1))
	require.ErrorIs(t, err, consumeErr)
	assert.Len(t, objects.DeleteCalls(), 1)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestService_Delete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, file("u-1", 1))
	require.NoError(t, err)

	// Another plain user cannot delete it.
	require.ErrorIs(t, f.svc.Delete(ctx, "u-2", res.Key), domain.ErrForbidden)

	// The owner can.
	require.NoError(t, f.svc.Delete(ctx, "u-1", res.Key))
	_, err = f.objects.Size(ctx, res.Key)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// canManageMedia can delete anyone's object.
	res, err = f.svc.Upload(ctx, file("u-2", 1))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, "ed", res.Key))

	// Storage stays counted.
	u, err := f.usage.GetUsage(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, u.StorageUsedMB)
}

func TestSizeMB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, SizeMB(0))
	assert.Equal(t, 1.0, SizeMB(bytesPerMB))
	assert.Equal(t, 0.5, SizeMB(bytesPerMB/2))
	assert.Equal(t, 0.01, SizeMB(10_000))
}
