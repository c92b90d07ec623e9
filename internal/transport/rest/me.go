package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/media"
	"github.com/mutationwave/entitlements/internal/service/user"
)

type profileService interface {
	Caller(ctx context.Context) (*domain.User, error)
	GetProfile(ctx context.Context) (user.Profile, error)
}

type usageService interface {
	GetUsage(ctx context.Context, userID string) (domain.UserUsage, error)
	MutationHistory(ctx context.Context, userID string, limit int) ([]domain.MutationRecord, error)
}

type subscriptionService interface {
	GetSubscription(ctx context.Context, userID string) (domain.UserSubscription, error)
	IsActive(ctx context.Context, userID string) (bool, error)
	Upgrade(ctx context.Context, userID string, tier domain.Tier) (domain.UserSubscription, error)
	Cancel(ctx context.Context, userID string) (domain.UserSubscription, error)
}

type quotaService interface {
	CanPerformMutation(ctx context.Context, userID string, tier domain.Tier) (domain.MutationDecision, error)
	CanUploadFile(ctx context.Context, userID string, tier domain.Tier, sizeMB float64) (domain.UploadDecision, error)
	TryConsumeMutation(ctx context.Context, userID string, tier domain.Tier, action, resource string) (domain.MutationDecision, error)
}

type mediaService interface {
	Upload(ctx context.Context, in media.UploadInput) (media.UploadResult, error)
	Delete(ctx context.Context, callerID, key string) error
}

// MeHandler serves the authenticated user's own entitlements.
type MeHandler struct {
	profiles      profileService
	usage         usageService
	subscriptions subscriptionService
	quota         quotaService
	media         mediaService
	validate      *validator.Validate
	maxUploadMB   int
	log           *slog.Logger
}

// MeDeps groups the services MeHandler depends on.
type MeDeps struct {
	Profiles      profileService
	Usage         usageService
	Subscriptions subscriptionService
	Quota         quotaService
	Media         mediaService
	MaxUploadMB   int
}

// NewMeHandler creates a MeHandler.
func NewMeHandler(deps MeDeps, validate *validator.Validate, logger *slog.Logger) *MeHandler {
	return &MeHandler{
		profiles:      deps.Profiles,
		usage:         deps.Usage,
		subscriptions: deps.Subscriptions,
		quota:         deps.Quota,
		media:         deps.Media,
		validate:      validate,
		maxUploadMB:   deps.MaxUploadMB,
		log:           logger.With("handler", "me"),
	}
}

// Profile handles GET /me and GET /me/permissions.
func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfile(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// Usage handles GET /me/usage.
func (h *MeHandler) Usage(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	u, err := h.usage.GetUsage(r.Context(), caller.ID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsageResponse(u))
}

// Subscription handles GET /me/subscription.
func (h *MeHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	h.writeSubscription(w, r, caller.ID, nil)
}

// Upgrade handles POST /me/subscription/upgrade.
func (h *MeHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	sub, err := h.subscriptions.Upgrade(r.Context(), caller.ID, domain.Tier(req.Tier))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.writeSubscription(w, r, caller.ID, &sub)
}

// Cancel handles POST /me/subscription/cancel.
func (h *MeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	sub, err := h.subscriptions.Cancel(r.Context(), caller.ID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.writeSubscription(w, r, caller.ID, &sub)
}

// MutationQuota handles GET /me/quota/mutation. It never consumes.
func (h *MeHandler) MutationQuota(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	d, err := h.quota.CanPerformMutation(r.Context(), caller.ID, caller.Tier)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutationDecision(d))
}

// UploadQuota handles POST /me/quota/upload. It never consumes.
func (h *MeHandler) UploadQuota(w http.ResponseWriter, r *http.Request) {
	var req uploadCheckRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	d, err := h.quota.CanUploadFile(r.Context(), caller.ID, caller.Tier, req.SizeMB)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUploadDecision(d))
}

// RecordMutation handles POST /me/mutations. The mutation is checked and
// recorded in one step; a refusal is reported with 403 and the decision.
func (h *MeHandler) RecordMutation(w http.ResponseWriter, r *http.Request) {
	var req mutationRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	d, err := h.quota.TryConsumeMutation(r.Context(), caller.ID, caller.Tier, req.Action, req.Resource)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := http.StatusCreated
	if !d.Allowed {
		status = http.StatusForbidden
	}
	writeJSON(w, status, toMutationDecision(d))
}

// Mutations handles GET /me/mutations?limit=50.
func (h *MeHandler) Mutations(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records, err := h.usage.MutationHistory(r.Context(), caller.ID, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]mutationRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, mutationRecordResponse{
			ID:        rec.ID,
			Action:    rec.Action,
			Resource:  rec.Resource,
			Timestamp: rec.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// UploadMedia handles POST /me/media as multipart/form-data with a "file"
// part.
func (h *MeHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	// Leave headroom for the multipart envelope.
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxUploadMB+1)<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "missing file part")
		return
	}
	defer file.Close()

	res, err := h.media.Upload(r.Context(), media.UploadInput{
		UserID:      caller.ID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Decision.Allowed {
		status = http.StatusForbidden
	}
	writeJSON(w, status, uploadResponse{
		Decision: toUploadDecision(res.Decision),
		Key:      res.Key,
		SizeMB:   res.SizeMB,
	})
}

// DeleteMedia handles DELETE /me/media/*.
func (h *MeHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "missing media key")
		return
	}

	if err := h.media.Delete(r.Context(), caller.ID, key); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caller loads the authenticated user from the registry.
func (h *MeHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	u, err := h.profiles.Caller(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return nil, false
	}
	return u, true
}

func (h *MeHandler) writeSubscription(w http.ResponseWriter, r *http.Request, userID string, sub *domain.UserSubscription) {
	if sub == nil {
		current, err := h.subscriptions.GetSubscription(r.Context(), userID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		sub = &current
	}
	active, err := h.subscriptions.IsActive(r.Context(), userID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(*sub, active))
}
