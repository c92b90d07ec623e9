package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

type purchaseService interface {
	Submit(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseResult, error)
}

// PurchaseHandler serves purchase submission.
type PurchaseHandler struct {
	svc      purchaseService
	validate *validator.Validate
	log      *slog.Logger
}

// NewPurchaseHandler creates a PurchaseHandler.
func NewPurchaseHandler(svc purchaseService, validate *validator.Validate, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, validate: validate, log: logger.With("handler", "purchase")}
}

// Submit handles POST /purchases. A repeated purchase answers 409 with the
// duplicate_purchase result.
func (h *PurchaseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req purchaseRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.svc.Submit(r.Context(), domain.PurchaseRequest{
		UserID:      userID,
		ResourceID:  req.ResourceID,
		Quantity:    req.Quantity,
		PaymentType: domain.PaymentType(req.PaymentType),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := http.StatusCreated
	if !res.Accepted {
		status = http.StatusConflict
	}
	writeJSON(w, status, purchaseResponse{Accepted: res.Accepted, Key: res.Key, Error: res.Error})
}
