package domain

import (
	"fmt"
	"time"
)

// PaymentType is how a purchase is paid.
type PaymentType string

const (
	PaymentFull        PaymentType = "full"
	PaymentInstallment PaymentType = "installment"
)

func (p PaymentType) String() string { return string(p) }

func (p PaymentType) IsValid() bool {
	return p == PaymentFull || p == PaymentInstallment
}

// PurchaseKey derives the idempotency key for a purchase attempt. It carries
// no timestamp, so retries of the same logical purchase map to the same key.
func PurchaseKey(userID, resourceID string, qty int, paymentType PaymentType) string {
	return fmt.Sprintf("%s-%s-%d-%s", userID, resourceID, qty, paymentType)
}

// IdempotencyKey is a claimed purchase key.
type IdempotencyKey struct {
	Key       string
	CreatedAt time.Time
}

// PurchaseRequest is one purchase submission.
type PurchaseRequest struct {
	UserID      string
	ResourceID  string
	Quantity    int
	PaymentType PaymentType
}

// PurchaseErrDuplicate is reported when an idempotency key was already claimed.
const PurchaseErrDuplicate = "duplicate_purchase"

// PurchaseResult is the outcome of a purchase submission.
type PurchaseResult struct {
	Accepted bool
	Key      string
	Error    string
}
