package domain

import "time"

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// UserSubscription is the paid-tier state of one user.
type UserSubscription struct {
	UserID             string
	Tier               Tier
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	LastPaymentAt      *time.Time
}

// NewFreeSubscription returns the default record created on first access.
func NewFreeSubscription(userID string, now time.Time) UserSubscription {
	start, end := PeriodFrom(now)
	return UserSubscription{
		UserID:             userID,
		Tier:               TierFree,
		Status:             SubscriptionActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}
}

// ShouldExpire reports whether a paid active subscription has lapsed.
func (s UserSubscription) ShouldExpire(now time.Time) bool {
	return s.Tier.IsPaid() && s.Status == SubscriptionActive && s.CurrentPeriodEnd.Before(now)
}

// IsActive reports whether the subscription currently grants its tier.
// The free tier is always active.
func (s UserSubscription) IsActive(now time.Time) bool {
	if !s.Tier.IsPaid() {
		return true
	}
	return s.Status == SubscriptionActive && now.Before(s.CurrentPeriodEnd)
}
