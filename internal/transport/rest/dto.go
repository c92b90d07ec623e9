package rest

import (
	"net/http"
	"time"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/user"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type upgradeRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free member pro"`
}

type uploadCheckRequest struct {
	SizeMB float64 `json:"sizeMb" validate:"gte=0"`
}

type mutationRequest struct {
	Action   string `json:"action" validate:"required,max=64"`
	Resource string `json:"resource" validate:"required,max=256"`
}

type purchaseRequest struct {
	ResourceID  string `json:"resourceId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	PaymentType string `json:"paymentType" validate:"required,oneof=full installment"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator editor finance admin"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Tier        string     `json:"tier"`
	Suspended   bool       `json:"suspended"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role.String(),
		Tier:        u.Tier.String(),
		Suspended:   u.Suspended,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type authResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Token        string        `json:"token,omitempty"`
	AttemptsLeft int           `json:"attemptsLeft,omitempty"`
	User         *userResponse `json:"user,omitempty"`
}

func toAuthResponse(res domain.AuthResult) authResponse {
	out := authResponse{
		Success:      res.Success,
		Error:        string(res.Error),
		Token:        res.Token,
		AttemptsLeft: res.AttemptsLeft,
	}
	if res.User != nil {
		u := toUserResponse(*res.User)
		out.User = &u
	}
	return out
}

// authStatus maps an auth failure onto an HTTP status.
func authStatus(res domain.AuthResult) int {
	switch res.Error {
	case "":
		return 0
	case domain.AuthErrInvalidInput:
		return http.StatusBadRequest
	case domain.AuthErrEmailTaken:
		return http.StatusConflict
	case domain.AuthErrSuspended, domain.AuthErrAccountLocked:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

type profileResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	RoleLabel   string   `json:"roleLabel"`
	Tier        string   `json:"tier"`
	Permissions []string `json:"permissions"`
}

func toProfileResponse(p user.Profile) profileResponse {
	return profileResponse(p)
}

type usageResponse struct {
	MutationsUsed      int       `json:"mutationsUsed"`
	UploadsUsed        int       `json:"uploadsUsed"`
	StorageUsedMB      float64   `json:"storageUsedMb"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
}

func toUsageResponse(u domain.UserUsage) usageResponse {
	return usageResponse{
		MutationsUsed:      u.MutationsUsed,
		UploadsUsed:        u.UploadsUsed,
		StorageUsedMB:      u.StorageUsedMB,
		CurrentPeriodStart: u.CurrentPeriodStart,
		CurrentPeriodEnd:   u.CurrentPeriodEnd,
	}
}

type subscriptionResponse struct {
	Tier               string     `json:"tier"`
	Status             string     `json:"status"`
	Active             bool       `json:"active"`
	CurrentPeriodStart time.Time  `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time  `json:"currentPeriodEnd"`
	LastPaymentAt      *time.Time `json:"lastPaymentAt,omitempty"`
}

func toSubscriptionResponse(s domain.UserSubscription, active bool) subscriptionResponse {
	return subscriptionResponse{
		Tier:               s.Tier.String(),
		Status:             s.Status.String(),
		Active:             active,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		LastPaymentAt:      s.LastPaymentAt,
	}
}

type mutationDecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Used    int    `json:"used"`
	Limit   int    `json:"limit"`
}

func toMutationDecision(d domain.MutationDecision) mutationDecisionResponse {
	return mutationDecisionResponse{
		Allowed: d.Allowed,
		Reason:  d.Reason.String(),
		Used:    d.Used,
		Limit:   d.Limit,
	}
}

type uploadDecisionResponse struct {
	Allowed        bool    `json:"allowed"`
	Reason         string  `json:"reason,omitempty"`
	UploadsUsed    int     `json:"uploadsUsed"`
	UploadLimit    int     `json:"uploadLimit"`
	StorageUsedMB  float64 `json:"storageUsedMb"`
	StorageLimitMB int     `json:"storageLimitMb"`
}

func toUploadDecision(d domain.UploadDecision) uploadDecisionResponse {
	return uploadDecisionResponse{
		Allowed:        d.Allowed,
		Reason:         d.Reason.String(),
		UploadsUsed:    d.UploadsUsed,
		UploadLimit:    d.UploadLimit,
		StorageUsedMB:  d.StorageUsedMB,
		StorageLimitMB: d.StorageLimitMB,
	}
}

type mutationRecordResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
}

type uploadResponse struct {
	Decision uploadDecisionResponse `json:"decision"`
	Key      string                 `json:"key,omitempty"`
	SizeMB   float64                `json:"sizeMb"`
}

type purchaseResponse struct {
	Accepted bool   `json:"accepted"`
	Key      string `json:"key"`
	Error    string `json:"error,omitempty"`
}

type planResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MutationLimit  int      `json:"mutationLimit"`
	UploadLimit    int      `json:"uploadLimit"`
	StorageLimitMB int      `json:"storageLimitMb"`
	PriceMonthly   float64  `json:"priceMonthly"`
	PriceYearly    float64  `json:"priceYearly"`
	CoinBonus      int      `json:"coinBonus"`
	Features       []string `json:"features"`
}

func toPlanResponse(p domain.PlanDefinition) planResponse {
	return planResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		MutationLimit:  p.MutationLimit,
		UploadLimit:    p.UploadLimit,
		StorageLimitMB: p.StorageLimitMB,
		PriceMonthly:   p.PriceMonthly,
		PriceYearly:    p.PriceYearly,
		CoinBonus:      p.CoinBonus,
		Features:       p.Features,
	}
}

type auditEntryResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	Role           string    `json:"role"`
	Action         string    `json:"action"`
	TargetResource string    `json:"targetResource"`
	PreviousValue  *string   `json:"previousValue,omitempty"`
	NewValue       *string   `json:"newValue,omitempty"`
	IP             *string   `json:"ip,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func toAuditEntryResponse(e domain.AuditLogEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:             e.ID,
		UserID:         e.UserID,
		UserName:       e.UserName,
		Role:           e.Role.String(),
		Action:         e.Action.String(),
		TargetResource: e.TargetResource,
		PreviousValue:  e.PreviousValue,
		NewValue:       e.NewValue,
		IP:             e.IP,
		Timestamp:      e.Timestamp,
	}
}

type page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
