package domain

import "time"

// DenialReason is the closed set of reasons a quota check can refuse.
type DenialReason string

const (
	ReasonNone                DenialReason = ""
	ReasonNoCredits           DenialReason = "no_credits"
	ReasonLimitReached        DenialReason = "limit_reached"
	ReasonSubscriptionExpired DenialReason = "subscription_expired"
	ReasonUploadLimit         DenialReason = "upload_limit"
	ReasonStorageLimit        DenialReason = "storage_limit"
)

func (r DenialReason) String() string { return string(r) }

// MutationDecision is the outcome of a mutation quota check. Used and Limit
// are zero when the subscription gate refused.
type MutationDecision struct {
	Allowed bool
	Reason  DenialReason
	Used    int
	Limit   int
}

// UploadDecision is the outcome of an upload quota check. Allowed decisions
// carry all four counters; denials carry the pair relevant to the reason.
type UploadDecision struct {
	Allowed        bool
	Reason         DenialReason
	UploadsUsed    int
	UploadLimit    int
	StorageUsedMB  float64
	StorageLimitMB int
}

// EvaluateMutation applies the mutation rules in order: subscription gate,
// zero allowance, unlimited, cap.
func EvaluateMutation(tier Tier, sub UserSubscription, usage UserUsage, now time.Time) MutationDecision {
	if tier.IsPaid() && !sub.IsActive(now) {
		return MutationDecision{Reason: ReasonSubscriptionExpired}
	}

	limit := DefinitionFor(tier).MutationLimit
	switch {
	case limit == LimitNone:
		return MutationDecision{Reason: ReasonNoCredits, Used: 0, Limit: 0}
	case IsUnlimited(limit):
		return MutationDecision{Allowed: true, Used: usage.MutationsUsed, Limit: LimitUnlimited}
	case usage.MutationsUsed >= limit:
		return MutationDecision{Reason: ReasonLimitReached, Used: usage.MutationsUsed, Limit: limit}
	}
	return MutationDecision{Allowed: true, Used: usage.MutationsUsed, Limit: limit}
}

// storageTolerance absorbs float drift when a storage total lands on the cap.
const storageTolerance = 1e-9

// EvaluateUpload applies the upload rules in order: subscription gate, upload
// count, storage. The would-be storage total may equal the cap; anything above
// it is refused before rounding.
func EvaluateUpload(tier Tier, sub UserSubscription, usage UserUsage, sizeMB float64, now time.Time) UploadDecision {
	if tier.IsPaid() && !sub.IsActive(now) {
		return UploadDecision{Reason: ReasonSubscriptionExpired}
	}

	plan := DefinitionFor(tier)

	if !IsUnlimited(plan.UploadLimit) && usage.UploadsUsed >= plan.UploadLimit {
		return UploadDecision{
			Reason:      ReasonUploadLimit,
			UploadsUsed: usage.UploadsUsed,
			UploadLimit: plan.UploadLimit,
		}
	}

	if !IsUnlimited(plan.StorageLimitMB) && usage.StorageUsedMB+sizeMB > float64(plan.StorageLimitMB)+storageTolerance {
		return UploadDecision{
			Reason:         ReasonStorageLimit,
			StorageUsedMB:  usage.StorageUsedMB,
			StorageLimitMB: plan.StorageLimitMB,
		}
	}

	return UploadDecision{
		Allowed:        true,
		UploadsUsed:    usage.UploadsUsed,
		UploadLimit:    plan.UploadLimit,
		StorageUsedMB:  usage.StorageUsedMB,
		StorageLimitMB: plan.StorageLimitMB,
	}
}
