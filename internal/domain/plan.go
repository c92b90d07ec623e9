package domain

import "fmt"

// Tier is a subscription level controlling quota caps and feature access.
type Tier string

const (
	TierFree   Tier = "free"
	TierMember Tier = "member"
	TierPro    Tier = "pro"
)

func (t Tier) String() string { return string(t) }

func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierMember, TierPro:
		return true
	}
	return false
}

// IsPaid reports whether the tier requires an active subscription.
func (t Tier) IsPaid() bool {
	return t != TierFree
}

// Limit encoding shared by every numeric cap in a PlanDefinition.
const (
	LimitNone      = 0
	LimitUnlimited = -1
)

// PlanDefinition is the static description of one tier. Limits use the
// encoding 0 = none, -1 = unlimited, n > 0 = cap per period.
type PlanDefinition struct {
	ID             Tier
	Name           string
	MutationLimit  int
	UploadLimit    int
	StorageLimitMB int
	PriceMonthly   float64
	PriceYearly    float64
	CoinBonus      int
	Features       []string
}

// tierOrder is the display and upgrade order of the catalog.
var tierOrder = []Tier{TierFree, TierMember, TierPro}

// planCatalog is the single source of truth for every numeric limit.
var planCatalog = map[Tier]PlanDefinition{
	TierFree: {
		ID:             TierFree,
		Name:           "Free",
		MutationLimit:  0,
		UploadLimit:    5,
		StorageLimitMB: 100,
		PriceMonthly:   0,
		PriceYearly:    0,
		CoinBonus:      0,
		Features: []string{
			"Access free courses",
			"Browse all events",
			"Community access",
			"Basic profile",
			"0 mutations/mo",
			"5 uploads/mo",
			"100 MB storage",
		},
	},
	TierMember: {
		ID:             TierMember,
		Name:           "Member",
		MutationLimit:  50,
		UploadLimit:    50,
		StorageLimitMB: 2048,
		PriceMonthly:   9.99,
		PriceYearly:    99.99,
		CoinBonus:      50,
		Features: []string{
			"All Free features",
			"Access Member courses",
			"Priority event booking",
			"50 mutations/mo",
			"50 uploads/mo",
			"2 GB storage",
			"Monthly coin bonus (50)",
			"Exclusive badges",
		},
	},
	TierPro: {
		ID:             TierPro,
		Name:           "Pro",
		MutationLimit:  LimitUnlimited,
		UploadLimit:    LimitUnlimited,
		StorageLimitMB: LimitUnlimited,
		PriceMonthly:   24.99,
		PriceYearly:    249.99,
		CoinBonus:      200,
		Features: []string{
			"All Member features",
			"Access ALL courses",
			"VIP event access",
			"Unlimited mutations",
			"Unlimited uploads",
			"Unlimited storage",
			"Monthly coin bonus (200)",
			"Early access to drops",
			"Dashboard analytics",
		},
	},
}

func init() {
	if err := validateCatalog(); err != nil {
		panic(err)
	}
}

func validateCatalog() error {
	if len(planCatalog) != len(tierOrder) {
		return fmt.Errorf("plan catalog: %d definitions for %d tiers", len(planCatalog), len(tierOrder))
	}
	for _, tier := range tierOrder {
		p, ok := planCatalog[tier]
		if !ok {
			return fmt.Errorf("plan catalog: missing tier %q", tier)
		}
		if p.ID != tier {
			return fmt.Errorf("plan catalog: tier %q has id %q", tier, p.ID)
		}
		for name, v := range map[string]int{
			"mutation_limit":   p.MutationLimit,
			"upload_limit":     p.UploadLimit,
			"storage_limit_mb": p.StorageLimitMB,
		} {
			if v < LimitUnlimited {
				return fmt.Errorf("plan catalog: tier %q %s = %d", tier, name, v)
			}
		}
	}
	return nil
}

// DefinitionFor returns the plan for a tier. Unknown tiers resolve to the
// free plan.
func DefinitionFor(tier Tier) PlanDefinition {
	p, ok := planCatalog[tier]
	if !ok {
		p = planCatalog[TierFree]
	}
	p.Features = append([]string(nil), p.Features...)
	return p
}

// Plans returns every plan definition in tier order.
func Plans() []PlanDefinition {
	plans := make([]PlanDefinition, 0, len(tierOrder))
	for _, t := range tierOrder {
		plans = append(plans, DefinitionFor(t))
	}
	return plans
}

// IsUnlimited reports whether a limit value means "no cap".
func IsUnlimited(limit int) bool {
	return limit == LimitUnlimited
}
