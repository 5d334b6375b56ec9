package plans

import (
	"strings"

	"github.com/clipgate/ClipGate/app/models"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
	TierCreator    Tier = "creator"
)

// Unlimited marks a resource limit with no cap.
const Unlimited = -1

// Definition holds the resource limits and feature flags for one tier.
type Definition struct {
	VideoLimit      int
	APICallLimit    int
	StorageLimitMB  int
	AISummaryLimit  int
	AnalyticsAccess bool
	APIAccess       bool
	PrioritySupport bool
}

// definitions is the fixed plan table. Free-tier videos are 0 because the
// one-time free credit is handled separately from plan limits.
var definitions = map[Tier]Definition{
	TierFree: {
		VideoLimit:     0,
		APICallLimit:   25,
		StorageLimitMB: 500,
		AISummaryLimit: 1,
	},
	TierBasic: {
		VideoLimit:     10,
		APICallLimit:   1000,
		StorageLimitMB: 5000,
		AISummaryLimit: 10,
		APIAccess:      true,
	},
	TierPremium: {
		VideoLimit:      50,
		APICallLimit:    10000,
		StorageLimitMB:  25000,
		AISummaryLimit:  50,
		AnalyticsAccess: true,
		APIAccess:       true,
	},
	TierEnterprise: {
		VideoLimit:      Unlimited,
		APICallLimit:    Unlimited,
		StorageLimitMB:  Unlimited,
		AISummaryLimit:  Unlimited,
		AnalyticsAccess: true,
		APIAccess:       true,
		PrioritySupport: true,
	},
	TierCreator: {
		VideoLimit:      Unlimited,
		APICallLimit:    Unlimited,
		StorageLimitMB:  Unlimited,
		AISummaryLimit:  Unlimited,
		AnalyticsAccess: true,
		APIAccess:       true,
		PrioritySupport: true,
	},
}

// Normalize maps a raw tier string onto a known tier, defaulting to free.
func Normalize(tier string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(tier))) {
	case TierBasic:
		return TierBasic
	case TierPremium:
		return TierPremium
	case TierEnterprise:
		return TierEnterprise
	case TierCreator:
		return TierCreator
	default:
		return TierFree
	}
}

// Rank returns the position of a tier in the fixed ordering
// free < basic < premium < enterprise < creator. The ordering is a product
// decision, not derived from price: creator ranks above enterprise.
func Rank(tier string) int {
	switch Normalize(tier) {
	case TierCreator:
		return 4
	case TierEnterprise:
		return 3
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

// Lookup returns the plan definition for a tier. The bool is false when the
// tier string does not name a configured plan; callers treat that as a
// configuration error rather than falling back to free.
func Lookup(tier string) (Definition, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(tier)))
	def, ok := definitions[t]
	return def, ok
}

// ResourceLimit returns the configured cap for a metered resource.
func (d Definition) ResourceLimit(resource string) int {
	switch resource {
	case models.ResourceVideos:
		return d.VideoLimit
	case models.ResourceAPICalls:
		return d.APICallLimit
	case models.ResourceStorage:
		return d.StorageLimitMB
	case models.ResourceAISummaries:
		return d.AISummaryLimit
	case models.ResourceAnalyticsViews:
		return Unlimited
	default:
		return 0
	}
}

// HasFeature evaluates a named capability against the plan's feature flags.
// Unknown feature names deny.
func (d Definition) HasFeature(name string) bool {
	switch name {
	case "analytics":
		return d.AnalyticsAccess
	case "api":
		return d.APIAccess
	case "unlimited_videos":
		return d.VideoLimit == Unlimited
	case "priority_support":
		return d.PrioritySupport
	default:
		return false
	}
}

// AllTiers lists the known tiers in rank order.
func AllTiers() []Tier {
	return []Tier{TierFree, TierBasic, TierPremium, TierEnterprise, TierCreator}
}
