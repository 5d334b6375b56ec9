package entitlements

import "time"

// DenyReason classifies why an entitlement check refused a request. The
// middleware layer maps reasons to HTTP status codes.
type DenyReason string

const (
	DenyNone                   DenyReason = ""
	DenyAuthenticationRequired DenyReason = "authentication_required"
	DenyTierInsufficient       DenyReason = "tier_insufficient"
	DenySubscriptionInactive   DenyReason = "subscription_inactive"
	DenyQuotaExceeded          DenyReason = "quota_exceeded"
	DenyFeatureLocked          DenyReason = "feature_locked"
	DenyConfigurationMissing   DenyReason = "configuration_missing"
)

// Decision is the outcome of an entitlement check. For admitted requests it
// doubles as the decision context the usage recorder trusts later; the
// recorder never re-derives what the enforcer already decided.
type Decision struct {
	Allowed         bool       `json:"allowed"`
	Reason          DenyReason `json:"reason,omitempty"`
	Message         string     `json:"message,omitempty"`
	UserID          uint       `json:"user_id"`
	Resource        string     `json:"resource,omitempty"`
	Increment       int        `json:"increment,omitempty"`
	CurrentUsage    int        `json:"current_usage"`
	Limit           int        `json:"limit"`
	HasAdminGrant   bool       `json:"has_admin_grant,omitempty"`
	GrantType       string     `json:"grant_type,omitempty"`
	IsFreeTrialUser bool       `json:"is_free_trial_user,omitempty"`
	FreeCreditUsed  bool       `json:"free_credit_used,omitempty"`
	CurrentTier     string     `json:"current_tier,omitempty"`
	RequiredTier    string     `json:"required_tier,omitempty"`
	CurrentStatus   string     `json:"current_status,omitempty"`
	Feature         string     `json:"feature,omitempty"`
}

// GrantAccess is the resolved view of a user's single active grant.
type GrantAccess struct {
	HasGrant     bool       `json:"has_grant"`
	GrantID      uint       `json:"grant_id,omitempty"`
	GrantType    string     `json:"grant_type,omitempty"`
	VideoLimit   int        `json:"video_limit,omitempty"`
	TierOverride string     `json:"tier_override,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Unlimited mirrors the plan table's sentinel for uncapped limits.
const Unlimited = -1

// IsUnlimited reports whether the grant imposes no video cap.
func (g GrantAccess) IsUnlimited() bool {
	return g.HasGrant && g.VideoLimit == Unlimited
}

// UsageSummary exposes the current billing period's counters. All fields are
// zero when the user has no subscription or no materialized period.
type UsageSummary struct {
	Videos         int `json:"videos"`
	APICalls       int `json:"api_calls"`
	StorageMB      int `json:"storage"`
	AISummaries    int `json:"ai_summaries"`
	AnalyticsViews int `json:"analytics_views"`
}

// CreateGrantInput carries administrator input for issuing a new grant.
type CreateGrantInput struct {
	UserID             uint       `validate:"required"`
	GrantType          string     `validate:"required,oneof=unlimited_videos video_limit_override full_access trial_extension"`
	TierOverride       string     `validate:"omitempty,oneof=free basic premium enterprise creator"`
	VideoLimitOverride *int       `validate:"omitempty,gte=0"`
	ExpiresAt          *time.Time `validate:"-"`
	GrantedByID        uint       `validate:"required"`
	Reason             string     `validate:"max=255"`
}

// SubscriptionInfo is the read-only projection merged for client display.
type SubscriptionInfo struct {
	Tier            string             `json:"tier"`
	EffectiveTier   string             `json:"effective_tier"`
	Status          string             `json:"status"`
	HasGrant        bool               `json:"has_grant"`
	GrantType       string             `json:"grant_type,omitempty"`
	VideoLimit      int                `json:"video_limit"`
	RemainingVideos int                `json:"remaining_videos"`
	Features        map[string]bool    `json:"features"`
	Usage           UsageSummary       `json:"usage"`
	Limits          map[string]int     `json:"limits"`
	UsagePercents   map[string]float64 `json:"usage_percents"`
	PeriodStart     *time.Time         `json:"period_start,omitempty"`
	PeriodEnd       *time.Time         `json:"period_end,omitempty"`
}
