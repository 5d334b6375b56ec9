package entitlements

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/plans"
)

// GetSubscriptionInfo merges tier, subscription status, grant overrides, plan
// features, current usage and computed limits into a display projection. It
// holds no decision logic of its own; callers degrade to "no info" when it
// errors instead of failing the request.
func (s *Service) GetSubscriptionInfo(ctx context.Context, userID uint, tier string) (*SubscriptionInfo, error) {
	info := &SubscriptionInfo{
		Tier:          string(plans.Normalize(tier)),
		EffectiveTier: string(plans.Normalize(tier)),
		Status:        models.SubscriptionStatusNone,
	}

	sub, err := s.repo.GetLatestSubscription(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub != nil {
		info.Status = sub.Status
		info.PeriodStart = sub.CurrentPeriodStart
		info.PeriodEnd = sub.CurrentPeriodEnd
	}

	def, ok := plans.Lookup(info.EffectiveTier)
	if !ok {
		return nil, ErrPlanNotConfigured
	}
	info.VideoLimit = def.VideoLimit

	grant, err := s.CheckGrantAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	if grant.HasGrant {
		info.HasGrant = true
		info.GrantType = grant.GrantType
		info.VideoLimit = grant.VideoLimit
		if grant.GrantType == models.GrantTypeFullAccess && grant.TierOverride != "" {
			info.EffectiveTier = string(plans.Normalize(grant.TierOverride))
			if overrideDef, ok := plans.Lookup(info.EffectiveTier); ok {
				def = overrideDef
			}
		}
	}

	usage, err := s.GetCurrentUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	info.Usage = usage

	info.Features = map[string]bool{
		"analytics":        def.AnalyticsAccess,
		"api":              def.APIAccess,
		"unlimited_videos": def.VideoLimit == plans.Unlimited,
		"priority_support": def.PrioritySupport,
	}

	info.Limits = map[string]int{
		models.ResourceVideos:      info.VideoLimit,
		models.ResourceAPICalls:    def.APICallLimit,
		models.ResourceStorage:     def.StorageLimitMB,
		models.ResourceAISummaries: def.AISummaryLimit,
	}

	info.UsagePercents = map[string]float64{
		models.ResourceVideos:      usagePercent(usage.Videos, info.VideoLimit),
		models.ResourceAPICalls:    usagePercent(usage.APICalls, def.APICallLimit),
		models.ResourceStorage:     usagePercent(usage.StorageMB, def.StorageLimitMB),
		models.ResourceAISummaries: usagePercent(usage.AISummaries, def.AISummaryLimit),
	}

	if info.VideoLimit == plans.Unlimited {
		info.RemainingVideos = plans.Unlimited
	} else {
		remaining := info.VideoLimit - usage.Videos
		if remaining < 0 {
			remaining = 0
		}
		info.RemainingVideos = remaining
	}

	return info, nil
}

// usagePercent computes min(usage/limit*100, 100); unlimited limits report 0.
func usagePercent(usage, limit int) float64 {
	if limit == plans.Unlimited {
		return 0
	}
	if limit <= 0 {
		if usage > 0 {
			return 100
		}
		return 0
	}
	pct := float64(usage) / float64(limit) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
