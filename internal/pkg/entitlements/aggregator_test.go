package entitlements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/plans"
)

func TestGetSubscriptionInfoFreeUser(t *testing.T) {
	svc := NewService(newFakeRepo())

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "free")
	require.NoError(t, err)

	assert.Equal(t, "free", info.Tier)
	assert.Equal(t, "free", info.EffectiveTier)
	assert.Equal(t, models.SubscriptionStatusNone, info.Status)
	assert.False(t, info.HasGrant)
	assert.Equal(t, 0, info.VideoLimit)
	assert.Equal(t, 0, info.RemainingVideos)
	assert.False(t, info.Features["api"])
	assert.False(t, info.Features["analytics"])
}

func TestGetSubscriptionInfoUsageAndPercents(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	p := repo.seedPeriod(sub, 5)
	p.APICallsMade = 250
	svc := NewService(repo)

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "basic")
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionStatusActive, info.Status)
	assert.Equal(t, 10, info.Limits[models.ResourceVideos])
	assert.Equal(t, 5, info.Usage.Videos)
	assert.Equal(t, 5, info.RemainingVideos)
	assert.InDelta(t, 50.0, info.UsagePercents[models.ResourceVideos], 0.001)
	assert.InDelta(t, 25.0, info.UsagePercents[models.ResourceAPICalls], 0.001)
	assert.Equal(t, sub.CurrentPeriodStart, info.PeriodStart)
	assert.Equal(t, sub.CurrentPeriodEnd, info.PeriodEnd)
}

func TestGetSubscriptionInfoPercentCapsAtHundred(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	repo.seedPeriod(sub, 14)
	svc := NewService(repo)

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "basic")
	require.NoError(t, err)

	assert.InDelta(t, 100.0, info.UsagePercents[models.ResourceVideos], 0.001)
	assert.Equal(t, 0, info.RemainingVideos, "remaining never goes negative")
}

func TestGetSubscriptionInfoUnlimitedTier(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "creator")
	repo.seedPeriod(sub, 9000)
	svc := NewService(repo)

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "creator")
	require.NoError(t, err)

	assert.Equal(t, plans.Unlimited, info.VideoLimit)
	assert.Equal(t, plans.Unlimited, info.RemainingVideos)
	assert.InDelta(t, 0.0, info.UsagePercents[models.ResourceVideos], 0.001)
	assert.True(t, info.Features["unlimited_videos"])
}

func TestGetSubscriptionInfoGrantOverridesLimit(t *testing.T) {
	repo := newFakeRepo()
	limit := 25
	repo.grants = append(repo.grants, &models.Grant{
		ID: 1, UserID: 2, GrantType: models.GrantTypeVideoLimitOverride,
		VideoLimitOverride: &limit, IsActive: true,
	})
	svc := NewService(repo)

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "free")
	require.NoError(t, err)

	assert.True(t, info.HasGrant)
	assert.Equal(t, models.GrantTypeVideoLimitOverride, info.GrantType)
	assert.Equal(t, 25, info.VideoLimit)
	assert.Equal(t, 25, info.RemainingVideos)
	assert.Equal(t, "free", info.EffectiveTier, "only full_access moves the effective tier")
}

func TestGetSubscriptionInfoFullAccessMovesEffectiveTier(t *testing.T) {
	repo := newFakeRepo()
	repo.grants = append(repo.grants, &models.Grant{
		ID: 1, UserID: 2, GrantType: models.GrantTypeFullAccess,
		TierOverride: "premium", IsActive: true,
	})
	svc := NewService(repo)

	info, err := svc.GetSubscriptionInfo(context.Background(), 2, "free")
	require.NoError(t, err)

	assert.Equal(t, "free", info.Tier)
	assert.Equal(t, "premium", info.EffectiveTier)
	assert.Equal(t, 50, info.VideoLimit)
	assert.True(t, info.Features["analytics"], "features follow the override tier")
}
