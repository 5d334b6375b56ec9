package entitlements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipgate/ClipGate/app/models"
)

func TestCheckUsageLimitRequiresAuthentication(t *testing.T) {
	svc := NewService(newFakeRepo())

	dec, err := svc.CheckUsageLimit(context.Background(), 0, "free", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyAuthenticationRequired, dec.Reason)
}

func TestFreeTierFirstVideoUsesCredit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 7, "free", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.IsFreeTrialUser)
	// The credit must not be consumed by the check itself.
	assert.False(t, repo.settings[7].FreeVideoUsed)
}

func TestFreeTierSecondVideoDenied(t *testing.T) {
	repo := newFakeRepo()
	repo.settings[7] = &models.UserSettings{UserID: 7, FreeVideoUsed: true}
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 7, "free", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExceeded, dec.Reason)
	assert.True(t, dec.FreeCreditUsed)
}

func TestPaidTierDeniedAtLimit(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(3, "basic")
	repo.seedPeriod(sub, 10)
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 3, "basic", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExceeded, dec.Reason)
	assert.Equal(t, 10, dec.CurrentUsage)
	assert.Equal(t, 10, dec.Limit)
	assert.Equal(t, models.ResourceVideos, dec.Resource)
}

func TestPaidTierAdmittedUnderLimit(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(3, "basic")
	repo.seedPeriod(sub, 9)
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 3, "basic", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 9, dec.CurrentUsage)
}

func TestQuotaAdmissionBoundary(t *testing.T) {
	// Admit iff usage + increment <= limit.
	tests := []struct {
		usage, increment int
		want             bool
	}{
		{usage: 0, increment: 1, want: true},
		{usage: 9, increment: 1, want: true},
		{usage: 10, increment: 1, want: false},
		{usage: 8, increment: 2, want: true},
		{usage: 9, increment: 2, want: false},
	}
	for _, tt := range tests {
		repo := newFakeRepo()
		sub := repo.activeSubscription(3, "basic")
		repo.seedPeriod(sub, tt.usage)
		svc := NewService(repo)

		dec, err := svc.CheckUsageLimit(context.Background(), 3, "basic", models.ResourceVideos, tt.increment)
		require.NoError(t, err)
		assert.Equalf(t, tt.want, dec.Allowed, "usage=%d increment=%d", tt.usage, tt.increment)
	}
}

func TestUnlimitedPlanAlwaysAdmits(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(9, "enterprise")
	repo.seedPeriod(sub, 100000)
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 9, "enterprise", models.ResourceVideos, 500)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestUnlimitedGrantShortCircuitsPlanLimit(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(4, "free")
	repo.seedPeriod(sub, 9999)
	repo.grants = append(repo.grants, &models.Grant{
		ID: 1, UserID: 4, GrantType: models.GrantTypeUnlimitedVideos, IsActive: true,
	})
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 4, "free", models.ResourceVideos, 250)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.HasAdminGrant)
	assert.Equal(t, models.GrantTypeUnlimitedVideos, dec.GrantType)
}

func TestLimitedGrantDeniedAgainstGrantLimitOnly(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(4, "premium") // plan limit 50, irrelevant here
	repo.seedPeriod(sub, 5)
	limit := 5
	repo.grants = append(repo.grants, &models.Grant{
		ID: 1, UserID: 4, GrantType: models.GrantTypeVideoLimitOverride,
		VideoLimitOverride: &limit, IsActive: true,
	})
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 4, "premium", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExceeded, dec.Reason)
	assert.True(t, dec.HasAdminGrant)
	assert.Equal(t, 5, dec.Limit)
}

func TestExpiredGrantFallsThroughToPlan(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(4, "basic")
	repo.seedPeriod(sub, 0)
	expired := time.Now().Add(-time.Hour)
	repo.grants = append(repo.grants, &models.Grant{
		ID: 1, UserID: 4, GrantType: models.GrantTypeUnlimitedVideos,
		IsActive: true, ExpiresAt: &expired,
	})
	svc := NewService(repo)

	dec, err := svc.CheckUsageLimit(context.Background(), 4, "basic", models.ResourceVideos, 1)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.False(t, dec.HasAdminGrant)
}

func TestUnknownTierIsConfigurationError(t *testing.T) {
	svc := NewService(newFakeRepo())

	dec, err := svc.CheckUsageLimit(context.Background(), 2, "platinum", models.ResourceAPICalls, 1)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyConfigurationMissing, dec.Reason)
}

func TestFreeTierNonVideoResourceUsesPlanLimit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	// Free plan allows 25 API calls; with no usage recorded this admits.
	dec, err := svc.CheckUsageLimit(context.Background(), 2, "free", models.ResourceAPICalls, 1)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.False(t, dec.IsFreeTrialUser)
}

func TestCheckTierRankAndStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.activeSubscription(5, "enterprise")
	svc := NewService(repo)

	// enterprise at rank 3 passes a premium (rank 2) gate
	dec, err := svc.CheckTier(context.Background(), 5, "enterprise", "premium")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	// basic fails a premium gate
	dec, err = svc.CheckTier(context.Background(), 5, "basic", "premium")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyTierInsufficient, dec.Reason)
	assert.Equal(t, "premium", dec.RequiredTier)
}

func TestCheckTierInactiveSubscription(t *testing.T) {
	repo := newFakeRepo()
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 1, UserID: 6, Tier: "premium", Status: models.SubscriptionStatusCanceled,
	})
	svc := NewService(repo)

	dec, err := svc.CheckTier(context.Background(), 6, "premium", "basic")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenySubscriptionInactive, dec.Reason)
	assert.Equal(t, models.SubscriptionStatusCanceled, dec.CurrentStatus)
}

func TestCheckTierActiveRowWinsOverNewerCanceledRow(t *testing.T) {
	// Billing sync keeps one row per provider subscription, so a cancellation
	// event for an old subscription can land after the replacement went
	// active. The active-like row decides the gate regardless of write order.
	repo := newFakeRepo()
	repo.subs = append(repo.subs,
		&models.Subscription{ID: 1, UserID: 6, Tier: "premium", Status: models.SubscriptionStatusActive},
		&models.Subscription{ID: 2, UserID: 6, Tier: "basic", Status: models.SubscriptionStatusCanceled},
	)
	svc := NewService(repo)

	dec, err := svc.CheckTier(context.Background(), 6, "premium", "basic")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, models.SubscriptionStatusActive, dec.CurrentStatus)
}

func TestCheckTierFreeUserPassesFreeGate(t *testing.T) {
	svc := NewService(newFakeRepo())

	dec, err := svc.CheckTier(context.Background(), 8, "free", "free")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestCheckTierPausedCountsAsActiveLike(t *testing.T) {
	repo := newFakeRepo()
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 1, UserID: 6, Tier: "premium", Status: models.SubscriptionStatusPaused,
	})
	svc := NewService(repo)

	dec, err := svc.CheckTier(context.Background(), 6, "premium", "basic")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}
