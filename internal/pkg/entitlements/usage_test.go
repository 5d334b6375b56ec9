package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipgate/ClipGate/app/models"
)

func TestGetCurrentUsageZerosWithoutSubscription(t *testing.T) {
	svc := NewService(newFakeRepo())

	usage, err := svc.GetCurrentUsage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, UsageSummary{}, usage)
}

func TestGetCurrentUsageZerosWithoutPeriod(t *testing.T) {
	repo := newFakeRepo()
	repo.activeSubscription(2, "basic")
	svc := NewService(repo)

	usage, err := svc.GetCurrentUsage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, UsageSummary{}, usage)
}

func TestGetCurrentUsageReadsPeriodCounters(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	p := repo.seedPeriod(sub, 3)
	p.APICallsMade = 120
	p.StorageUsedMB = 900
	p.AISummariesGenerated = 2
	svc := NewService(repo)

	usage, err := svc.GetCurrentUsage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, UsageSummary{Videos: 3, APICalls: 120, StorageMB: 900, AISummaries: 2}, usage)
}

func TestRecordUsageIncrementsExistingPeriod(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	p := repo.seedPeriod(sub, 3)
	svc := NewService(repo)

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: true, UserID: 2, Resource: models.ResourceVideos, Increment: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, p.VideosProcessed)
}

func TestRecordUsageCreatesSeededPeriod(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	svc := NewService(repo)

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: true, UserID: 2, Resource: models.ResourceAPICalls, Increment: 3,
	})
	require.NoError(t, err)

	require.Len(t, repo.periods, 1)
	p := repo.periods[0]
	assert.Equal(t, sub.ID, p.SubscriptionID)
	assert.Equal(t, 3, p.APICallsMade)
	assert.Equal(t, *sub.CurrentPeriodStart, p.PeriodStart)
	assert.Equal(t, *sub.CurrentPeriodEnd, p.PeriodEnd)
}

func TestRecordUsageSeededPeriodCalendarFallback(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	sub.CurrentPeriodStart = nil
	sub.CurrentPeriodEnd = nil
	svc := NewService(repo)
	at := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: true, UserID: 2, Resource: models.ResourceVideos,
	})
	require.NoError(t, err)

	require.Len(t, repo.periods, 1)
	p := repo.periods[0]
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), p.PeriodStart)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC), p.PeriodEnd)
	assert.Equal(t, 1, p.VideosProcessed)
}

func TestRecordUsageIgnoresDeniedDecision(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	p := repo.seedPeriod(sub, 3)
	svc := NewService(repo)

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: false, UserID: 2, Resource: models.ResourceVideos,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.VideosProcessed)
}

func TestRecordUsageNoSubscriptionIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: true, UserID: 2, Resource: models.ResourceVideos,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.periods)
}

func TestRecordUsageUnknownResourceIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	p := repo.seedPeriod(sub, 3)
	svc := NewService(repo)

	err := svc.RecordUsage(context.Background(), Decision{
		Allowed: true, UserID: 2, Resource: "gpu_minutes",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.VideosProcessed)
}

func TestRecordUsageFreeTrialFlipIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	dec := Decision{Allowed: true, UserID: 2, Resource: models.ResourceVideos, IsFreeTrialUser: true}

	require.NoError(t, svc.RecordUsage(context.Background(), dec))
	require.NoError(t, svc.RecordUsage(context.Background(), dec))

	assert.True(t, repo.settings[2].FreeVideoUsed)
	assert.Empty(t, repo.periods, "free credit must not touch usage periods")
}

func TestCanProcessVideoFailsOpen(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("connection refused")
	svc := NewService(repo)

	assert.True(t, svc.CanProcessVideo(context.Background(), 2, "basic"))
}

func TestCanProcessVideoReflectsDecision(t *testing.T) {
	repo := newFakeRepo()
	sub := repo.activeSubscription(2, "basic")
	repo.seedPeriod(sub, 10)
	svc := NewService(repo)

	assert.False(t, svc.CanProcessVideo(context.Background(), 2, "basic"))
}
