package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// GetCurrentUsage returns the counters of the usage period containing "now".
// A user without an active subscription, or whose current period has not been
// materialized yet, gets all zeros rather than an error.
func (s *Service) GetCurrentUsage(ctx context.Context, userID uint) (UsageSummary, error) {
	_ = ctx
	period, err := s.currentPeriod(userID)
	if err != nil {
		return UsageSummary{}, err
	}
	if period == nil {
		return UsageSummary{}, nil
	}
	return UsageSummary{
		Videos:         period.VideosProcessed,
		APICalls:       period.APICallsMade,
		StorageMB:      period.StorageUsedMB,
		AISummaries:    period.AISummariesGenerated,
		AnalyticsViews: period.AnalyticsViews,
	}, nil
}

// GetCurrentPeriodUsage returns the videos counter only. This is the
// enforcer's hot path.
func (s *Service) GetCurrentPeriodUsage(ctx context.Context, userID uint) (int, error) {
	_ = ctx
	period, err := s.currentPeriod(userID)
	if err != nil {
		return 0, err
	}
	if period == nil {
		return 0, nil
	}
	return period.VideosProcessed, nil
}

// currentPeriod resolves the usage period containing "now" for the user's
// active subscription. Absence at any step yields (nil, nil).
func (s *Service) currentPeriod(userID uint) (*models.UsagePeriod, error) {
	sub, err := s.repo.GetActiveLikeSubscription(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	period, err := s.repo.GetUsagePeriod(sub.ID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return period, nil
}

// RecordUsage applies the side effect of an admitted decision after the gated
// action has completed. The caller must treat any returned error as
// non-fatal: the user-visible action already happened and is never rolled
// back over a bookkeeping fault.
func (s *Service) RecordUsage(ctx context.Context, dec Decision) error {
	_ = ctx
	if !dec.Allowed || dec.UserID == 0 {
		return nil
	}

	// Free-trial admissions flip the per-user credit instead of counting
	// against a period. The flip is idempotent; a repeat call is a no-op.
	if dec.IsFreeTrialUser {
		return s.repo.MarkFreeVideoUsed(dec.UserID)
	}

	if models.UsageCounterColumn(dec.Resource) == "" {
		return nil
	}
	increment := dec.Increment
	if increment <= 0 {
		increment = 1
	}

	sub, err := s.repo.GetActiveLikeSubscription(dec.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to count against; undercounting beats failing the user.
			return nil
		}
		return err
	}

	period, err := s.repo.GetUsagePeriod(sub.ID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.createSeededPeriod(sub, dec.Resource, increment)
		}
		return err
	}
	return s.repo.IncrementUsageCounter(period.ID, dec.Resource, increment)
}

// createSeededPeriod lazily materializes the current usage period with the
// increment already applied. Period bounds come from the subscription record,
// falling back to the calendar month when the record carries none.
func (s *Service) createSeededPeriod(sub *models.Subscription, resource string, increment int) error {
	now := s.now()
	start, end := now, now
	if sub.CurrentPeriodStart != nil && sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(*sub.CurrentPeriodStart) {
		start, end = *sub.CurrentPeriodStart, *sub.CurrentPeriodEnd
	} else {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0).Add(-time.Second)
	}

	period := &models.UsagePeriod{
		SubscriptionID: sub.ID,
		PeriodStart:    start,
		PeriodEnd:      end,
	}
	switch resource {
	case models.ResourceVideos:
		period.VideosProcessed = increment
	case models.ResourceAPICalls:
		period.APICallsMade = increment
	case models.ResourceStorage:
		period.StorageUsedMB = increment
	case models.ResourceAISummaries:
		period.AISummariesGenerated = increment
	case models.ResourceAnalyticsViews:
		period.AnalyticsViews = increment
	}
	return s.repo.CreateUsagePeriod(period)
}

// CanProcessVideo is a coarse advisory probe for UX ("show or grey out the
// upload button"). It fails open on unexpected errors, unlike the enforcer's
// own fail-closed checks.
func (s *Service) CanProcessVideo(ctx context.Context, userID uint, tier string) bool {
	dec, err := s.CheckUsageLimit(ctx, userID, tier, models.ResourceVideos, 1)
	if err != nil {
		log.Warnf("[Entitlements] advisory video probe failed for user %d: %v", userID, err)
		return true
	}
	return dec.Allowed
}
