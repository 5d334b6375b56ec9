package billing

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/plans"
)

// Service synchronizes provider subscription state into local tables and
// keeps the user's stored tier consistent with it.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// SyncSubscription upserts provider subscription data and reconciles the
// user's tier. The returned string is the effective tier after reconciling.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) (*models.Subscription, string, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if in.UserID == 0 || provider == "" || strings.TrimSpace(in.ProviderSubscriptionID) == "" {
		return nil, "", errors.New("user_id, provider and provider_subscription_id are required")
	}

	sub := &models.Subscription{
		UserID:             in.UserID,
		Tier:               string(plans.Normalize(in.Tier)),
		Status:             NormalizeStatus(in.Status),
		ProviderSubID:      strings.TrimSpace(in.ProviderSubscriptionID),
		CurrentPeriodStart: in.CurrentPeriodStart,
		CurrentPeriodEnd:   in.CurrentPeriodEnd,
		CancelAtPeriodEnd:  in.CancelAtPeriodEnd,
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, "", err
	}

	effectiveTier, err := s.ReconcileUserTier(ctx, in.UserID)
	if err != nil {
		return sub, "", err
	}
	return sub, effectiveTier, nil
}

// ReconcileUserTier computes and writes the best effective tier for a user.
// Only active-like subscriptions count; with none left the user drops to free.
func (s *Service) ReconcileUserTier(ctx context.Context, userID uint) (string, error) {
	_ = ctx
	if userID == 0 {
		return "", errors.New("user_id is required")
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return "", err
	}

	best := string(plans.TierFree)
	for _, sub := range subs {
		if !sub.IsActiveLike() {
			continue
		}
		candidate := string(plans.Normalize(sub.Tier))
		if plans.Rank(candidate) > plans.Rank(best) {
			best = candidate
		}
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		return "", err
	}
	if string(plans.Normalize(user.Tier)) == best {
		return best, nil
	}
	if err := s.repo.UpdateUserTier(userID, best); err != nil {
		return "", err
	}
	return best, nil
}

// NormalizeStatus maps raw provider status strings onto the local
// subscription vocabulary. Unknown statuses do not entitle.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "active_patron":
		return models.SubscriptionStatusActive
	case "trialing", "trial", "in_trial":
		return models.SubscriptionStatusTrialing
	case "paused", "on_hold":
		return models.SubscriptionStatusPaused
	case "canceled", "cancelled", "expired", "former_patron", "declined_patron":
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusNone
	}
}
