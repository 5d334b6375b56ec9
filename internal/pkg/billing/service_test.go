package billing

import (
	"context"
	"testing"

	"github.com/clipgate/ClipGate/app/models"
)

type fakeRepo struct {
	subs        []models.Subscription
	user        *models.User
	tierWrites  []string
	upsertCalls int
}

func (f *fakeRepo) UpsertSubscription(sub *models.Subscription) error {
	f.upsertCalls++
	for i := range f.subs {
		if f.subs[i].ProviderSubID == sub.ProviderSubID {
			f.subs[i] = *sub
			return nil
		}
	}
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeRepo) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetUser(userID uint) (*models.User, error) {
	return f.user, nil
}

func (f *fakeRepo) UpdateUserTier(userID uint, tier string) error {
	f.tierWrites = append(f.tierWrites, tier)
	f.user.Tier = tier
	return nil
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "active", want: models.SubscriptionStatusActive},
		{in: "ACTIVE", want: models.SubscriptionStatusActive},
		{in: "active_patron", want: models.SubscriptionStatusActive},
		{in: "trialing", want: models.SubscriptionStatusTrialing},
		{in: "trial", want: models.SubscriptionStatusTrialing},
		{in: "paused", want: models.SubscriptionStatusPaused},
		{in: "on_hold", want: models.SubscriptionStatusPaused},
		{in: "canceled", want: models.SubscriptionStatusCanceled},
		{in: "cancelled", want: models.SubscriptionStatusCanceled},
		{in: "expired", want: models.SubscriptionStatusCanceled},
		{in: "something_else", want: models.SubscriptionStatusNone},
		{in: "", want: models.SubscriptionStatusNone},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSyncSubscription_RequiresIdentity(t *testing.T) {
	svc := NewService(&fakeRepo{user: &models.User{ID: 1, Tier: "free"}})

	_, _, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{})
	if err == nil {
		t.Fatal("expected error for empty input")
	}

	_, _, err = svc.SyncSubscription(context.Background(), NormalizedSubscription{UserID: 1, Provider: "stripe"})
	if err == nil {
		t.Fatal("expected error for missing provider subscription id")
	}
}

func TestSyncSubscription_UpsertsAndReconciles(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 1, Tier: "free"}}
	svc := NewService(repo)

	sub, tier, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:                 1,
		Provider:               "stripe",
		ProviderSubscriptionID: "sub_123",
		Tier:                   "premium",
		Status:                 "active",
	})
	if err != nil {
		t.Fatalf("SyncSubscription failed: %v", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %q", sub.Status)
	}
	if tier != "premium" {
		t.Fatalf("expected effective tier premium, got %q", tier)
	}
	if repo.upsertCalls != 1 {
		t.Fatalf("expected one upsert, got %d", repo.upsertCalls)
	}
	if repo.user.Tier != "premium" {
		t.Fatalf("expected user tier moved to premium, got %q", repo.user.Tier)
	}
}

func TestSyncSubscription_CancellationDropsToFree(t *testing.T) {
	repo := &fakeRepo{user: &models.User{ID: 1, Tier: "premium"}}
	svc := NewService(repo)

	_, tier, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:                 1,
		Provider:               "stripe",
		ProviderSubscriptionID: "sub_123",
		Tier:                   "premium",
		Status:                 "canceled",
	})
	if err != nil {
		t.Fatalf("SyncSubscription failed: %v", err)
	}
	if tier != "free" {
		t.Fatalf("expected effective tier free after cancellation, got %q", tier)
	}
	if repo.user.Tier != "free" {
		t.Fatalf("expected user tier dropped to free, got %q", repo.user.Tier)
	}
}

func TestReconcileUserTier_PicksBestActiveLike(t *testing.T) {
	repo := &fakeRepo{
		user: &models.User{ID: 1, Tier: "free"},
		subs: []models.Subscription{
			{UserID: 1, ProviderSubID: "a", Tier: "basic", Status: models.SubscriptionStatusActive},
			{UserID: 1, ProviderSubID: "b", Tier: "creator", Status: models.SubscriptionStatusCanceled},
			{UserID: 1, ProviderSubID: "c", Tier: "premium", Status: models.SubscriptionStatusPaused},
		},
	}
	svc := NewService(repo)

	tier, err := svc.ReconcileUserTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReconcileUserTier failed: %v", err)
	}
	// Canceled creator does not count; paused premium beats active basic.
	if tier != "premium" {
		t.Fatalf("expected premium, got %q", tier)
	}
}

func TestReconcileUserTier_NoWriteWhenUnchanged(t *testing.T) {
	repo := &fakeRepo{
		user: &models.User{ID: 1, Tier: "basic"},
		subs: []models.Subscription{
			{UserID: 1, ProviderSubID: "a", Tier: "basic", Status: models.SubscriptionStatusActive},
		},
	}
	svc := NewService(repo)

	tier, err := svc.ReconcileUserTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReconcileUserTier failed: %v", err)
	}
	if tier != "basic" {
		t.Fatalf("expected basic, got %q", tier)
	}
	if len(repo.tierWrites) != 0 {
		t.Fatalf("expected no tier write, got %v", repo.tierWrites)
	}
}
