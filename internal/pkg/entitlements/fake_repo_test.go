package entitlements

import (
	"time"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	subs     []*models.Subscription
	periods  []*models.UsagePeriod
	grants   []*models.Grant
	users    map[uint]*models.User
	settings map[uint]*models.UserSettings

	nextGrantID  uint
	nextPeriodID uint

	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        map[uint]*models.User{},
		settings:     map[uint]*models.UserSettings{},
		nextGrantID:  1,
		nextPeriodID: 1,
	}
}

func (f *fakeRepo) GetActiveLikeSubscription(userID uint) (*models.Subscription, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.IsActiveLike() {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetLatestSubscription(userID uint) (*models.Subscription, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for i := len(f.subs) - 1; i >= 0; i-- {
		if f.subs[i].UserID == userID {
			return f.subs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUsagePeriod(subscriptionID uint, at time.Time) (*models.UsagePeriod, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.periods {
		if p.SubscriptionID == subscriptionID && p.Contains(at) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateUsagePeriod(p *models.UsagePeriod) error {
	if f.failWith != nil {
		return f.failWith
	}
	p.ID = f.nextPeriodID
	f.nextPeriodID++
	f.periods = append(f.periods, p)
	return nil
}

func (f *fakeRepo) IncrementUsageCounter(periodID uint, resource string, delta int) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, p := range f.periods {
		if p.ID != periodID {
			continue
		}
		switch resource {
		case models.ResourceVideos:
			p.VideosProcessed += delta
		case models.ResourceAPICalls:
			p.APICallsMade += delta
		case models.ResourceStorage:
			p.StorageUsedMB += delta
		case models.ResourceAISummaries:
			p.AISummariesGenerated += delta
		case models.ResourceAnalyticsViews:
			p.AnalyticsViews += delta
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetActiveGrant(userID uint) (*models.Grant, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for i := len(f.grants) - 1; i >= 0; i-- {
		if f.grants[i].UserID == userID && f.grants[i].IsActive {
			return f.grants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetGrant(id uint) (*models.Grant, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, g := range f.grants {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateGrantExclusive(g *models.Grant, tierOverride string) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.grants {
		if existing.UserID == g.UserID {
			existing.IsActive = false
		}
	}
	g.ID = f.nextGrantID
	f.nextGrantID++
	f.grants = append(f.grants, g)
	if tierOverride != "" {
		if u, ok := f.users[g.UserID]; ok {
			u.Tier = tierOverride
		}
	}
	return nil
}

func (f *fakeRepo) DeactivateGrant(id uint) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, g := range f.grants {
		if g.ID == id {
			g.IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUser(userID uint) (*models.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateUserTier(userID uint, tier string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if u, ok := f.users[userID]; ok {
		u.Tier = tier
	}
	return nil
}

func (f *fakeRepo) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if us, ok := f.settings[userID]; ok {
		return us, nil
	}
	us := &models.UserSettings{ID: userID, UserID: userID}
	f.settings[userID] = us
	return us, nil
}

func (f *fakeRepo) MarkFreeVideoUsed(userID uint) error {
	if f.failWith != nil {
		return f.failWith
	}
	us, _ := f.GetOrCreateUserSettings(userID)
	us.FreeVideoUsed = true
	return nil
}

// activeSubscription seeds an active subscription with a month-long period
// window around now.
func (f *fakeRepo) activeSubscription(userID uint, tier string) *models.Subscription {
	start := time.Now().Add(-15 * 24 * time.Hour)
	end := time.Now().Add(15 * 24 * time.Hour)
	sub := &models.Subscription{
		ID:                 uint(len(f.subs) + 1),
		UserID:             userID,
		Tier:               tier,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
	}
	f.subs = append(f.subs, sub)
	return sub
}

// seedPeriod attaches a current usage period to a subscription.
func (f *fakeRepo) seedPeriod(sub *models.Subscription, videos int) *models.UsagePeriod {
	p := &models.UsagePeriod{
		ID:              f.nextPeriodID,
		SubscriptionID:  sub.ID,
		PeriodStart:     *sub.CurrentPeriodStart,
		PeriodEnd:       *sub.CurrentPeriodEnd,
		VideosProcessed: videos,
	}
	f.nextPeriodID++
	f.periods = append(f.periods, p)
	return p
}
