package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

// memRepo is a minimal in-memory entitlements.Repository for handler tests.
type memRepo struct {
	subs     []*models.Subscription
	periods  []*models.UsagePeriod
	grants   []*models.Grant
	settings map[uint]*models.UserSettings
}

func newMemRepo() *memRepo {
	return &memRepo{settings: map[uint]*models.UserSettings{}}
}

func (m *memRepo) GetActiveLikeSubscription(userID uint) (*models.Subscription, error) {
	for _, s := range m.subs {
		if s.UserID == userID && s.IsActiveLike() {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetLatestSubscription(userID uint) (*models.Subscription, error) {
	for i := len(m.subs) - 1; i >= 0; i-- {
		if m.subs[i].UserID == userID {
			return m.subs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetUsagePeriod(subscriptionID uint, at time.Time) (*models.UsagePeriod, error) {
	for _, p := range m.periods {
		if p.SubscriptionID == subscriptionID && p.Contains(at) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) CreateUsagePeriod(p *models.UsagePeriod) error {
	p.ID = uint(len(m.periods) + 1)
	m.periods = append(m.periods, p)
	return nil
}

func (m *memRepo) IncrementUsageCounter(periodID uint, resource string, delta int) error {
	for _, p := range m.periods {
		if p.ID == periodID {
			switch resource {
			case models.ResourceVideos:
				p.VideosProcessed += delta
			case models.ResourceAPICalls:
				p.APICallsMade += delta
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memRepo) GetActiveGrant(userID uint) (*models.Grant, error) {
	for _, g := range m.grants {
		if g.UserID == userID && g.IsActive {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetGrant(id uint) (*models.Grant, error) {
	for _, g := range m.grants {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) CreateGrantExclusive(g *models.Grant, tierOverride string) error {
	g.ID = uint(len(m.grants) + 1)
	m.grants = append(m.grants, g)
	return nil
}

func (m *memRepo) DeactivateGrant(id uint) error { return nil }

func (m *memRepo) GetUser(userID uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) UpdateUserTier(userID uint, tier string) error { return nil }

func (m *memRepo) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	if us, ok := m.settings[userID]; ok {
		return us, nil
	}
	us := &models.UserSettings{ID: userID, UserID: userID}
	m.settings[userID] = us
	return us, nil
}

func (m *memRepo) MarkFreeVideoUsed(userID uint) error {
	us, _ := m.GetOrCreateUserSettings(userID)
	us.FreeVideoUsed = true
	return nil
}

func (m *memRepo) seedActiveSub(userID uint, tier string) *models.Subscription {
	start := time.Now().Add(-10 * 24 * time.Hour)
	end := time.Now().Add(20 * 24 * time.Hour)
	sub := &models.Subscription{
		ID: uint(len(m.subs) + 1), UserID: userID, Tier: tier,
		Status: models.SubscriptionStatusActive, CurrentPeriodStart: &start, CurrentPeriodEnd: &end,
	}
	m.subs = append(m.subs, sub)
	return sub
}

// testApp wires a fiber app with a fixed user context ahead of the handler
// chain under test.
func testApp(ctx usercontext.UserContext, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append([]fiber.Handler{func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, ctx)
		return c.Next()
	}}, handlers...)
	ok := func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) }
	app.All("/api/v1/videos", append(chain, ok)...)
	app.All("/videos", append(chain, ok)...)
	return app
}

func decodeBody(t *testing.T, resp io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestCheckUsageLimitAnonymousJSON(t *testing.T) {
	m := NewSubscriptionMiddleware(entitlements.NewService(newMemRepo()))
	app := testApp(usercontext.UserContext{Tier: "free"}, m.CheckUsageLimit(models.ResourceVideos, 1))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "SUBSCRIPTION_ERROR", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestCheckUsageLimitAnonymousBrowserRedirectsToSignIn(t *testing.T) {
	m := NewSubscriptionMiddleware(entitlements.NewService(newMemRepo()))
	app := testApp(usercontext.UserContext{Tier: "free"}, m.CheckUsageLimit(models.ResourceVideos, 1))

	req := httptest.NewRequest("POST", "/videos", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, signInURL, resp.Header.Get("Location"))
}

func TestCheckUsageLimitQuotaExceededJSON(t *testing.T) {
	repo := newMemRepo()
	sub := repo.seedActiveSub(7, "basic")
	repo.periods = append(repo.periods, &models.UsagePeriod{
		ID: 1, SubscriptionID: sub.ID,
		PeriodStart: *sub.CurrentPeriodStart, PeriodEnd: *sub.CurrentPeriodEnd,
		VideosProcessed: 10,
	})
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"},
		m.CheckUsageLimit(models.ResourceVideos, 1),
	)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(10), body["current_usage"])
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, models.ResourceVideos, body["resource_type"])
	assert.Equal(t, upgradeURL, body["upgrade_url"])
}

func TestCheckUsageLimitQuotaExceededBrowserRedirectsToUpgrade(t *testing.T) {
	repo := newMemRepo()
	us, _ := repo.GetOrCreateUserSettings(7)
	us.FreeVideoUsed = true
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "free"},
		m.CheckUsageLimit(models.ResourceVideos, 1),
	)

	req := httptest.NewRequest("POST", "/videos", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, upgradeURL, resp.Header.Get("Location"))
}

func TestCheckUsageLimitFreeCreditFlagInBody(t *testing.T) {
	repo := newMemRepo()
	us, _ := repo.GetOrCreateUserSettings(7)
	us.FreeVideoUsed = true
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "free"},
		m.CheckUsageLimit(models.ResourceVideos, 1),
	)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["free_credit_used"])
}

func TestCheckUsageLimitAdmitsAndAttachesDecision(t *testing.T) {
	repo := newMemRepo()
	repo.seedActiveSub(7, "basic")
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))

	var attached entitlements.Decision
	capture := func(c *fiber.Ctx) error {
		attached, _ = c.Locals(UsageDecisionKey).(entitlements.Decision)
		return c.Next()
	}
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"},
		m.CheckUsageLimit(models.ResourceVideos, 1), capture,
	)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, attached.Allowed)
	assert.Equal(t, uint(7), attached.UserID)
	assert.Equal(t, models.ResourceVideos, attached.Resource)
}

func TestRequireSubscriptionTierDenialJSON(t *testing.T) {
	repo := newMemRepo()
	repo.seedActiveSub(7, "basic")
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"},
		m.RequireSubscription("premium"),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "basic", body["current_tier"])
	assert.Equal(t, "premium", body["required_tier"])
	assert.Equal(t, upgradeURL, body["upgrade_url"])
}

func TestRequireSubscriptionInactiveDenialJSON(t *testing.T) {
	repo := newMemRepo()
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 1, UserID: 7, Tier: "premium", Status: models.SubscriptionStatusCanceled,
	})
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "premium"},
		m.RequireSubscription("premium"),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, models.SubscriptionStatusCanceled, body["current_status"])
	assert.Equal(t, billingURL, body["billing_url"])
}

func TestRequireSubscriptionAdmits(t *testing.T) {
	repo := newMemRepo()
	repo.seedActiveSub(7, "enterprise")
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "enterprise"},
		m.RequireSubscription("premium"),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireFeatureDenialJSON(t *testing.T) {
	m := NewSubscriptionMiddleware(entitlements.NewService(newMemRepo()))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"},
		m.RequireFeature("analytics"),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "analytics", body["feature"])
	assert.Equal(t, "basic", body["current_tier"])
}

func TestRequireFeatureConfigErrorJSON(t *testing.T) {
	m := NewSubscriptionMiddleware(entitlements.NewService(newMemRepo()))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "platinum"},
		m.RequireFeature("analytics"),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.NotEmpty(t, body["message"])
	assert.Len(t, body, 1)
}

func TestTrackUsageRecordsAfterSuccess(t *testing.T) {
	repo := newMemRepo()
	sub := repo.seedActiveSub(7, "basic")
	repo.periods = append(repo.periods, &models.UsagePeriod{
		ID: 1, SubscriptionID: sub.ID,
		PeriodStart: *sub.CurrentPeriodStart, PeriodEnd: *sub.CurrentPeriodEnd,
		VideosProcessed: 3,
	})
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"},
		m.TrackUsage(models.ResourceVideos),
		m.CheckUsageLimit(models.ResourceVideos, 1),
	)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, repo.periods[0].VideosProcessed)
}

func TestTrackUsageSkipsFailedResponses(t *testing.T) {
	repo := newMemRepo()
	sub := repo.seedActiveSub(7, "basic")
	repo.periods = append(repo.periods, &models.UsagePeriod{
		ID: 1, SubscriptionID: sub.ID,
		PeriodStart: *sub.CurrentPeriodStart, PeriodEnd: *sub.CurrentPeriodEnd,
		VideosProcessed: 3,
	})
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))

	app := fiber.New()
	app.Post("/api/v1/videos",
		func(c *fiber.Ctx) error {
			usercontext.SetUserContext(c, usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "basic"})
			return c.Next()
		},
		m.TrackUsage(models.ResourceVideos),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "bad input"})
		},
	)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, 3, repo.periods[0].VideosProcessed)
}

func TestAddSubscriptionInfoAttachesProjection(t *testing.T) {
	repo := newMemRepo()
	repo.seedActiveSub(7, "premium")
	m := NewSubscriptionMiddleware(entitlements.NewService(repo))

	var got *entitlements.SubscriptionInfo
	capture := func(c *fiber.Ctx) error {
		got, _ = c.Locals(SubscriptionInfoKey).(*entitlements.SubscriptionInfo)
		return c.Next()
	}
	app := testApp(
		usercontext.UserContext{UserID: 7, IsLoggedIn: true, Tier: "premium"},
		m.AddSubscriptionInfo(), capture,
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/videos", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "premium", got.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, got.Status)
}
