package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/clipgate/ClipGate/app/controllers"
	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// optionalAPIKey authenticates API key credentials when present and lets
// session-authenticated and anonymous requests pass through. Anonymous
// requests are denied downstream by the subscription checks so the error
// body stays consistent.
func optionalAPIKey() fiber.Handler {
	strict := middleware.APIKeyAuthMiddleware()
	return func(c *fiber.Ctx) error {
		if hasAPIKeyCredentials(c) {
			return strict(c)
		}
		return c.Next()
	}
}

func hasAPIKeyCredentials(c *fiber.Ctx) bool {
	if c.Get("X-API-Key") != "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Get("Authorization")), "bearer ")
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	sub := subscriptionMW()

	v1 := api.Group("/v1", optionalAPIKey())

	// Subscription and usage projections
	v1.Get("/subscription", controllers.HandleGetSubscriptionAPI)
	v1.Get("/usage", controllers.HandleGetUsageAPI)

	// Video ingestion is the metered action. TrackUsage wraps the rest of
	// the chain so recording only happens after a successful response.
	v1.Post("/videos",
		sub.TrackUsage(models.ResourceVideos),
		sub.CheckUsageLimit(models.ResourceVideos, 1),
		controllers.HandleCreateVideoAPI,
	)
	v1.Get("/videos", controllers.HandleListVideosAPI)
	v1.Get("/videos/can-process", controllers.HandleCanProcessVideoAPI)
	v1.Get("/videos/:uuid", controllers.HandleGetVideoAPI)
	v1.Delete("/videos/:uuid", controllers.HandleDeleteVideoAPI)
	v1.Post("/videos/:uuid/share-token", controllers.HandleCreateShareTokenAPI)

	// Analytics are a plan capability, and reads count against the
	// analytics_views meter for unlimited-tier reporting.
	v1.Get("/videos/:uuid/analytics",
		sub.RequireFeature("analytics"),
		sub.TrackUsage(models.ResourceAnalyticsViews),
		controllers.HandleGetVideoAnalyticsAPI,
	)

	// Public share lookup, no credentials required
	v1.Get("/public/videos/:uuid", controllers.HandleGetPublicVideoAPI)

	// Account and API key management
	v1.Get("/user/account", controllers.HandleGetUserAccount)
	v1.Post("/user/api-key", middleware.RequireAPISessionAuth, controllers.HandleIssueAPIKey)
	v1.Delete("/user/api-key", middleware.RequireAPISessionAuth, controllers.HandleRevokeAPIKey)

	// Admin grant management
	adminV1 := v1.Group("/admin", middleware.RequireAPIAdmin)
	adminV1.Post("/grants", controllers.HandleAdminCreateGrant)
	adminV1.Get("/grants", controllers.HandleAdminListGrants)
	adminV1.Delete("/grants/:id", controllers.HandleAdminRevokeGrant)
}
