package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clipgate/ClipGate/app/controllers"
	"github.com/clipgate/ClipGate/internal/pkg/database"
	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/middleware"
	"github.com/clipgate/ClipGate/internal/pkg/oauth"
	"github.com/clipgate/ClipGate/internal/pkg/session"
)

type HttpRouter struct {
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// subscriptionMW builds the entitlement middleware bound to the live DB.
func subscriptionMW() *middleware.SubscriptionMiddleware {
	return middleware.NewSubscriptionMiddleware(entitlements.NewServiceFromDB(database.GetDB()))
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	sub := subscriptionMW()

	h.registerPublicRoutes(app, sub)
	h.registerProtectedRoutes(app, sub)
	h.registerAdminRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App, sub *middleware.SubscriptionMiddleware) {
	app.Get("/", sub.AddSubscriptionInfo(), controllers.RenderHome)
	app.Get("/pricing", sub.AddSubscriptionInfo(), controllers.RenderPricing)

	// Auth
	app.Get("/login", controllers.HandleAuthLogin)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Get("/register", controllers.HandleAuthRegister)
	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Public share pages, plus base62 short links
	app.Get("/v/:uuid", controllers.HandleSharedVideoPage)
	app.Get("/s/:code", controllers.HandleShortShareRedirect)

	// Billing provider webhooks (no session, signature-verified in controller)
	app.Post("/webhooks/billing", controllers.HandleBillingWebhook)
}

func (h HttpRouter) registerProtectedRoutes(app *fiber.App, sub *middleware.SubscriptionMiddleware) {
	// The paid video workspace. Free users get redirected to /pricing by the
	// subscription check.
	app.Get("/videos",
		middleware.RequireAuth,
		sub.RequireSubscription("basic"),
		sub.AddSubscriptionInfo(),
		controllers.HandleVideosPage,
	)

	app.Get("/account/billing",
		middleware.RequireAuth,
		sub.AddSubscriptionInfo(),
		controllers.RenderBilling,
	)
}

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin", middleware.RequireAdmin)

	admin.Get("/queues", controllers.HandleAdminQueueStats)
	admin.Get("/queues/keys", controllers.HandleAdminQueueKeys)
	admin.Delete("/queues/keys", controllers.HandleAdminQueueCleanup)
}
