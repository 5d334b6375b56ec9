package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/env"
	"github.com/clipgate/ClipGate/internal/pkg/plans"
	"github.com/clipgate/ClipGate/internal/pkg/statistics"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

func RenderHome(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{
		"Title":         "",
		"FromProtected": isLoggedIn(c),
		"Username":      ExtractUsername(c),
		"Flash":         flash.Get(c),
		"IsDev":         env.IsDev(),
		"Subscription":  subscriptionInfo(c),
		"Stats":         statistics.GetStatisticsData(),
	})
}

// RenderPricing shows the plan comparison page. It is the redirect target
// for denied browser requests, so the flash message matters here.
func RenderPricing(c *fiber.Ctx) error {
	type planRow struct {
		Tier       string
		Definition plans.Definition
	}

	rows := make([]planRow, 0, len(plans.AllTiers()))
	for _, tier := range plans.AllTiers() {
		if def, ok := plans.Lookup(string(tier)); ok {
			rows = append(rows, planRow{Tier: string(tier), Definition: def})
		}
	}

	return c.Render("pricing", fiber.Map{
		"Title":         "Pricing",
		"FromProtected": isLoggedIn(c),
		"Username":      ExtractUsername(c),
		"Flash":         flash.Get(c),
		"Plans":         rows,
		"Subscription":  subscriptionInfo(c),
	})
}

func RenderBilling(c *fiber.Ctx) error {
	return c.Render("account/billing", fiber.Map{
		"Title":         "Billing",
		"FromProtected": isLoggedIn(c),
		"Username":      ExtractUsername(c),
		"Flash":         flash.Get(c),
		"Subscription":  subscriptionInfo(c),
	})
}

// subscriptionInfo reads the projection attached by the subscription
// middleware, if the route carries it.
func subscriptionInfo(c *fiber.Ctx) *entitlements.SubscriptionInfo {
	if info, ok := c.Locals(usercontext.KeySubscriptionInfo).(*entitlements.SubscriptionInfo); ok {
		return info
	}
	return nil
}
