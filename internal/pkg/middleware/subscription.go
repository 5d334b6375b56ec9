package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/clipgate/ClipGate/internal/pkg/constants"
	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

// Locals keys shared with downstream handlers.
const (
	UsageDecisionKey    = usercontext.KeyUsageDecision
	SubscriptionInfoKey = usercontext.KeySubscriptionInfo
)

const (
	signInURL  = constants.LoginRoute
	upgradeURL = constants.PricingRoute
	billingURL = constants.BillingRoute
)

// SubscriptionMiddleware turns entitlement decisions into HTTP responses.
// The service is injected so handlers stay testable without a database.
type SubscriptionMiddleware struct {
	svc *entitlements.Service
}

func NewSubscriptionMiddleware(svc *entitlements.Service) *SubscriptionMiddleware {
	return &SubscriptionMiddleware{svc: svc}
}

// RequireSubscription admits users whose effective tier ranks at or above
// minTier and whose subscription is in an active-like state.
func (m *SubscriptionMiddleware) RequireSubscription(minTier string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		dec, err := m.svc.CheckTier(c.Context(), ctx.UserID, ctx.Tier, minTier)
		if err != nil {
			log.Printf("subscription middleware: tier check failed for user %d: %v", ctx.UserID, err)
			return renderConfigError(c, "Subscription check failed")
		}
		if !dec.Allowed {
			return renderDenial(c, dec)
		}
		return c.Next()
	}
}

// CheckUsageLimit admits requests within quota and attaches the admit
// decision so a later TrackUsage can record it without re-deriving anything.
func (m *SubscriptionMiddleware) CheckUsageLimit(resource string, increment int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		dec, err := m.svc.CheckUsageLimit(c.Context(), ctx.UserID, ctx.Tier, resource, increment)
		if err != nil {
			log.Printf("subscription middleware: usage check failed for user %d: %v", ctx.UserID, err)
			return renderConfigError(c, "Usage check failed")
		}
		if !dec.Allowed {
			return renderDenial(c, dec)
		}
		c.Locals(UsageDecisionKey, dec)
		return c.Next()
	}
}

// RequireFeature admits users whose plan includes the named capability.
func (m *SubscriptionMiddleware) RequireFeature(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		dec, err := m.svc.CheckFeature(c.Context(), ctx.UserID, ctx.Tier, name)
		if err != nil {
			log.Printf("subscription middleware: feature check failed for user %d: %v", ctx.UserID, err)
			return renderConfigError(c, "Feature check failed")
		}
		if !dec.Allowed {
			return renderDenial(c, dec)
		}
		return c.Next()
	}
}

// TrackUsage records consumption after the handler chain succeeds. It never
// alters the response: recording faults are logged and swallowed because the
// user-visible action already happened.
func (m *SubscriptionMiddleware) TrackUsage(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Response().StatusCode() >= 400 {
			return err
		}

		dec, ok := c.Locals(UsageDecisionKey).(entitlements.Decision)
		if !ok {
			// No enforcement ran upstream; record a plain single increment.
			ctx := usercontext.GetUserContext(c)
			if ctx.UserID == 0 {
				return nil
			}
			dec = entitlements.Decision{Allowed: true, UserID: ctx.UserID, Resource: resource, Increment: 1}
		}
		if recErr := m.svc.RecordUsage(c.Context(), dec); recErr != nil {
			log.Printf("subscription middleware: usage recording failed for user %d resource %s: %v", dec.UserID, dec.Resource, recErr)
		}
		return nil
	}
}

// AddSubscriptionInfo attaches the subscription projection for downstream
// rendering. It degrades to "no info" on errors instead of failing the
// request.
func (m *SubscriptionMiddleware) AddSubscriptionInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		if ctx.UserID != 0 {
			info, err := m.svc.GetSubscriptionInfo(c.Context(), ctx.UserID, ctx.Tier)
			if err != nil {
				log.Printf("subscription middleware: info lookup failed for user %d: %v", ctx.UserID, err)
			} else {
				c.Locals(SubscriptionInfoKey, info)
			}
		}
		return c.Next()
	}
}

// wantsJSON decides the client split. API routes and JSON-accepting clients
// get structured errors; browsers get a redirect with a flash message.
func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMEApplicationJSON) && !strings.Contains(accept, fiber.MIMETextHTML)
}

// renderDenial maps a deny decision to the wire. The redirect target for
// browser clients depends only on the status code.
func renderDenial(c *fiber.Ctx, dec entitlements.Decision) error {
	switch dec.Reason {
	case entitlements.DenyAuthenticationRequired:
		if wantsJSON(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": dec.Message,
				"error":   "SUBSCRIPTION_ERROR",
			})
		}
		return redirectWithFlash(c, signInURL, "Please sign in to continue")

	case entitlements.DenyTierInsufficient:
		if wantsJSON(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message":       dec.Message,
				"current_tier":  dec.CurrentTier,
				"required_tier": dec.RequiredTier,
				"upgrade_url":   upgradeURL,
			})
		}
		return redirectWithFlash(c, upgradeURL, dec.Message)

	case entitlements.DenySubscriptionInactive:
		if wantsJSON(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message":        dec.Message,
				"current_status": dec.CurrentStatus,
				"billing_url":    billingURL,
			})
		}
		return redirectWithFlash(c, upgradeURL, dec.Message)

	case entitlements.DenyFeatureLocked:
		if wantsJSON(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message":      dec.Message,
				"current_tier": dec.CurrentTier,
				"feature":      dec.Feature,
				"upgrade_url":  upgradeURL,
			})
		}
		return redirectWithFlash(c, upgradeURL, dec.Message)

	case entitlements.DenyQuotaExceeded:
		if wantsJSON(c) {
			body := fiber.Map{
				"message":       dec.Message,
				"current_usage": dec.CurrentUsage,
				"limit":         dec.Limit,
				"resource_type": dec.Resource,
				"upgrade_url":   upgradeURL,
			}
			if dec.FreeCreditUsed {
				body["free_credit_used"] = true
			}
			if dec.HasAdminGrant {
				body["has_admin_grant"] = true
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(body)
		}
		return redirectWithFlash(c, upgradeURL, dec.Message)

	default:
		return renderConfigError(c, dec.Message)
	}
}

func renderConfigError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Subscription configuration error"
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
		})
	}
	fm := fiber.Map{"type": "error", "message": message}
	return flash.WithError(c, fm).Redirect(upgradeURL, fiber.StatusSeeOther)
}

func redirectWithFlash(c *fiber.Ctx, target string, message string) error {
	fm := fiber.Map{"type": "error", "message": message}
	return flash.WithError(c, fm).Redirect(target, fiber.StatusSeeOther)
}
