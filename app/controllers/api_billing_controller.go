package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/internal/pkg/billing"
	"github.com/clipgate/ClipGate/internal/pkg/database"
	"github.com/clipgate/ClipGate/internal/pkg/env"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

// BillingWebhookPayload is the normalized event body billing providers post.
type BillingWebhookPayload struct {
	UserID                 uint   `json:"user_id"`
	Provider               string `json:"provider"`
	ProviderSubscriptionID string `json:"provider_subscription_id"`
	Tier                   string `json:"tier"`
	Status                 string `json:"status"`
	CurrentPeriodStart     string `json:"current_period_start"`
	CurrentPeriodEnd       string `json:"current_period_end"`
	CancelAtPeriodEnd      bool   `json:"cancel_at_period_end"`
}

// HandleBillingWebhook ingests subscription lifecycle events from the
// billing provider. The signature check runs against the raw body before
// anything is parsed.
func HandleBillingWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")
	signature := c.Get("X-Webhook-Signature")
	if !billing.VerifyWebhookSignature(c.Body(), signature, secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid webhook signature"})
	}

	var payload BillingWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid webhook body"})
	}

	sub, tier, err := billing.NewServiceFromDB(database.GetDB()).SyncSubscription(c.Context(), billing.NormalizedSubscription{
		UserID:                 payload.UserID,
		Provider:               payload.Provider,
		ProviderSubscriptionID: payload.ProviderSubscriptionID,
		Tier:                   payload.Tier,
		Status:                 payload.Status,
		CurrentPeriodStart:     parseWebhookTime(payload.CurrentPeriodStart),
		CurrentPeriodEnd:       parseWebhookTime(payload.CurrentPeriodEnd),
		CancelAtPeriodEnd:      payload.CancelAtPeriodEnd,
	})
	if err != nil {
		log.Errorf("[Billing] Webhook sync failed for user %d: %v", payload.UserID, err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	// Tier may have changed with the subscription state
	usercontext.InvalidateTier(payload.UserID)

	return c.JSON(fiber.Map{
		"subscription_id": sub.ID,
		"status":          sub.Status,
		"effective_tier":  tier,
	})
}

func parseWebhookTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
