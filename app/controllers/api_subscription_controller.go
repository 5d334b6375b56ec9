package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/internal/pkg/database"
	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

func entitlementService() *entitlements.Service {
	return entitlements.NewServiceFromDB(database.GetDB())
}

// HandleGetSubscriptionAPI returns the merged subscription projection for
// the authenticated user.
func HandleGetSubscriptionAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	info, err := entitlementService().GetSubscriptionInfo(c.Context(), user.UserID, user.Tier)
	if err != nil {
		log.Errorf("[API] Failed to load subscription info for user %d: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	return c.JSON(info)
}

// HandleGetUsageAPI returns the current billing period's counters.
func HandleGetUsageAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	usage, err := entitlementService().GetCurrentUsage(c.Context(), user.UserID)
	if err != nil {
		log.Errorf("[API] Failed to load usage for user %d: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load usage"})
	}

	return c.JSON(usage)
}

// HandleCanProcessVideoAPI is the advisory pre-check clients call before
// starting an upload. It never blocks, the authoritative check runs on the
// ingest route itself.
func HandleCanProcessVideoAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	allowed := entitlementService().CanProcessVideo(c.Context(), user.UserID, user.Tier)

	return c.JSON(fiber.Map{"can_process": allowed})
}
