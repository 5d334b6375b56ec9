package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/jobqueue"
)

// HandleAdminQueueStats reports job queue depth and processing counters.
func HandleAdminQueueStats(c *fiber.Ctx) error {
	queue := jobqueue.GetManager().GetQueue()

	stats, err := queue.GetJobStats(c.Context())
	if err != nil {
		log.Errorf("[Admin] Failed to load job stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load job stats"})
	}

	pending, err := queue.GetQueueSize(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load queue size"})
	}

	processing, err := queue.GetProcessingSize(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load processing size"})
	}

	return c.JSON(fiber.Map{
		"pending":    pending,
		"processing": processing,
		"stats":      stats,
		"running":    jobqueue.GetManager().IsRunning(),
	})
}

// HandleAdminQueueKeys lists job-related Redis keys for inspection.
func HandleAdminQueueKeys(c *fiber.Ctx) error {
	queueRepo := repository.GetGlobalFactory().GetQueueRepository()

	keys, err := queueRepo.FindKeysByPatterns([]string{jobqueue.JobKeyPrefix + "*"})
	if err != nil {
		log.Errorf("[Admin] Failed to scan job keys: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to scan job keys"})
	}

	return c.JSON(fiber.Map{"keys": keys, "count": len(keys)})
}

// HandleAdminQueueCleanup deletes stale job keys by pattern.
func HandleAdminQueueCleanup(c *fiber.Ctx) error {
	queueRepo := repository.GetGlobalFactory().GetQueueRepository()

	keys, err := queueRepo.FindKeysByPatterns([]string{jobqueue.JobKeyPrefix + "*"})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to scan job keys"})
	}

	deleted, err := queueRepo.DeleteKeys(keys)
	if err != nil {
		log.Errorf("[Admin] Failed to delete job keys: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete job keys"})
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}
