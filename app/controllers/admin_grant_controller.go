package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/entitlements"
	"github.com/clipgate/ClipGate/internal/pkg/identity"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

var grantValidate = validator.New()

// CreateGrantRequest is the admin JSON body for issuing a grant. The user
// field accepts an email, a numeric id, or a legacy external id.
type CreateGrantRequest struct {
	User               string `json:"user" validate:"required"`
	GrantType          string `json:"grant_type" validate:"required,oneof=unlimited_videos video_limit_override full_access trial_extension"`
	TierOverride       string `json:"tier_override" validate:"omitempty,oneof=free basic premium enterprise creator"`
	VideoLimitOverride *int   `json:"video_limit_override" validate:"omitempty,gte=0"`
	ExpiresAt          string `json:"expires_at" validate:"omitempty"`
	Reason             string `json:"reason" validate:"max=255"`
}

// HandleAdminCreateGrant issues a new grant for a user. Any previously
// active grants for that user are deactivated.
func HandleAdminCreateGrant(c *fiber.Ctx) error {
	admin := usercontext.GetUserContext(c)

	var req CreateGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := grantValidate.Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	resolver := identity.NewResolver(repository.GetGlobalFactory().GetUserRepository())
	target, err := resolver.ResolveRaw(req.User)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, identity.ErrEmptyIdentifier) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		log.Errorf("[Admin] Grant target lookup failed for %q: %v", req.User, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to resolve user"})
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, perr := time.Parse(time.RFC3339, req.ExpiresAt)
		if perr != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "expires_at must be RFC3339"})
		}
		expiresAt = &t
	}

	grant, err := entitlementService().CreateGrant(c.Context(), entitlements.CreateGrantInput{
		UserID:             target.ID,
		GrantType:          req.GrantType,
		TierOverride:       req.TierOverride,
		VideoLimitOverride: req.VideoLimitOverride,
		ExpiresAt:          expiresAt,
		GrantedByID:        admin.UserID,
		Reason:             req.Reason,
	})
	if err != nil {
		if errors.Is(err, entitlements.ErrInvalidGrantInput) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		}
		log.Errorf("[Admin] Failed to create grant for user %d: %v", target.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create grant"})
	}

	// A full_access grant changes the user's effective tier immediately
	usercontext.InvalidateTier(target.ID)

	return c.Status(fiber.StatusCreated).JSON(grant)
}

// HandleAdminRevokeGrant deactivates a grant by id.
func HandleAdminRevokeGrant(c *fiber.Ctx) error {
	admin := usercontext.GetUserContext(c)

	grantID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || grantID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid grant id"})
	}

	grant, err := entitlementService().RevokeGrant(c.Context(), uint(grantID), admin.UserID)
	if err != nil {
		if errors.Is(err, entitlements.ErrGrantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Grant not found"})
		}
		log.Errorf("[Admin] Failed to revoke grant %d: %v", grantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to revoke grant"})
	}

	usercontext.InvalidateTier(grant.UserID)

	return c.JSON(fiber.Map{"message": "Grant revoked"})
}

// HandleAdminListGrants lists a user's grants, newest first. The user query
// parameter accepts the same flexible identifier as grant creation.
func HandleAdminListGrants(c *fiber.Ctx) error {
	rawUser := c.Query("user")
	if rawUser == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user query parameter missing"})
	}

	resolver := identity.NewResolver(repository.GetGlobalFactory().GetUserRepository())
	target, err := resolver.ResolveRaw(rawUser)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, identity.ErrEmptyIdentifier) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to resolve user"})
	}

	grants, err := repository.GetGlobalFactory().GetGrantRepository().GetByUserID(target.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load grants"})
	}

	return c.JSON(fiber.Map{
		"user_id": target.ID,
		"grants":  grants,
	})
}
