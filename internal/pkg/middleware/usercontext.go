package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clipgate/ClipGate/app/controllers"
	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/database"
	"github.com/clipgate/ClipGate/internal/pkg/session"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false, Tier: "free"})
		c.Locals(controllers.FROM_PROTECTED, false)
		c.Locals(controllers.USER_IS_ADMIN, false)
		return c.Next()
	}

	userID := sess.Get(controllers.USER_ID)
	if userID == nil {
		// Anonymous user - no session data
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false, Tier: "free"})
		c.Locals(controllers.FROM_PROTECTED, false)
		c.Locals(controllers.USER_IS_ADMIN, false)
		return c.Next()
	}

	username := session.GetSessionValue(c, controllers.USER_NAME)
	isAdmin := sess.Get(controllers.USER_IS_ADMIN)

	// Tier comes from a short-lived Redis cache, not the session. Grant and
	// billing writes invalidate the cache entry, so tier changes take effect
	// on the next request instead of waiting for the session to expire.
	tier, ok := usercontext.CachedTier(userID.(uint))
	if !ok {
		tier = "free"
		if db := database.GetDB(); db != nil {
			var user models.User
			if err := db.Select("tier").First(&user, userID.(uint)).Error; err == nil && user.Tier != "" {
				tier = user.Tier
			}
		}
		usercontext.CacheTier(userID.(uint), tier)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Tier:       tier,
	}
	usercontext.SetUserContext(c, userCtx)

	c.Locals(controllers.FROM_PROTECTED, true)
	c.Locals(controllers.USER_NAME, username)
	c.Locals(controllers.USER_ID, userID.(uint))
	c.Locals(controllers.USER_IS_ADMIN, userCtx.IsAdmin)

	return c.Next()
}
