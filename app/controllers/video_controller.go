package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/constants"
	"github.com/clipgate/ClipGate/internal/pkg/env"
	metrics "github.com/clipgate/ClipGate/internal/pkg/metrics/counter"
	"github.com/clipgate/ClipGate/internal/pkg/security"
	"github.com/clipgate/ClipGate/internal/pkg/shortener"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

// HandleVideosPage renders the logged-in video workspace.
func HandleVideosPage(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	videos, err := repository.GetGlobalFactory().GetVideoRepository().GetByUserID(user.UserID, 0, 50)
	if err != nil {
		log.Errorf("[Web] Failed to load videos for user %d: %v", user.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Failed to load your videos"}
		return flash.WithError(c, fm).Redirect("/", fiber.StatusSeeOther)
	}

	return c.Render("videos", fiber.Map{
		"Title":         "Your videos",
		"FromProtected": isLoggedIn(c),
		"Username":      ExtractUsername(c),
		"Flash":         flash.Get(c),
		"Videos":        videos,
		"Subscription":  subscriptionInfo(c),
	})
}

// HandleSharedVideoPage renders the public share page for a video. Private
// videos are viewable with a valid share token or by their owner. Views are
// counted best effort through the buffered counter.
func HandleSharedVideoPage(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}

	video, err := repository.GetGlobalFactory().GetVideoRepository().GetByUUID(uuid)
	if err != nil || video == nil || !video.IsReady() {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}
	if !video.IsPublic && !canViewPrivateVideo(c, video) {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}

	if err := metrics.AddVideoView(video.ID); err != nil {
		log.Errorf("[Web] Failed to count view for video %d: %v", video.ID, err)
	}

	return c.Render("video_share", fiber.Map{
		"Title":         video.Title,
		"FromProtected": isLoggedIn(c),
		"Video":         video,
	})
}

// canViewPrivateVideo allows the owner and holders of a valid share token.
func canViewPrivateVideo(c *fiber.Ctx, video *models.Video) bool {
	user := usercontext.GetUserContext(c)
	if user.IsLoggedIn && user.UserID == video.UserID {
		return true
	}

	token := c.Query("token")
	if token == "" {
		return false
	}
	secret := env.GetEnv("SHARE_TOKEN_SECRET", "")
	claims, err := security.VerifyShareToken(token, secret)
	if err != nil {
		return false
	}
	return claims.VideoID == video.ID && claims.VideoUUID == video.UUID
}

// HandleShortShareRedirect resolves a base62 short code to the share page.
// The query string is preserved so share tokens survive the redirect.
func HandleShortShareRedirect(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}

	id := shortener.DecodeID(code)
	if id == 0 {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}

	video, err := repository.GetGlobalFactory().GetVideoRepository().GetByID(id)
	if err != nil || video == nil {
		return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{"Title": "Not found"})
	}

	target := fmt.Sprintf("%s/%s", constants.ShareRoute, video.UUID)
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}
	return c.Redirect(target, fiber.StatusFound)
}
