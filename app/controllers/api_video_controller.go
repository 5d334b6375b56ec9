package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/constants"
	"github.com/clipgate/ClipGate/internal/pkg/env"
	"github.com/clipgate/ClipGate/internal/pkg/jobqueue"
	metrics "github.com/clipgate/ClipGate/internal/pkg/metrics/counter"
	"github.com/clipgate/ClipGate/internal/pkg/s3archive"
	"github.com/clipgate/ClipGate/internal/pkg/security"
	"github.com/clipgate/ClipGate/internal/pkg/shortener"
	"github.com/clipgate/ClipGate/internal/pkg/upload"
	"github.com/clipgate/ClipGate/internal/pkg/usercontext"
)

var videoValidate = validator.New()

// CreateVideoRequest is the JSON body for video ingestion.
type CreateVideoRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
	SourceURL   string `json:"source_url" validate:"omitempty,url,max=512"`
	FilePath    string `json:"file_path" validate:"max=255"`
	FileSizeMB  int    `json:"file_size_mb" validate:"gte=0"`
	DurationSec int    `json:"duration_sec" validate:"gte=0"`
	IsPublic    bool   `json:"is_public"`
}

// HandleCreateVideoAPI ingests a new video for the authenticated user.
// Quota enforcement and usage tracking run in the router middleware chain.
func HandleCreateVideoAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := videoValidate.Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if req.SourceURL == "" && req.FilePath == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Either source_url or file_path is required"})
	}
	if req.SourceURL != "" {
		if err := upload.ValidateSourceURL(req.SourceURL); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		}
	}
	if req.FilePath != "" {
		if err := upload.ValidateVideoFile(req.FilePath); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		}
	}

	video := &models.Video{
		UserID:      user.UserID,
		Title:       req.Title,
		Description: req.Description,
		SourceURL:   req.SourceURL,
		FilePath:    req.FilePath,
		FileSizeMB:  req.FileSizeMB,
		DurationSec: req.DurationSec,
		Status:      models.VideoStatusPending,
		IsPublic:    req.IsPublic,
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	if err := videoRepo.Create(video); err != nil {
		log.Errorf("[API] Failed to create video for user %d: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create video"})
	}

	archive := false
	if config, err := s3archive.LoadConfig(); err == nil {
		archive = config.IsEnabled()
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueVideoProcessingJob(video.ID, video.UUID, video.SourceURL, video.FilePath, archive); err != nil {
		log.Errorf("[API] Failed to enqueue processing for video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to schedule processing"})
	}

	return c.Status(fiber.StatusCreated).JSON(video)
}

// HandleGetVideoAPI returns a single video. Owners see their own videos,
// everyone else only public ones. Existence is not leaked.
func HandleGetVideoAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByUUID(uuid)
	if err != nil || video == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}
	if video.UserID != user.UserID && !video.IsPublic {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}

	return c.JSON(video)
}

// HandleListVideosAPI returns the authenticated user's videos, newest first.
func HandleListVideosAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	videos, err := videoRepo.GetByUserID(user.UserID, (page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load videos"})
	}

	total, err := videoRepo.CountByUserID(user.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count videos"})
	}

	return c.JSON(fiber.Map{
		"videos":   videos,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// HandleDeleteVideoAPI deletes a video. Owners and admins only. Storage
// cleanup happens asynchronously, the response confirms acceptance.
func HandleDeleteVideoAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByUUID(uuid)
	if err != nil || video == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}
	if video.UserID != user.UserID && !user.IsAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}

	initiatedBy := user.UserID
	if _, err := jobqueue.GetManager().GetQueue().EnqueueVideoDeleteJob(video.ID, video.UUID, video.FilePath, video.ArchiveKey, &initiatedBy); err != nil {
		log.Errorf("[API] Failed to enqueue delete for video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to schedule deletion"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Deletion scheduled", "uuid": video.UUID})
}

// HandleGetVideoAnalyticsAPI returns view metrics for one of the user's
// videos. The route is feature gated upstream.
func HandleGetVideoAnalyticsAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByUUID(uuid)
	if err != nil || video == nil || video.UserID != user.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}

	return c.JSON(fiber.Map{
		"uuid":         video.UUID,
		"title":        video.Title,
		"view_count":   video.ViewCount,
		"is_public":    video.IsPublic,
		"status":       video.Status,
		"published_at": formatTimePtr(video.ProcessedAt),
	})
}

// HandleCreateShareTokenAPI issues a signed, time-limited link that lets
// anyone view a private video. Owners only.
func HandleCreateShareTokenAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByUUID(uuid)
	if err != nil || video == nil || video.UserID != user.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}

	secret := env.GetEnv("SHARE_TOKEN_SECRET", "")
	if secret == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Sharing is not configured"})
	}

	ttlHours, _ := strconv.Atoi(c.Query("ttl_hours", "24"))
	if ttlHours < 1 || ttlHours > 24*30 {
		ttlHours = 24
	}

	token, err := security.GenerateShareToken(video.ID, video.UUID, time.Duration(ttlHours)*time.Hour, secret)
	if err != nil {
		log.Errorf("[API] Failed to generate share token for video %d: %v", video.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to generate share token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":     token,
		"share_url": fmt.Sprintf("%s/%s?token=%s", constants.ShareRoute, video.UUID, token),
		"short_url": fmt.Sprintf("%s/%s?token=%s", constants.ShortRoute, shortener.EncodeID(video.ID), token),
		"expires_in_hours": ttlHours,
	})
}

// HandleGetPublicVideoAPI serves the public share link. View counting is
// best effort and must never fail the request.
func HandleGetPublicVideoAPI(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByUUID(uuid)
	if err != nil || video == nil || !video.IsPublic || !video.IsReady() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "video not found"})
	}

	if err := metrics.AddVideoView(video.ID); err != nil {
		log.Errorf("[API] Failed to count view for video %d: %v", video.ID, err)
	}

	return c.JSON(fiber.Map{
		"uuid":        video.UUID,
		"title":       video.Title,
		"description": video.Description,
		"summary":     video.Summary,
		"duration":    video.DurationSec,
		"views":       video.ViewCount,
		"created_at":  video.CreatedAt,
	})
}
