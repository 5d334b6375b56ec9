package jobqueue

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/s3archive"
)

// processVideoArchiveJob uploads a video original to cold storage
func (q *Queue) processVideoArchiveJob(ctx context.Context, job *Job) error {
	payload, err := VideoArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse video archive job payload: %w", err)
	}

	log.Infof("[VideoArchive] Processing archive job for video %s (ID: %d)", payload.VideoUUID, payload.VideoID)

	config, err := s3archive.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load archive config: %w", err)
	}

	if !config.IsEnabled() {
		return fmt.Errorf("cold archiving is disabled")
	}

	s3Client, err := s3archive.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	video, err := videoRepo.GetByID(payload.VideoID)
	if err != nil {
		return fmt.Errorf("failed to load video %d: %w", payload.VideoID, err)
	}

	fileExt := filepath.Ext(payload.FilePath)
	now := time.Now()
	objectKey := config.GetObjectKey(payload.VideoUUID, fileExt, now.Year(), int(now.Month()))

	log.Infof("[VideoArchive] Uploading %s to s3 as %s", payload.FilePath, objectKey)
	result, err := s3Client.UploadFile(payload.FilePath, objectKey)
	if err != nil {
		return fmt.Errorf("failed to upload to cold storage: %w", err)
	}

	if err := videoRepo.MarkArchived(video.ID, result.ObjectKey, now); err != nil {
		return fmt.Errorf("failed to mark video %d as archived: %w", video.ID, err)
	}

	log.Infof("[VideoArchive] Successfully archived video %s to s3://%s/%s",
		payload.VideoUUID, result.BucketName, result.ObjectKey)

	return nil
}

// EnqueueVideoArchiveJob creates and enqueues a cold archive job
func (q *Queue) EnqueueVideoArchiveJob(videoID uint, videoUUID, filePath string) (*Job, error) {
	payload := VideoArchiveJobPayload{
		VideoID:   videoID,
		VideoUUID: videoUUID,
		FilePath:  filePath,
	}

	return q.EnqueueJob(JobTypeVideoArchive, payload.ToMap())
}
