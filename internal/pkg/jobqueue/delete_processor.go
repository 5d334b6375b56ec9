package jobqueue

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/s3archive"
)

// processVideoDeleteJob removes a video and its stored artifacts
func (q *Queue) processVideoDeleteJob(ctx context.Context, job *Job) error {
	payload, err := VideoDeleteJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse video delete job payload: %w", err)
	}

	log.Infof("[VideoDelete] Processing delete job for video %s (ID: %d)", payload.VideoUUID, payload.VideoID)

	// Remove the local original first
	if payload.FilePath != "" {
		if err := os.Remove(payload.FilePath); err != nil && !os.IsNotExist(err) {
			log.Errorf("[VideoDelete] Failed to remove local file %s: %v", payload.FilePath, err)
		}
	}

	// Remove the cold storage copy when one exists
	if payload.ArchiveKey != "" {
		config, cfgErr := s3archive.LoadConfig()
		if cfgErr != nil {
			return fmt.Errorf("failed to load archive config: %w", cfgErr)
		}
		if config.IsEnabled() {
			s3Client, clientErr := s3archive.NewClient(config)
			if clientErr != nil {
				return fmt.Errorf("failed to create archive client: %w", clientErr)
			}
			if delErr := s3Client.DeleteFile(payload.ArchiveKey); delErr != nil {
				return fmt.Errorf("failed to delete archive object %s: %w", payload.ArchiveKey, delErr)
			}
			log.Infof("[VideoDelete] Removed archive object %s", payload.ArchiveKey)
		}
	}

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()
	if err := videoRepo.Delete(payload.VideoID); err != nil {
		return fmt.Errorf("failed to delete video record %d: %w", payload.VideoID, err)
	}

	log.Infof("[VideoDelete] Video %s deleted", payload.VideoUUID)
	return nil
}

// EnqueueVideoDeleteJob creates and enqueues an asynchronous video delete job
func (q *Queue) EnqueueVideoDeleteJob(videoID uint, videoUUID, filePath, archiveKey string, initiatedByID *uint) (*Job, error) {
	payload := VideoDeleteJobPayload{
		VideoID:       videoID,
		VideoUUID:     videoUUID,
		FilePath:      filePath,
		ArchiveKey:    archiveKey,
		InitiatedByID: initiatedByID,
	}

	return q.EnqueueJob(JobTypeVideoDelete, payload.ToMap())
}
