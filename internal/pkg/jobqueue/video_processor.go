package jobqueue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/app/repository"
	"github.com/clipgate/ClipGate/internal/pkg/s3archive"
)

// processVideoProcessingJob processes a freshly ingested video
func (q *Queue) processVideoProcessingJob(ctx context.Context, job *Job) error {
	payload, err := VideoProcessingJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse video processing job payload: %w", err)
	}

	log.Infof("[VideoProcessor] Processing video %s (ID: %d)", payload.VideoUUID, payload.VideoID)

	videoRepo := repository.GetGlobalFactory().GetVideoRepository()

	video, err := videoRepo.GetByID(payload.VideoID)
	if err != nil {
		return fmt.Errorf("failed to load video %d: %w", payload.VideoID, err)
	}

	if err := videoRepo.UpdateStatus(video.ID, models.VideoStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark video %d as processing: %w", video.ID, err)
	}

	// Probe the local file when present. Remote ingests keep the metadata
	// provided at upload time.
	sizeMB := video.FileSizeMB
	if payload.FilePath != "" {
		if info, statErr := os.Stat(payload.FilePath); statErr == nil {
			sizeMB = int(info.Size() / (1024 * 1024))
		}
	}
	if sizeMB != video.FileSizeMB {
		video.FileSizeMB = sizeMB
		if err := videoRepo.Update(video); err != nil {
			log.Errorf("[VideoProcessor] Failed to persist file size for video %d: %v", video.ID, err)
		}
	}

	summary := buildSummary(video)
	if err := videoRepo.MarkProcessed(video.ID, summary, video.DurationSec); err != nil {
		if markErr := videoRepo.MarkFailed(video.ID, err.Error()); markErr != nil {
			log.Errorf("[VideoProcessor] Failed to mark video %d as failed: %v", video.ID, markErr)
		}
		return fmt.Errorf("failed to finalize video %d: %w", video.ID, err)
	}

	log.Infof("[VideoProcessor] Video %s is ready", payload.VideoUUID)

	// Hand the original off to cold storage once processing succeeded
	if payload.Archive {
		if config, cfgErr := s3archive.LoadConfig(); cfgErr == nil && config.IsEnabled() {
			if _, aerr := q.EnqueueVideoArchiveJob(video.ID, video.UUID, payload.FilePath); aerr != nil {
				log.Errorf("[VideoProcessor] Failed to enqueue archive job for video %d: %v", video.ID, aerr)
			}
		}
	}

	return nil
}

// buildSummary produces the short description shown on share pages
func buildSummary(video *models.Video) string {
	name := video.Title
	if name == "" {
		name = filepath.Base(video.FilePath)
	}
	if video.DurationSec > 0 {
		return fmt.Sprintf("%s (%ds)", name, video.DurationSec)
	}
	return name
}

// EnqueueVideoProcessingJob creates and enqueues a video processing job
func (q *Queue) EnqueueVideoProcessingJob(videoID uint, videoUUID, sourceURL, filePath string, archive bool) (*Job, error) {
	payload := VideoProcessingJobPayload{
		VideoID:   videoID,
		VideoUUID: videoUUID,
		SourceURL: sourceURL,
		FilePath:  filePath,
		Archive:   archive,
	}

	return q.EnqueueJob(JobTypeVideoProcessing, payload.ToMap())
}
