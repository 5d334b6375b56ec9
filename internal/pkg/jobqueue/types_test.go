package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Video Processing", JobTypeVideoProcessing, "video_processing"},
		{"Video Archive", JobTypeVideoArchive, "video_archive"},
		{"Video Delete", JobTypeVideoDelete, "video_delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with no retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Pending job",
			job: &Job{
				Status:     JobStatusPending,
				RetryCount: 0,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_MarkAsProcessing(t *testing.T) {
	job := &Job{
		Status: JobStatusPending,
	}

	beforeTime := time.Now()
	job.MarkAsProcessing()
	afterTime := time.Now()

	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)
	assert.True(t, job.ProcessedAt.After(beforeTime) || job.ProcessedAt.Equal(beforeTime))
	assert.True(t, job.ProcessedAt.Before(afterTime) || job.ProcessedAt.Equal(afterTime))
}

func TestJob_MarkAsCompleted(t *testing.T) {
	job := &Job{
		Status:   JobStatusProcessing,
		ErrorMsg: "some error",
	}

	job.MarkAsCompleted()

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestJob_MarkAsFailed(t *testing.T) {
	job := &Job{
		Status:     JobStatusProcessing,
		RetryCount: 1,
	}

	job.MarkAsFailed("processing failed")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "processing failed", job.ErrorMsg)
	assert.Equal(t, 2, job.RetryCount)
}

func TestVideoProcessingJobPayloadRoundTrip(t *testing.T) {
	original := VideoProcessingJobPayload{
		VideoID:   123,
		VideoUUID: "round-trip-test",
		SourceURL: "https://example.com/clip.mp4",
		FilePath:  "/uploads/clip.mp4",
		Archive:   true,
	}

	data := original.ToMap()
	result, err := VideoProcessingJobPayloadFromMap(data)
	require.NoError(t, err)

	assert.Equal(t, &original, result)
}

func TestVideoArchiveJobPayloadRoundTrip(t *testing.T) {
	original := VideoArchiveJobPayload{
		VideoID:   456,
		VideoUUID: "archive-roundtrip",
		FilePath:  "/uploads/archive.mp4",
	}

	data := original.ToMap()
	result, err := VideoArchiveJobPayloadFromMap(data)
	require.NoError(t, err)

	assert.Equal(t, &original, result)
}

func TestVideoDeleteJobPayloadRoundTrip(t *testing.T) {
	admin := uint(7)
	original := VideoDeleteJobPayload{
		VideoID:       789,
		VideoUUID:     "delete-roundtrip",
		FilePath:      "/uploads/old.mp4",
		ArchiveKey:    "videos/2025/08/delete-roundtrip.mp4",
		InitiatedByID: &admin,
	}

	data := original.ToMap()
	result, err := VideoDeleteJobPayloadFromMap(data)
	require.NoError(t, err)

	assert.Equal(t, &original, result)
}

func TestVideoProcessingJobPayloadFromMap_InvalidData(t *testing.T) {
	data := map[string]interface{}{
		"video_id": make(chan int), // channels can't be marshaled to JSON
	}

	payload, err := VideoProcessingJobPayloadFromMap(data)
	assert.Error(t, err)
	assert.Nil(t, payload)
}
