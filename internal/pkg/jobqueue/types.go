package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeVideoProcessing JobType = "video_processing"
	JobTypeVideoArchive    JobType = "video_archive"
	JobTypeVideoDelete     JobType = "video_delete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// VideoProcessingJobPayload contains the payload for video ingest jobs
type VideoProcessingJobPayload struct {
	VideoID   uint   `json:"video_id"`
	VideoUUID string `json:"video_uuid"`
	SourceURL string `json:"source_url"`
	FilePath  string `json:"file_path"`
	Archive   bool   `json:"archive"` // Whether to trigger cold archival after processing
}

// ToMap converts the payload to a map for storage
func (p VideoProcessingJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"video_id":   p.VideoID,
		"video_uuid": p.VideoUUID,
		"source_url": p.SourceURL,
		"file_path":  p.FilePath,
		"archive":    p.Archive,
	}
}

// VideoProcessingJobPayloadFromMap creates a payload from a map
func VideoProcessingJobPayloadFromMap(data map[string]interface{}) (*VideoProcessingJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload VideoProcessingJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// VideoArchiveJobPayload contains the payload for cold archive jobs
type VideoArchiveJobPayload struct {
	VideoID   uint   `json:"video_id"`
	VideoUUID string `json:"video_uuid"`
	FilePath  string `json:"file_path"`
}

// ToMap converts the payload to a map for storage
func (p VideoArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"video_id":   p.VideoID,
		"video_uuid": p.VideoUUID,
		"file_path":  p.FilePath,
	}
}

// VideoArchiveJobPayloadFromMap creates a payload from a map
func VideoArchiveJobPayloadFromMap(data map[string]interface{}) (*VideoArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload VideoArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// VideoDeleteJobPayload contains the payload for asynchronous video deletion
type VideoDeleteJobPayload struct {
	VideoID       uint   `json:"video_id"`
	VideoUUID     string `json:"video_uuid"`
	FilePath      string `json:"file_path"`
	ArchiveKey    string `json:"archive_key"`
	InitiatedByID *uint  `json:"initiated_by_id,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p VideoDeleteJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"video_id":    p.VideoID,
		"video_uuid":  p.VideoUUID,
		"file_path":   p.FilePath,
		"archive_key": p.ArchiveKey,
	}
	if p.InitiatedByID != nil {
		m["initiated_by_id"] = *p.InitiatedByID
	}
	return m
}

// VideoDeleteJobPayloadFromMap creates a payload from a map
func VideoDeleteJobPayloadFromMap(data map[string]interface{}) (*VideoDeleteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload VideoDeleteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
