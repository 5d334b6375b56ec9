package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// videoRepository implements the VideoRepository interface
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository instance
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create creates a new video in the database
func (r *videoRepository) Create(video *models.Video) error {
	return r.db.Create(video).Error
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.First(&video, id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByUUID retrieves a video by its UUID share identifier
func (r *videoRepository) GetByUUID(uuid string) (*models.Video, error) {
	var video models.Video
	err := r.db.Where("uuid = ?", uuid).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByUserID retrieves videos belonging to a specific user with pagination
func (r *videoRepository) GetByUserID(userID uint, offset, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("user_id = ?", userID).
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&videos).Error
	return videos, err
}

// Update updates an existing video
func (r *videoRepository) Update(video *models.Video) error {
	return r.db.Save(video).Error
}

// UpdateStatus moves a video to a new processing status
func (r *videoRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Video{}).Where("id = ?", id).
		Update("status", status).Error
}

// MarkProcessed stores the processing result and flips the video to ready
func (r *videoRepository) MarkProcessed(id uint, summary string, durationSec int) error {
	now := time.Now()
	return r.db.Model(&models.Video{}).Where("id = ?", id).Updates(map[string]any{
		"status":         models.VideoStatusReady,
		"summary":        summary,
		"duration_sec":   durationSec,
		"processed_at":   &now,
		"processing_err": "",
	}).Error
}

// MarkFailed records a processing failure
func (r *videoRepository) MarkFailed(id uint, reason string) error {
	return r.db.Model(&models.Video{}).Where("id = ?", id).Updates(map[string]any{
		"status":         models.VideoStatusFailed,
		"processing_err": reason,
	}).Error
}

// MarkArchived records the cold storage location of the original file
func (r *videoRepository) MarkArchived(id uint, archiveKey string, at time.Time) error {
	return r.db.Model(&models.Video{}).Where("id = ?", id).Updates(map[string]any{
		"archive_key": archiveKey,
		"archived_at": &at,
	}).Error
}

// Delete soft-deletes a video by its ID
func (r *videoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Video{}, id).Error
}

// Count returns the total number of videos
func (r *videoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Video{}).Count(&count).Error
	return count, err
}

// CountByUserID returns the number of videos owned by a user
func (r *videoRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Video{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetPublicVideos retrieves publicly listed ready videos with pagination
func (r *videoRepository) GetPublicVideos(offset, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("is_public = ? AND status = ?", true, models.VideoStatusReady).
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&videos).Error
	return videos, err
}
