package repository

import (
	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// grantRepository implements the GrantRepository interface
type grantRepository struct {
	db *gorm.DB
}

// NewGrantRepository creates a new grant repository instance
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

// GetByUserID retrieves all grants ever issued for a user, newest first
func (r *grantRepository) GetByUserID(userID uint) ([]models.Grant, error) {
	var grants []models.Grant
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&grants).Error
	return grants, err
}

// ListActive retrieves currently active grants with pagination
func (r *grantRepository) ListActive(offset, limit int) ([]models.Grant, error) {
	var grants []models.Grant
	err := r.db.Where("is_active = ?", true).
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&grants).Error
	return grants, err
}

// Count returns the total number of grants
func (r *grantRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Grant{}).Count(&count).Error
	return count, err
}
