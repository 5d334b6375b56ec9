package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByLegacyExternalID(externalID string) (*models.User, error)
	GetByOAuthSubject(provider, subject string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// VideoRepository defines the interface for video-related database operations
type VideoRepository interface {
	Create(video *models.Video) error
	GetByID(id uint) (*models.Video, error)
	GetByUUID(uuid string) (*models.Video, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Video, error)
	Update(video *models.Video) error
	UpdateStatus(id uint, status string) error
	MarkProcessed(id uint, summary string, durationSec int) error
	MarkFailed(id uint, reason string) error
	MarkArchived(id uint, archiveKey string, at time.Time) error
	Delete(id uint) error
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	GetPublicVideos(offset, limit int) ([]models.Video, error)
}

// GrantRepository lists grants for the admin surface; grant mutation goes
// through the entitlement service.
type GrantRepository interface {
	GetByUserID(userID uint) ([]models.Grant, error)
	ListActive(offset, limit int) ([]models.Grant, error)
	Count() (int64, error)
}

// QueueRepository defines the interface for cache/queue operations
type QueueRepository interface {
	GetAllKeys() ([]string, error)
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKey(key string) (int64, error)
	GetListLength(key string) (int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User  UserRepository
	Video VideoRepository
	Grant GrantRepository
	Queue QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Video: NewVideoRepository(db),
		Grant: NewGrantRepository(db),
		Queue: NewQueueRepository(),
	}
}
