package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusReady      = "ready"
	VideoStatusFailed     = "failed"
)

type Video struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID        uint       `gorm:"index" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title         string     `gorm:"type:varchar(255)" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	SourceURL     string     `gorm:"type:varchar(512)" json:"source_url"`
	FilePath      string     `gorm:"type:varchar(255)" json:"file_path"`
	FileSizeMB    int        `gorm:"default:0" json:"file_size_mb"`
	DurationSec   int        `gorm:"default:0" json:"duration_sec"`
	Status        string     `gorm:"type:varchar(32);default:'pending';index" json:"status"`
	Summary       string     `gorm:"type:text" json:"summary"`
	IsPublic      bool       `gorm:"default:false" json:"is_public"`
	ViewCount     int        `gorm:"default:0" json:"view_count"`
	ArchiveKey    string     `gorm:"type:varchar(255);default:''" json:"-"`
	ArchivedAt    *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	ProcessedAt   *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingErr string     `gorm:"type:varchar(512);default:''" json:"-"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when none is set.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == "" {
		v.UUID = uuid.New().String()
	}
	return nil
}

// IsReady reports whether processing has finished successfully.
func (v *Video) IsReady() bool {
	return v.Status == VideoStatusReady
}
