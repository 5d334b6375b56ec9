package models

import "time"

const (
	GrantTypeUnlimitedVideos    = "unlimited_videos"
	GrantTypeVideoLimitOverride = "video_limit_override"
	GrantTypeFullAccess         = "full_access"
	GrantTypeTrialExtension     = "trial_extension"
)

// Grant is an administrator-issued quota override for a single user. Creating
// a grant deactivates all previous grants for that user, so at most one row
// per user has IsActive set.
type Grant struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index:idx_grants_user_active,priority:1" json:"user_id"`
	GrantType          string     `gorm:"type:varchar(50);not null" json:"grant_type"`
	TierOverride       string     `gorm:"type:varchar(50);default:null" json:"tier_override,omitempty"`
	VideoLimitOverride *int       `gorm:"default:null" json:"video_limit_override,omitempty"`
	IsActive           bool       `gorm:"default:true;index:idx_grants_user_active,priority:2" json:"is_active"`
	ExpiresAt          *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	GrantedByID        uint       `gorm:"not null" json:"granted_by_id"`
	Reason             string     `gorm:"type:varchar(255);default:null" json:"reason,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired reports whether the grant has an expiry in the past. Storage is
// not trusted to self-expire rows, so callers must re-check this even when
// IsActive is still set.
func (g *Grant) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}

// IsValidGrantType reports whether t is one of the known grant types.
func IsValidGrantType(t string) bool {
	switch t {
	case GrantTypeUnlimitedVideos, GrantTypeVideoLimitOverride, GrantTypeFullAccess, GrantTypeTrialExtension:
		return true
	default:
		return false
	}
}
