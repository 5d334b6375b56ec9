package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusPaused   = "paused"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusNone     = "none"
)

// Subscription mirrors the billing provider's subscription state for a user.
// Rows are written by billing-event handling; the entitlement engine only
// reads them. At most one subscription per user is active-like at a time.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index:idx_subscriptions_user_status,priority:1" json:"user_id"`
	Tier               string     `gorm:"type:varchar(50);not null;default:'free';index" json:"tier"`
	Status             string     `gorm:"type:varchar(32);not null;default:'none';index:idx_subscriptions_user_status,priority:2" json:"status"`
	ProviderSubID      string     `gorm:"type:varchar(191);default:null;uniqueIndex" json:"provider_sub_id,omitempty"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveLike reports whether the subscription counts for metering.
// Paused subscriptions keep their usage window; canceled ones do not.
func (s *Subscription) IsActiveLike() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPaused:
		return true
	default:
		return false
	}
}

// IsActiveLikeStatus reports whether a raw status string counts for metering.
func IsActiveLikeStatus(status string) bool {
	s := Subscription{Status: status}
	return s.IsActiveLike()
}
