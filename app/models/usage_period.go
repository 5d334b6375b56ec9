package models

import "time"

// Metered resource names used by the quota middleware and the usage tracker.
const (
	ResourceVideos         = "videos"
	ResourceAPICalls       = "api_calls"
	ResourceStorage        = "storage"
	ResourceAISummaries    = "ai_summaries"
	ResourceAnalyticsViews = "analytics_views"
)

// UsagePeriod accumulates per-resource counters over one billing cycle of a
// subscription. At most one row per subscription contains "now"; rows are
// created lazily on the first metered action inside a new period.
type UsagePeriod struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID       uint      `gorm:"not null;index:idx_usage_periods_sub_window,priority:1" json:"subscription_id"`
	PeriodStart          time.Time `gorm:"type:timestamp;not null;index:idx_usage_periods_sub_window,priority:2" json:"period_start"`
	PeriodEnd            time.Time `gorm:"type:timestamp;not null;index:idx_usage_periods_sub_window,priority:3" json:"period_end"`
	VideosProcessed      int       `gorm:"not null;default:0" json:"videos_processed"`
	APICallsMade         int       `gorm:"not null;default:0" json:"api_calls_made"`
	StorageUsedMB        int       `gorm:"column:storage_used_mb;not null;default:0" json:"storage_used_mb"`
	AISummariesGenerated int       `gorm:"column:ai_summaries_generated;not null;default:0" json:"ai_summaries_generated"`
	AnalyticsViews       int       `gorm:"not null;default:0" json:"analytics_views"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Contains reports whether t falls inside the period window (inclusive).
func (p *UsagePeriod) Contains(t time.Time) bool {
	return !t.Before(p.PeriodStart) && !t.After(p.PeriodEnd)
}

// CounterFor returns the stored counter value for a resource name.
func (p *UsagePeriod) CounterFor(resource string) int {
	switch resource {
	case ResourceVideos:
		return p.VideosProcessed
	case ResourceAPICalls:
		return p.APICallsMade
	case ResourceStorage:
		return p.StorageUsedMB
	case ResourceAISummaries:
		return p.AISummariesGenerated
	case ResourceAnalyticsViews:
		return p.AnalyticsViews
	default:
		return 0
	}
}

// UsageCounterColumn maps a resource name to its database column. The empty
// string marks an unknown resource.
func UsageCounterColumn(resource string) string {
	switch resource {
	case ResourceVideos:
		return "videos_processed"
	case ResourceAPICalls:
		return "api_calls_made"
	case ResourceStorage:
		return "storage_used_mb"
	case ResourceAISummaries:
		return "ai_summaries_generated"
	case ResourceAnalyticsViews:
		return "analytics_views"
	default:
		return ""
	}
}
