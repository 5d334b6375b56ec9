package entitlements

import (
	"time"

	"gorm.io/gorm"
)

// Service decides admit/deny for metered actions and maintains the state
// those decisions depend on: grants, usage periods and the free video credit.
// Stores are injected so tests can substitute them.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an entitlement service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates an entitlement service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}
