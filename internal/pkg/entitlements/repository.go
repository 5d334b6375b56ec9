package entitlements

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
)

// Repository provides the DB operations used by the entitlement services.
type Repository interface {
	GetActiveLikeSubscription(userID uint) (*models.Subscription, error)
	GetLatestSubscription(userID uint) (*models.Subscription, error)
	GetUsagePeriod(subscriptionID uint, at time.Time) (*models.UsagePeriod, error)
	CreateUsagePeriod(p *models.UsagePeriod) error
	IncrementUsageCounter(periodID uint, resource string, delta int) error
	GetActiveGrant(userID uint) (*models.Grant, error)
	GetGrant(id uint) (*models.Grant, error)
	CreateGrantExclusive(g *models.Grant, tierOverride string) error
	DeactivateGrant(id uint) error
	GetUser(userID uint) (*models.User, error)
	UpdateUserTier(userID uint, tier string) error
	GetOrCreateUserSettings(userID uint) (*models.UserSettings, error)
	MarkFreeVideoUsed(userID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an entitlement repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

var activeLikeStatuses = []string{
	models.SubscriptionStatusActive,
	models.SubscriptionStatusTrialing,
	models.SubscriptionStatusPaused,
}

func (r *gormRepository) GetActiveLikeSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("user_id = ? AND status IN ?", userID, activeLikeStatuses).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetLatestSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetUsagePeriod(subscriptionID uint, at time.Time) (*models.UsagePeriod, error) {
	var period models.UsagePeriod
	err := r.db.
		Where("subscription_id = ? AND period_start <= ? AND period_end >= ?", subscriptionID, at, at).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *gormRepository) CreateUsagePeriod(p *models.UsagePeriod) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) IncrementUsageCounter(periodID uint, resource string, delta int) error {
	column := models.UsageCounterColumn(resource)
	if column == "" {
		return fmt.Errorf("unknown usage resource %q", resource)
	}
	return r.db.Model(&models.UsagePeriod{}).
		Where("id = ?", periodID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *gormRepository) GetActiveGrant(userID uint) (*models.Grant, error) {
	var grant models.Grant
	err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *gormRepository) GetGrant(id uint) (*models.Grant, error) {
	var grant models.Grant
	if err := r.db.First(&grant, id).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

// CreateGrantExclusive deactivates every active grant of the target user and
// inserts the new one as a single logical unit. A non-empty tierOverride also
// moves the user's effective tier inside the same transaction.
func (r *gormRepository) CreateGrantExclusive(g *models.Grant, tierOverride string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Grant{}).
			Where("user_id = ? AND is_active = ?", g.UserID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		if tierOverride != "" {
			if err := tx.Model(&models.User{}).
				Where("id = ?", g.UserID).
				Update("tier", tierOverride).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) DeactivateGrant(id uint) error {
	return r.db.Model(&models.Grant{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *gormRepository) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) UpdateUserTier(userID uint, tier string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("tier", tier).Error
}

func (r *gormRepository) GetOrCreateUserSettings(userID uint) (*models.UserSettings, error) {
	return models.GetOrCreateUserSettings(r.db, userID)
}

func (r *gormRepository) MarkFreeVideoUsed(userID uint) error {
	us, err := models.GetOrCreateUserSettings(r.db, userID)
	if err != nil {
		return err
	}
	if us.FreeVideoUsed {
		return nil
	}
	return r.db.Model(&models.UserSettings{}).
		Where("id = ?", us.ID).
		Update("free_video_used", true).Error
}
