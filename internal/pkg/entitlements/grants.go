package entitlements

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipgate/ClipGate/app/models"
	"github.com/clipgate/ClipGate/internal/pkg/plans"
)

// CheckGrantAccess resolves the single active grant for a user into an
// effective video limit. A grant whose expiry has passed is treated as absent
// regardless of its stored is_active flag.
func (s *Service) CheckGrantAccess(ctx context.Context, userID uint) (GrantAccess, error) {
	_ = ctx
	grant, err := s.repo.GetActiveGrant(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GrantAccess{}, nil
		}
		return GrantAccess{}, err
	}
	if grant.IsExpired(s.now()) {
		return GrantAccess{}, nil
	}

	access := GrantAccess{
		HasGrant:     true,
		GrantID:      grant.ID,
		GrantType:    grant.GrantType,
		TierOverride: grant.TierOverride,
		ExpiresAt:    grant.ExpiresAt,
	}

	switch grant.GrantType {
	case models.GrantTypeUnlimitedVideos:
		access.VideoLimit = Unlimited
	case models.GrantTypeVideoLimitOverride:
		if grant.VideoLimitOverride == nil {
			return GrantAccess{}, fmt.Errorf("grant %d has no video limit override", grant.ID)
		}
		access.VideoLimit = *grant.VideoLimitOverride
	case models.GrantTypeFullAccess:
		def, ok := plans.Lookup(grant.TierOverride)
		if !ok {
			return GrantAccess{}, fmt.Errorf("%w: %q", ErrPlanNotConfigured, grant.TierOverride)
		}
		access.VideoLimit = def.VideoLimit
	case models.GrantTypeTrialExtension:
		access.VideoLimit = 1
	default:
		return GrantAccess{}, fmt.Errorf("unknown grant type %q", grant.GrantType)
	}

	return access, nil
}

// CreateGrant deactivates every existing active grant for the target user and
// inserts the new one as one logical unit. A full_access grant also moves the
// user's effective tier to the override.
func (s *Service) CreateGrant(ctx context.Context, in CreateGrantInput) (*models.Grant, error) {
	_ = ctx
	if !models.IsValidGrantType(in.GrantType) {
		return nil, fmt.Errorf("%w: unknown grant type %q", ErrInvalidGrantInput, in.GrantType)
	}
	tierOverride := ""
	switch in.GrantType {
	case models.GrantTypeFullAccess:
		if _, ok := plans.Lookup(in.TierOverride); !ok {
			return nil, fmt.Errorf("%w: full_access requires a configured tier override", ErrInvalidGrantInput)
		}
		tierOverride = string(plans.Normalize(in.TierOverride))
	case models.GrantTypeVideoLimitOverride:
		if in.VideoLimitOverride == nil || *in.VideoLimitOverride < 0 {
			return nil, fmt.Errorf("%w: video_limit_override requires a non-negative limit", ErrInvalidGrantInput)
		}
	}

	grant := &models.Grant{
		UserID:             in.UserID,
		GrantType:          in.GrantType,
		TierOverride:       tierOverride,
		VideoLimitOverride: in.VideoLimitOverride,
		IsActive:           true,
		ExpiresAt:          in.ExpiresAt,
		GrantedByID:        in.GrantedByID,
		Reason:             in.Reason,
	}
	if err := s.repo.CreateGrantExclusive(grant, tierOverride); err != nil {
		return nil, err
	}
	return grant, nil
}

// RevokeGrant deactivates a grant and returns it so callers can invalidate
// per-user state. Revoking a full_access grant reverts the user's effective
// tier to free.
func (s *Service) RevokeGrant(ctx context.Context, grantID uint, revokedByID uint) (*models.Grant, error) {
	_ = ctx
	_ = revokedByID
	grant, err := s.repo.GetGrant(grantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}
	if !grant.IsActive {
		return nil, ErrGrantNotFound
	}
	if err := s.repo.DeactivateGrant(grant.ID); err != nil {
		return nil, err
	}
	if grant.GrantType == models.GrantTypeFullAccess {
		if err := s.repo.UpdateUserTier(grant.UserID, string(plans.TierFree)); err != nil {
			return nil, err
		}
	}
	return grant, nil
}
