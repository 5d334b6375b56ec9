package entitlements

import (
	"context"
	"fmt"

	"github.com/clipgate/ClipGate/internal/pkg/plans"
)

// CheckFeature gates on a named plan capability, independent of usage
// counters. Unknown feature names deny.
func (s *Service) CheckFeature(ctx context.Context, userID uint, tier string, feature string) (Decision, error) {
	_ = ctx
	dec := Decision{
		UserID:      userID,
		CurrentTier: tier,
		Feature:     feature,
	}

	if userID == 0 {
		dec.Reason = DenyAuthenticationRequired
		dec.Message = "Authentication required"
		return dec, nil
	}

	def, ok := plans.Lookup(tier)
	if !ok {
		dec.Reason = DenyConfigurationMissing
		dec.Message = fmt.Sprintf("No plan configured for tier %q", tier)
		return dec, nil
	}

	if !def.HasFeature(feature) {
		dec.Reason = DenyFeatureLocked
		dec.Message = fmt.Sprintf("The %s feature is not included in your plan", feature)
		return dec, nil
	}

	dec.Allowed = true
	return dec, nil
}
