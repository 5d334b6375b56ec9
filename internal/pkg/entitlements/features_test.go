package entitlements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFeature(t *testing.T) {
	svc := NewService(newFakeRepo())

	tests := []struct {
		name    string
		userID  uint
		tier    string
		feature string
		allowed bool
		reason  DenyReason
	}{
		{"anonymous denied", 0, "premium", "analytics", false, DenyAuthenticationRequired},
		{"unknown tier is config error", 2, "platinum", "analytics", false, DenyConfigurationMissing},
		{"basic lacks analytics", 2, "basic", "analytics", false, DenyFeatureLocked},
		{"basic has api", 2, "basic", "api", true, ""},
		{"free lacks api", 2, "free", "api", false, DenyFeatureLocked},
		{"premium has analytics", 2, "premium", "analytics", true, ""},
		{"creator has priority support", 2, "creator", "priority_support", true, ""},
		{"unknown feature denies", 2, "creator", "teleportation", false, DenyFeatureLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := svc.CheckFeature(context.Background(), tt.userID, tt.tier, tt.feature)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, dec.Allowed)
			assert.Equal(t, tt.reason, dec.Reason)
			if !tt.allowed {
				assert.NotEmpty(t, dec.Message)
			}
		})
	}
}
