package entitlements

import "errors"

var (
	// ErrGrantNotFound is returned when revoking a grant that does not exist
	// or is no longer active.
	ErrGrantNotFound = errors.New("grant not found")

	// ErrPlanNotConfigured indicates a tier without a plan definition. This is
	// an operational defect, not user error, and surfaces as a 500.
	ErrPlanNotConfigured = errors.New("plan not configured for tier")

	// ErrInvalidGrantInput is returned when grant input fails validation
	// beyond what the struct validator covers.
	ErrInvalidGrantInput = errors.New("invalid grant input")
)
