package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyTier          = "tier"
	KeyFromProtected = "from_protected"

	// Locals keys set by the subscription middleware for downstream handlers
	KeyUsageDecision    = "USAGE_DECISION"
	KeySubscriptionInfo = "SUBSCRIPTION_INFO"
)
