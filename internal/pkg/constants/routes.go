package constants

// Static route constants
const (
	PublicRoute  = "/"
	LoginRoute   = "/login"
	PricingRoute = "/pricing"
	BillingRoute = "/account/billing"
	ShareRoute   = "/v"
	ShortRoute   = "/s"
	APIBasePath  = "/api/v1"
	DocsRoute    = "/docs/api/v1"
)
