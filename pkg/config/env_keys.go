package config

// EnvPrefix namespaces every engine environment variable.
const EnvPrefix = "SELLPOINT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Eligibility fallback policies for products missing capability masks.
const (
	FallbackOpen   = "open"
	FallbackClosed = "closed"
)

// Environment variable names used directly by tests and tooling.
const (
	EnvAppEnv              = "SELLPOINT_APP_ENV"
	EnvLogLevel            = "SELLPOINT_LOG_LEVEL"
	EnvAPIBaseURL          = "SELLPOINT_API_BASE_URL"
	EnvRedisURL            = "SELLPOINT_REDIS_URL"
	EnvEligibilityFallback = "SELLPOINT_ELIGIBILITY_FALLBACK"
)
