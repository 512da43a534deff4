package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	API         APIConfig
	Cart        CartConfig
	Eligibility EligibilityConfig
	Redis       RedisConfig
	Cache       CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Eligibility.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLPOINT_APP_ENV" default:"prod"`
	LogLevel     string `envconfig:"SELLPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLPOINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL        string        `envconfig:"SELLPOINT_API_BASE_URL" default:"https://api.sellpoint.pp.ua"`
	RequestTimeout time.Duration `envconfig:"SELLPOINT_API_REQUEST_TIMEOUT" default:"10s"`
}

type CartConfig struct {
	// RefetchAfterMutation keeps the full-refresh consistency model: every
	// mutation is followed by a complete cart re-read instead of an
	// optimistic local patch.
	RefetchAfterMutation bool          `envconfig:"SELLPOINT_CART_REFETCH_AFTER_MUTATION" default:"true"`
	LimitFlagTTL         time.Duration `envconfig:"SELLPOINT_CART_LIMIT_FLAG_TTL" default:"2s"`
	EnrichConcurrency    int           `envconfig:"SELLPOINT_CART_ENRICH_CONCURRENCY" default:"8"`
}

type EligibilityConfig struct {
	// FallbackPolicy decides what a missing capability mask means:
	// "open" assumes the default permissive set, "closed" contributes an
	// empty mask and excludes the item's methods from the intersection.
	FallbackPolicy string `envconfig:"SELLPOINT_ELIGIBILITY_FALLBACK" default:"open"`
}

func (e EligibilityConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.FallbackPolicy)) {
	case FallbackOpen, FallbackClosed:
		return nil
	}
	return fmt.Errorf("invalid eligibility fallback %q (want %q or %q)",
		e.FallbackPolicy, FallbackOpen, FallbackClosed)
}

// FailClosed reports whether missing capability data excludes an item.
func (e EligibilityConfig) FailClosed() bool {
	return strings.EqualFold(strings.TrimSpace(e.FallbackPolicy), FallbackClosed)
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLPOINT_REDIS_URL"`
	Address      string        `envconfig:"SELLPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"SELLPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis endpoint was provided at all. The
// seller/media cache is optional; without redis the engine fetches through.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type CacheConfig struct {
	StoreTTL time.Duration `envconfig:"SELLPOINT_CACHE_STORE_TTL" default:"10m"`
	MediaTTL time.Duration `envconfig:"SELLPOINT_CACHE_MEDIA_TTL" default:"30m"`
}
