// Package cartengine assembles the cart and checkout engine for the
// sellpoint storefront: a locally mirrored cart kept consistent with the
// remote backend, seller-grouped priced line items, capability-mask
// eligibility, and a per-session checkout state machine.
package cartengine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sellpoint-ua/cart-engine/internal/cart"
	"github.com/sellpoint-ua/cart-engine/internal/checkout"
	"github.com/sellpoint-ua/cart-engine/internal/credentials"
	"github.com/sellpoint-ua/cart-engine/internal/gateway"
	"github.com/sellpoint-ua/cart-engine/pkg/config"
	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/metrics"
	"github.com/sellpoint-ua/cart-engine/pkg/redis"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

const serviceName = "cart-engine"

// Engine is the composed cart and checkout subsystem. The embedding
// application owns the credential provider and the process lifecycle;
// the engine owns everything between the token and the rendered cart.
type Engine struct {
	cfg      *config.Config
	log      *logger.Logger
	backend  *gateway.Client
	cache    *redis.Client
	resolver *checkout.Resolver
	cart     *cart.Service
}

// New wires the engine from configuration. A nil cfg loads from the
// environment. The registry may be nil to disable metrics. A redis
// endpoint that is configured but unreachable degrades to fetch-through
// rather than failing construction.
func New(ctx context.Context, cfg *config.Config, creds credentials.Provider, reg prometheus.Registerer) (*Engine, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential provider required")
	}
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	backend, err := gateway.NewClient(
		credentials.NewExpiryAware(creds),
		gateway.WithBaseURL(cfg.API.BaseURL),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.API.RequestTimeout}),
		gateway.WithLogger(log),
		gateway.WithMetrics(metrics.NewGatewayMetrics(reg)),
	)
	if err != nil {
		return nil, err
	}

	var cache *redis.Client
	if cfg.Redis.Configured() {
		cache, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			log.Error(ctx, "redis unavailable, store cache disabled", err)
			cache = nil
		}
	}

	stores, err := cart.NewStoreResolver(backend, cache, cfg.Cache.StoreTTL, log)
	if err != nil {
		return nil, err
	}
	media, err := cart.NewMediaResolver(backend, cache, cfg.Cache.MediaTTL, log)
	if err != nil {
		return nil, err
	}
	enricher, err := cart.NewEnricher(backend, media, cfg.Cart.EnrichConcurrency, log)
	if err != nil {
		return nil, err
	}
	service, err := cart.NewService(backend, enricher, cart.NewQuantityGuard(cfg.Cart.LimitFlagTTL), stores, cfg.Cart, log)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		log:      log,
		backend:  backend,
		cache:    cache,
		resolver: checkout.NewResolver(cfg.Eligibility),
		cart:     service,
	}, nil
}

// Cart returns the cart service.
func (e *Engine) Cart() *cart.Service {
	return e.cart
}

// NewCheckout opens a checkout session over an item set: one seller group's
// lines, or a single line for direct buy-now.
func (e *Engine) NewCheckout(items []types.EnrichedLine) (*checkout.Session, error) {
	return checkout.NewSession(e.resolver, e.backend, items, e.log)
}

// Close tears down the cart service and the store cache connection.
func (e *Engine) Close() error {
	e.cart.Close()
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}
