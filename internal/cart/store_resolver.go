package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sellpoint-ua/cart-engine/internal/gateway"
	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/redis"
)

// storeCache is the subset of the redis client the resolver needs.
type storeCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	StoreKey(storeID string) string
}

// StoreResolver reads seller profiles through an optional redis cache.
// Seller display data changes rarely; prices and stock never pass through
// here, so caching does not violate the fetch-fresh invariant.
type StoreResolver struct {
	stores StoreGateway
	cache  storeCache
	ttl    time.Duration
	log    *logger.Logger
}

// NewStoreResolver builds a resolver; cache may be nil for fetch-through.
func NewStoreResolver(stores StoreGateway, cache *redis.Client, ttl time.Duration, log *logger.Logger) (*StoreResolver, error) {
	if stores == nil {
		return nil, fmt.Errorf("store gateway required")
	}
	resolver := &StoreResolver{
		stores: stores,
		ttl:    ttl,
		log:    log,
	}
	if cache != nil {
		resolver.cache = cache
	}
	return resolver, nil
}

// Resolve fetches the seller profile, consulting the cache first. A cache
// failure falls through to the gateway; a gateway failure returns nil so
// the caller can render the group without a seller name.
func (r *StoreResolver) Resolve(ctx context.Context, storeID string) *gateway.StoreProfile {
	if storeID == "" {
		return nil
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, r.cache.StoreKey(storeID)); err == nil {
			var profile gateway.StoreProfile
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile
			}
		}
	}

	profile, err := r.stores.GetStore(ctx, storeID)
	if err != nil {
		if r.log != nil {
			r.log.Warn(r.log.WithSellerID(ctx, storeID), "seller profile unavailable")
		}
		return nil
	}

	if r.cache != nil {
		if payload, err := json.Marshal(profile); err == nil {
			_ = r.cache.Set(ctx, r.cache.StoreKey(storeID), string(payload), r.ttl)
		}
	}
	return profile
}
