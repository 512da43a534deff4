package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sellpoint-ua/cart-engine/pkg/logger"
	"github.com/sellpoint-ua/cart-engine/pkg/redis"
)

// mediaCache is the subset of the redis client the resolver needs.
type mediaCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MediaKey(productID string) string
}

// MediaResolver reads primary product image URLs through an optional redis
// cache. Image URLs are stable display data, like seller profiles; prices
// and stock never pass through here.
type MediaResolver struct {
	media MediaGateway
	cache mediaCache
	ttl   time.Duration
	log   *logger.Logger
}

// NewMediaResolver builds a resolver; cache may be nil for fetch-through.
func NewMediaResolver(media MediaGateway, cache *redis.Client, ttl time.Duration, log *logger.Logger) (*MediaResolver, error) {
	if media == nil {
		return nil, fmt.Errorf("media gateway required")
	}
	resolver := &MediaResolver{
		media: media,
		ttl:   ttl,
		log:   log,
	}
	if cache != nil {
		resolver.cache = cache
	}
	return resolver, nil
}

// PrimaryImage returns the product's primary image URL, consulting the
// cache first. A cache failure falls through to the gateway; only
// successful non-empty lookups are cached.
func (r *MediaResolver) PrimaryImage(ctx context.Context, productID string) (string, error) {
	if productID == "" {
		return "", fmt.Errorf("product id required")
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, r.cache.MediaKey(productID)); err == nil && cached != "" {
			return cached, nil
		}
	}

	url, err := r.media.GetPrimaryImage(ctx, productID)
	if err != nil {
		return "", err
	}

	if r.cache != nil && url != "" {
		_ = r.cache.Set(ctx, r.cache.MediaKey(productID), url, r.ttl)
	}
	return url, nil
}
