package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

func (m *memoryCache) MediaKey(productID string) string {
	return "sp:media:" + productID
}

type stubMediaGateway struct {
	images map[string]string
	calls  int
}

func (s *stubMediaGateway) GetPrimaryImage(ctx context.Context, productID string) (string, error) {
	s.calls++
	if url, ok := s.images[productID]; ok {
		return url, nil
	}
	return "", fmt.Errorf("no media")
}

func TestPrimaryImageFetchThrough(t *testing.T) {
	t.Parallel()
	media := &stubMediaGateway{images: map[string]string{"p-1": "https://cdn/p-1.jpg"}}
	resolver, err := NewMediaResolver(media, nil, time.Minute, nil)
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}

	url, err := resolver.PrimaryImage(context.Background(), "p-1")
	if err != nil || url != "https://cdn/p-1.jpg" {
		t.Fatalf("unexpected result: %q, %v", url, err)
	}
	if _, err := resolver.PrimaryImage(context.Background(), "missing"); err == nil {
		t.Fatal("gateway miss should surface as an error")
	}
	if _, err := resolver.PrimaryImage(context.Background(), ""); err == nil {
		t.Fatal("empty product id is rejected")
	}
}

func TestPrimaryImageUsesCache(t *testing.T) {
	t.Parallel()
	media := &stubMediaGateway{images: map[string]string{"p-1": "https://cdn/p-1.jpg"}}
	cache := &memoryCache{data: make(map[string]string)}
	resolver := &MediaResolver{media: media, cache: cache, ttl: time.Minute}

	first, err := resolver.PrimaryImage(context.Background(), "p-1")
	if err != nil || media.calls != 1 {
		t.Fatalf("expected one gateway call, got %d (%v)", media.calls, err)
	}
	second, err := resolver.PrimaryImage(context.Background(), "p-1")
	if err != nil || second != first {
		t.Fatalf("unexpected cached url: %q, %v", second, err)
	}
	if media.calls != 1 {
		t.Fatalf("cache hit should not reach the gateway, calls=%d", media.calls)
	}
}

func TestPrimaryImageNeverCachesMisses(t *testing.T) {
	t.Parallel()
	media := &stubMediaGateway{images: map[string]string{}}
	cache := &memoryCache{data: make(map[string]string)}
	resolver := &MediaResolver{media: media, cache: cache, ttl: time.Minute}

	if _, err := resolver.PrimaryImage(context.Background(), "p-1"); err == nil {
		t.Fatal("expected gateway miss")
	}
	if len(cache.data) != 0 {
		t.Fatalf("a miss must not be cached, got %v", cache.data)
	}

	media.images["p-1"] = "https://cdn/p-1.jpg"
	url, err := resolver.PrimaryImage(context.Background(), "p-1")
	if err != nil || url != "https://cdn/p-1.jpg" {
		t.Fatalf("late media should resolve once published: %q, %v", url, err)
	}
}

func TestNewMediaResolverRequiresGateway(t *testing.T) {
	t.Parallel()
	if _, err := NewMediaResolver(nil, nil, time.Minute, nil); err == nil {
		t.Fatal("expected error without media gateway")
	}
}

func TestEnrichReadsImagesThroughCache(t *testing.T) {
	t.Parallel()
	catalog := newStubCatalog()
	catalog.add("p-1", "s-1", "100")

	media := &stubMediaGateway{images: map[string]string{"p-1": "https://cdn/p-1.jpg"}}
	cache := &memoryCache{data: make(map[string]string)}
	resolver := &MediaResolver{media: media, cache: cache, ttl: time.Minute}

	enricher, err := NewEnricher(catalog, resolver, 2, nil)
	if err != nil {
		t.Fatalf("build enricher: %v", err)
	}

	lines := []types.CartLine{{ID: "l1", ProductID: "p-1", Pcs: 1}}
	first := enricher.Enrich(context.Background(), lines)
	if first[0].ImageURL != "https://cdn/p-1.jpg" {
		t.Fatalf("unexpected image url %q", first[0].ImageURL)
	}

	second := enricher.Enrich(context.Background(), lines)
	if second[0].ImageURL != "https://cdn/p-1.jpg" {
		t.Fatalf("unexpected image url %q", second[0].ImageURL)
	}
	if media.calls != 1 {
		t.Fatalf("the second enrichment should hit the cache, calls=%d", media.calls)
	}
}
