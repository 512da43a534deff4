package cartengine

import (
	"context"
	"testing"
	"time"

	"github.com/sellpoint-ua/cart-engine/internal/credentials"
	"github.com/sellpoint-ua/cart-engine/pkg/config"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
	"github.com/sellpoint-ua/cart-engine/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, LogLevel: "error"},
		API: config.APIConfig{
			BaseURL:        "https://api.sellpoint.test",
			RequestTimeout: 5 * time.Second,
		},
		Cart: config.CartConfig{
			RefetchAfterMutation: true,
			LimitFlagTTL:         2 * time.Second,
			EnrichConcurrency:    4,
		},
		Eligibility: config.EligibilityConfig{FallbackPolicy: config.FallbackOpen},
		Cache:       config.CacheConfig{StoreTTL: 10 * time.Minute},
	}
}

func TestNewWiresEngine(t *testing.T) {
	t.Parallel()
	engine, err := New(context.Background(), testConfig(), credentials.NewStatic("token"), nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer func() { _ = engine.Close() }()

	if engine.Cart() == nil {
		t.Fatal("cart service must be wired")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New(context.Background(), testConfig(), nil, nil); err == nil {
		t.Fatal("expected error without a credential provider")
	}
}

func TestNewCheckoutSession(t *testing.T) {
	t.Parallel()
	engine, err := New(context.Background(), testConfig(), credentials.NewStatic("token"), nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer func() { _ = engine.Close() }()

	item := types.EnrichedLine{CartLine: types.CartLine{ID: "l1", ProductID: "p1", Pcs: 1}}
	session, err := engine.NewCheckout([]types.EnrichedLine{item})
	if err != nil {
		t.Fatalf("open checkout: %v", err)
	}
	defer session.Close()
	if session.ID() == "" {
		t.Fatal("session id expected")
	}

	if _, err := engine.NewCheckout(nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty item set must fail validation, got %v", err)
	}
}
