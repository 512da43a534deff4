package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.sellpoint.pp.ua" {
		t.Fatalf("unexpected API base URL: %q", cfg.API.BaseURL)
	}
	if !cfg.Cart.RefetchAfterMutation {
		t.Fatal("expected refetch-after-mutation to default on")
	}
	if cfg.Cart.LimitFlagTTL != 2*time.Second {
		t.Fatalf("expected 2s limit flag TTL, got %v", cfg.Cart.LimitFlagTTL)
	}
	if cfg.Eligibility.FailClosed() {
		t.Fatal("eligibility should default to fail-open")
	}
	if cfg.Redis.Configured() {
		t.Fatal("redis should be unconfigured by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvAPIBaseURL, "http://localhost:9090")
	t.Setenv(EnvEligibilityFallback, "closed")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "http://localhost:9090" {
		t.Fatalf("unexpected base URL: %q", cfg.API.BaseURL)
	}
	if !cfg.Eligibility.FailClosed() {
		t.Fatal("expected fail-closed eligibility")
	}
	if !cfg.Redis.Configured() {
		t.Fatal("expected redis configured via URL")
	}
}

func TestLoad_InvalidFallback(t *testing.T) {
	t.Setenv(EnvEligibilityFallback, "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid fallback policy to return an error")
	}
}
