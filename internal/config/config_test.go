package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected PORT from env, got %q", cfg.Port)
	}
	if cfg.Notify.Display != 3*time.Second || cfg.Notify.ShowDelay != 100*time.Millisecond {
		t.Errorf("unexpected notify defaults %+v", cfg.Notify)
	}
	if cfg.Content.BaseURL != "" || cfg.Content.StrictStatus {
		t.Errorf("unexpected content defaults %+v", cfg.Content)
	}
	if cfg.Content.FetchTimeout != 10*time.Second || cfg.Content.ReloadParallelism != 8 {
		t.Errorf("unexpected fetch defaults %+v", cfg.Content)
	}
	if cfg.Stream.Retry != 5*time.Second || cfg.Stream.Keepalive != 15*time.Second {
		t.Errorf("unexpected stream defaults %+v", cfg.Stream)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONTENT_BASE_URL", "https://cdn.example.com/tutor/")
	t.Setenv("STRICT_FETCH_STATUS", "yes")
	t.Setenv("PAGE_SESSION_TTL", "15m")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("RELOAD_PARALLELISM", "2")
	t.Setenv("STREAM_KEEPALIVE", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Content.BaseURL != "https://cdn.example.com/tutor" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Content.BaseURL)
	}
	if !cfg.Content.StrictStatus {
		t.Error("expected strict status enabled")
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Limit.Requests != 30 {
		t.Errorf("expected fallback on bad int, got %d", cfg.Limit.Requests)
	}
	if cfg.Content.ReloadParallelism != 2 {
		t.Errorf("expected reload parallelism 2, got %d", cfg.Content.ReloadParallelism)
	}
	if cfg.Stream.Keepalive != 30*time.Second {
		t.Errorf("expected 30s keepalive, got %v", cfg.Stream.Keepalive)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db", func(c *Config) { c.DBPath = "" }},
		{"bad base url", func(c *Config) { c.Content.BaseURL = "ftp://x" }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"zero limit", func(c *Config) { c.Limit.Requests = 0 }},
		{"zero fetch timeout", func(c *Config) { c.Content.FetchTimeout = 0 }},
		{"zero parallelism", func(c *Config) { c.Content.ReloadParallelism = 0 }},
		{"zero keepalive", func(c *Config) { c.Stream.Keepalive = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	if !(&Config{}).IsDevelopment() {
		t.Error("empty frontend URL should be development")
	}
	if (&Config{FrontendURL: "https://maps.example.com"}).IsDevelopment() {
		t.Error("public frontend URL should not be development")
	}
}
