// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	Content ContentConfig
	Session SessionConfig
	Notify  NotifyConfig
	Stream  StreamConfig
	Limit   RateLimitConfig

	AttemptRetention time.Duration
}

// ContentConfig controls where fragments and stylesheets come from.
type ContentConfig struct {
	// BaseURL fetches fragments over HTTP when set; otherwise the embedded
	// content is served.
	BaseURL           string
	CacheTTL          time.Duration
	FetchTimeout      time.Duration
	StrictStatus      bool
	HighlightStyle    string
	CatalogPath       string
	ReloadParallelism int
}

// SessionConfig controls page-session lifetime.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// NotifyConfig holds notification banner timings.
type NotifyConfig struct {
	ShowDelay time.Duration
	Display   time.Duration
	FadeOut   time.Duration
}

// StreamConfig controls the notification streams.
type StreamConfig struct {
	Retry     time.Duration
	Keepalive time.Duration
}

// RateLimitConfig bounds grading submissions per learner.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/tutor.db"),
		Content: ContentConfig{
			BaseURL:           strings.TrimRight(getEnv("CONTENT_BASE_URL", ""), "/"),
			CacheTTL:          getEnvDuration("FRAGMENT_CACHE_TTL", 5*time.Minute),
			FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
			StrictStatus:      getEnvBool("STRICT_FETCH_STATUS", false),
			HighlightStyle:    getEnv("HIGHLIGHT_STYLE", "github"),
			CatalogPath:       getEnv("CATALOG_PATH", ""),
			ReloadParallelism: getEnvInt("RELOAD_PARALLELISM", 8),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("PAGE_SESSION_TTL", 60*time.Minute),
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Minute),
		},
		Notify: NotifyConfig{
			ShowDelay: getEnvDuration("NOTIFY_SHOW_DELAY", 100*time.Millisecond),
			Display:   getEnvDuration("NOTIFY_DISPLAY", 3*time.Second),
			FadeOut:   getEnvDuration("NOTIFY_FADE", 300*time.Millisecond),
		},
		Stream: StreamConfig{
			Retry:     getEnvDuration("SSE_RETRY", 5*time.Second),
			Keepalive: getEnvDuration("STREAM_KEEPALIVE", 15*time.Second),
		},
		Limit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		AttemptRetention: getEnvDuration("ATTEMPT_RETENTION", 30*24*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Content.BaseURL != "" && !strings.HasPrefix(c.Content.BaseURL, "http://") && !strings.HasPrefix(c.Content.BaseURL, "https://") {
		return fmt.Errorf("CONTENT_BASE_URL must be an http(s) URL")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("PAGE_SESSION_TTL must be > 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.Notify.ShowDelay < 0 || c.Notify.Display <= 0 || c.Notify.FadeOut < 0 {
		return fmt.Errorf("notification timings must be positive")
	}
	if c.Content.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if c.Content.ReloadParallelism <= 0 {
		return fmt.Errorf("RELOAD_PARALLELISM must be > 0")
	}
	if c.Stream.Retry <= 0 || c.Stream.Keepalive <= 0 {
		return fmt.Errorf("SSE_RETRY and STREAM_KEEPALIVE must be > 0")
	}
	if c.Limit.Requests <= 0 || c.Limit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
