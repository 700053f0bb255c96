// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost    string `env:"AUTOPOST_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"AUTOPOST_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"AUTOPOST_ENV" envDefault:"development"`
	LogLevel      string `env:"AUTOPOST_LOG_LEVEL" envDefault:"info"`
	SessionSecret string `env:"AUTOPOST_SESSION_SECRET,required"`

	DataDir string `env:"AUTOPOST_DATA_DIR" envDefault:"./data"`
	DBPath  string `env:"AUTOPOST_DB_PATH" envDefault:"./data/autopost.db"`
	BaseURL string `env:"AUTOPOST_BASE_URL" envDefault:"http://localhost:8080"`

	// Collaborator selection. Mock implementations keep the pipeline
	// runnable without any external account.
	ContentProvider string `env:"AUTOPOST_CONTENT_PROVIDER" envDefault:"openai"`
	ChatModel       string `env:"AUTOPOST_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	ImageProvider   string `env:"AUTOPOST_IMAGE_PROVIDER" envDefault:"huggingface"`
	BlogProvider    string `env:"AUTOPOST_BLOG_PROVIDER" envDefault:"blogger"`

	// ContentLanguage is the BCP 47 tag articles are written in.
	ContentLanguage string `env:"AUTOPOST_CONTENT_LANGUAGE" envDefault:"id"`

	// PublishTolerance widens the due check so posts whose target time
	// falls just ahead of a poller tick still publish on that tick.
	PublishTolerance time.Duration `env:"AUTOPOST_PUBLISH_TOLERANCE" envDefault:"10m"`

	// SearchAPIKey enables search-backed plagiarism scoring.
	SearchAPIKey string `env:"AUTOPOST_SEARCH_API_KEY"`

	// Cache configuration
	CacheBackend string        `env:"AUTOPOST_CACHE_BACKEND" envDefault:"memory"`
	RedisURL     string        `env:"AUTOPOST_REDIS_URL"`
	CacheTTL     time.Duration `env:"AUTOPOST_CACHE_TTL" envDefault:"1h"`

	// Webhook notification target for post.published events
	WebhookURL    string `env:"AUTOPOST_WEBHOOK_URL"`
	WebhookSecret string `env:"AUTOPOST_WEBHOOK_SECRET"`

	// GeoIP configuration
	GeoIPDBPath string `env:"AUTOPOST_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// WebhookEnabled returns true if a post.published endpoint is configured.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

var (
	validContentProviders = []string{"openai", "mock"}
	validImageProviders   = []string{"huggingface", "openai", "mock"}
	validBlogProviders    = []string{"blogger", "mock"}
	validCacheBackends    = []string{"memory", "redis"}
)

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("AUTOPOST_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("AUTOPOST_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("AUTOPOST_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("AUTOPOST_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	if err := validateChoice("AUTOPOST_CONTENT_PROVIDER", cfg.ContentProvider, validContentProviders); err != nil {
		return nil, err
	}
	if err := validateChoice("AUTOPOST_IMAGE_PROVIDER", cfg.ImageProvider, validImageProviders); err != nil {
		return nil, err
	}
	if err := validateChoice("AUTOPOST_BLOG_PROVIDER", cfg.BlogProvider, validBlogProviders); err != nil {
		return nil, err
	}
	if err := validateChoice("AUTOPOST_CACHE_BACKEND", cfg.CacheBackend, validCacheBackends); err != nil {
		return nil, err
	}
	if cfg.CacheBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("AUTOPOST_CACHE_BACKEND=redis requires AUTOPOST_REDIS_URL")
	}

	if _, err := language.Parse(cfg.ContentLanguage); err != nil {
		return nil, fmt.Errorf("AUTOPOST_CONTENT_LANGUAGE %q is not a valid language tag: %w",
			cfg.ContentLanguage, err)
	}

	if cfg.PublishTolerance <= 0 {
		return nil, fmt.Errorf("AUTOPOST_PUBLISH_TOLERANCE must be positive, got %s", cfg.PublishTolerance)
	}

	return cfg, nil
}

// validateChoice checks that value is one of the allowed names.
func validateChoice(name, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of [%s], got %q", name, strings.Join(allowed, ", "), value)
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
