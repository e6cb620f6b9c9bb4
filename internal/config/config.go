// Package config provides configuration management for the NBJ feedback service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nbjcoach/nbjfeedback/internal/feedback"
)

// Config holds all configuration for the feedback server.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (e.g., ":7080").
	ServerAddr string

	// DataDir holds config.env and, by default, nothing else.
	DataDir string

	// OpenAIAPIKey is the upstream credential. It is not required at load
	// time: a missing key is reported per request as a configuration error.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the chat-completions API root.
	OpenAIBaseURL string

	// Model overrides the profile's default model when set.
	Model string

	// MaxOutputTokens overrides the profile's default when > 0.
	MaxOutputTokens int

	// Temperature overrides the profile's default when non-nil.
	Temperature *float64

	// Profile is the handler variant served on the bare endpoint.
	Profile string

	// UpstreamTimeout bounds a single call to the generation service.
	UpstreamTimeout time.Duration

	// UsageDBPath is the SQLite usage ledger. Empty disables the ledger.
	UsageDBPath string

	// MaxBodyBytes caps the inbound request body.
	MaxBodyBytes int64
}

// Load creates a Config from .env files and environment variables.
// Values are resolved in order: environment variable > ./.env >
// <data dir>/config.env > default.
func Load() (*Config, error) {
	// ./.env may set NBJ_DATA_DIR, so it is loaded before config.env is located.
	if err := loadEnvFiles(".env"); err != nil {
		return nil, err
	}
	dataDir := envOr("NBJ_DATA_DIR", defaultDataDir())
	if err := loadEnvFiles(FilePath()); err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddr:      envOr("NBJ_ADDR", ":7080"),
		DataDir:         dataDir,
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		Model:           os.Getenv("OPENAI_MODEL"),
		MaxOutputTokens: envOrInt("MAX_OUTPUT_TOKENS", 0),
		Temperature:     envFloatPtr("TEMPERATURE"),
		Profile:         envOr("NBJ_PROFILE", feedback.DefaultProfileName),
		UpstreamTimeout: envOrDuration("NBJ_UPSTREAM_TIMEOUT", 60*time.Second),
		UsageDBPath:     os.Getenv("NBJ_USAGE_DB"),
		MaxBodyBytes:    int64(envOrInt("NBJ_MAX_BODY_BYTES", 64<<10)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FilePath returns the path of config.env inside the data directory.
func FilePath() string {
	return filepath.Join(envOr("NBJ_DATA_DIR", defaultDataDir()), "config.env")
}

// loadEnvFiles loads each existing file without overriding variables that
// are already set. Missing files are skipped.
func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("NBJ_ADDR cannot be empty")
	}
	if _, ok := feedback.LookupProfile(c.Profile); !ok {
		return fmt.Errorf("NBJ_PROFILE %q is not one of %s", c.Profile, strings.Join(feedback.ProfileNames(), ", "))
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be > 0")
	}
	if c.Temperature != nil && !(*c.Temperature >= 0 && *c.Temperature <= 2) {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("NBJ_UPSTREAM_TIMEOUT must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("NBJ_MAX_BODY_BYTES must be > 0")
	}
	return nil
}

// UsageEnabled returns true if the usage ledger is configured.
func (c *Config) UsageEnabled() bool {
	return c.UsageDBPath != ""
}

// ServiceConfig returns the translator's view of the configuration.
func (c *Config) ServiceConfig() feedback.ServiceConfig {
	return feedback.ServiceConfig{
		APIKey:      c.OpenAIAPIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxOutputTokens,
		Temperature: c.Temperature,
	}
}

// Masked returns a printable key/value view with the credential masked.
func (c *Config) Masked() [][2]string {
	temp := "(profile default)"
	if c.Temperature != nil {
		temp = strconv.FormatFloat(*c.Temperature, 'f', -1, 64)
	}
	tokens := "(profile default)"
	if c.MaxOutputTokens > 0 {
		tokens = strconv.Itoa(c.MaxOutputTokens)
	}
	model := c.Model
	if model == "" {
		model = "(profile default)"
	}
	usage := c.UsageDBPath
	if usage == "" {
		usage = "(disabled)"
	}
	return [][2]string{
		{"NBJ_ADDR", c.ServerAddr},
		{"NBJ_DATA_DIR", c.DataDir},
		{"NBJ_PROFILE", c.Profile},
		{"OPENAI_API_KEY", MaskSecret(c.OpenAIAPIKey)},
		{"OPENAI_BASE_URL", c.OpenAIBaseURL},
		{"OPENAI_MODEL", model},
		{"MAX_OUTPUT_TOKENS", tokens},
		{"TEMPERATURE", temp},
		{"NBJ_UPSTREAM_TIMEOUT", c.UpstreamTimeout.String()},
		{"NBJ_USAGE_DB", usage},
		{"NBJ_MAX_BODY_BYTES", strconv.FormatInt(c.MaxBodyBytes, 10)},
	}
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(v string) string {
	switch {
	case v == "":
		return "(not set)"
	case len(v) <= 8:
		return "****"
	default:
		return "****" + v[len(v)-4:]
	}
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatPtr(key string) *float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nbjfeedback"
	}
	return filepath.Join(home, ".nbjfeedback")
}
