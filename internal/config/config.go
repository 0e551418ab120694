// Package config loads the client configuration from the environment.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the HealthPulse client reads at startup.
// All fields are optional; unknown environment values are ignored.
type Config struct {
	APIBaseURL string `mapstructure:"HEALTHPULSE_API_URL"`
	TimeoutMS  int    `mapstructure:"HEALTHPULSE_TIMEOUT_MS"`
	TokenFile  string `mapstructure:"HEALTHPULSE_TOKEN_FILE"`
	TokenKey   string `mapstructure:"HEALTHPULSE_TOKEN_KEY"`
	AuthBypass bool   `mapstructure:"HEALTHPULSE_AUTH_BYPASS"`
	LogLevel   string `mapstructure:"HEALTHPULSE_LOG_LEVEL"`
	LogFormat  string `mapstructure:"HEALTHPULSE_LOG_FORMAT"`

	// Mock daemon settings.
	MockPort  string `mapstructure:"HEALTHPULSE_MOCK_PORT"`
	JWTSecret string `mapstructure:"HEALTHPULSE_JWT_SECRET"`
}

// Load reads configuration from a .env file (if present) and the process
// environment, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("HEALTHPULSE_API_URL", "http://localhost:8080")
	v.SetDefault("HEALTHPULSE_TIMEOUT_MS", 30000)
	v.SetDefault("HEALTHPULSE_TOKEN_FILE", defaultTokenFile())
	v.SetDefault("HEALTHPULSE_LOG_LEVEL", "info")
	v.SetDefault("HEALTHPULSE_LOG_FORMAT", "console")
	v.SetDefault("HEALTHPULSE_MOCK_PORT", "8080")
	v.SetDefault("HEALTHPULSE_JWT_SECRET", "healthpulse-dev-secret")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("HEALTHPULSE_API_URL")
	v.BindEnv("HEALTHPULSE_TIMEOUT_MS")
	v.BindEnv("HEALTHPULSE_TOKEN_FILE")
	v.BindEnv("HEALTHPULSE_TOKEN_KEY")
	v.BindEnv("HEALTHPULSE_AUTH_BYPASS")
	v.BindEnv("HEALTHPULSE_LOG_LEVEL")
	v.BindEnv("HEALTHPULSE_LOG_FORMAT")
	v.BindEnv("HEALTHPULSE_MOCK_PORT")
	v.BindEnv("HEALTHPULSE_JWT_SECRET")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Timeout returns the configured request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// TokenKeyBytes decodes the optional at-rest encryption key.
// Returns nil when no key is configured.
func (c *Config) TokenKeyBytes() []byte {
	if c.TokenKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.TokenKey)
	if err != nil {
		return nil
	}
	return key
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("HEALTHPULSE_API_URL must not be empty")
	}
	if c.TokenKey != "" {
		key, err := hex.DecodeString(c.TokenKey)
		if err != nil {
			return fmt.Errorf("HEALTHPULSE_TOKEN_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("HEALTHPULSE_TOKEN_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
		}
	}
	return nil
}

// defaultTokenFile places the bearer token under the user config dir so
// it survives process restarts, mirroring browser local storage.
func defaultTokenFile() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "healthpulse", "healthpulse_token")
}
