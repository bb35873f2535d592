// Package config provides configuration loading for the Shopie client.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level configuration for the Shopie client.
type Config struct {
	// API configures the backend connection.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Session configures where credentials are persisted.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Cache configures client-side response caching.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Log configures logging output.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the backend REST base URL, including any path prefix.
	// Example: http://localhost:8081/api
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	// Timeout is the HTTP client timeout. Default: 10s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Telemetry enables OpenTelemetry instrumentation of outgoing requests.
	Telemetry bool `yaml:"telemetry" mapstructure:"telemetry"`
}

// SessionConfig configures credential persistence.
type SessionConfig struct {
	// Store selects the persistence backend.
	Store string `yaml:"store" mapstructure:"store" validate:"oneof=file sqlite memory"`
	// Path is the credentials file or database path.
	// Default: ~/.shopie/session.json (file) or ~/.shopie/shopie.db (sqlite).
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig configures client-side response caching.
type CacheConfig struct {
	// ProductsTTL is how long product listings are cached. Zero disables.
	ProductsTTL time.Duration `yaml:"products_ttl" mapstructure:"products_ttl"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is the minimum log level.
	Level string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	// Format selects the slog handler.
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8081/api"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Session.Store == "" {
		c.Session.Store = "file"
	}
	if c.Session.Path == "" {
		c.Session.Path = defaultSessionPath(c.Session.Store)
	}
	if c.Cache.ProductsTTL == 0 {
		c.Cache.ProductsTTL = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// defaultSessionPath returns the per-user credentials location.
func defaultSessionPath(store string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	name := "session.json"
	if store == "sqlite" {
		name = "shopie.db"
	}
	return filepath.Join(home, ".shopie", name)
}

// Validate validates the configuration using struct tags.
// Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
