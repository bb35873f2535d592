package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for shopie.yaml/.yml in the
// current directory and ~/.shopie/.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found; set name/type so ReadInConfig returns
		// ConfigFileNotFoundError, which callers handle gracefully.
		viper.SetConfigName("shopie")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: SHOPIE_API_BASE_URL overrides api.base_url.
	viper.SetEnvPrefix("SHOPIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a shopie config file with an
// explicit YAML extension.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".shopie"),
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "shopie"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for environment variable support.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.timeout")
	_ = viper.BindEnv("api.telemetry")
	_ = viper.BindEnv("session.store")
	_ = viper.BindEnv("session.path")
	_ = viper.BindEnv("cache.products_ttl")
	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("log.format")
}

// Load reads the configuration file, applies environment overrides and
// defaults, validates, and returns the Config. A missing config file is not
// an error: defaults plus environment variables are enough to run.
func Load() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// FileUsed returns the path of the loaded config file, or empty when
// running on defaults and environment variables only.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
