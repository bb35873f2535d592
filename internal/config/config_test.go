package config

import (
	"strings"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.API.BaseURL != "http://localhost:8081/api" {
		t.Errorf("unexpected default base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("unexpected default timeout: %v", cfg.API.Timeout)
	}
	if cfg.Session.Store != "file" {
		t.Errorf("unexpected default store: %q", cfg.Session.Store)
	}
	if !strings.HasSuffix(cfg.Session.Path, "session.json") {
		t.Errorf("unexpected default session path: %q", cfg.Session.Path)
	}
	if cfg.Cache.ProductsTTL != 30*time.Second {
		t.Errorf("unexpected default cache TTL: %v", cfg.Cache.ProductsTTL)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestSetDefaultsSQLitePath(t *testing.T) {
	cfg := Config{Session: SessionConfig{Store: "sqlite"}}
	cfg.SetDefaults()

	if !strings.HasSuffix(cfg.Session.Path, "shopie.db") {
		t.Errorf("expected sqlite default path, got %q", cfg.Session.Path)
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		API:     APIConfig{BaseURL: "https://shop.example.com/api", Timeout: 3 * time.Second},
		Session: SessionConfig{Store: "memory", Path: "/tmp/x"},
	}
	cfg.SetDefaults()

	if cfg.API.BaseURL != "https://shop.example.com/api" {
		t.Errorf("explicit base URL overwritten: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("explicit timeout overwritten: %v", cfg.API.Timeout)
	}
	if cfg.Session.Path != "/tmp/x" {
		t.Errorf("explicit path overwritten: %q", cfg.Session.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "required",
		},
		{
			name:    "bad base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantErr: "valid URL",
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.Session.Store = "redis" },
			wantErr: "one of",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "one of",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.SetDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
