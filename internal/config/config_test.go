package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
	if cfg.SocketURL != "ws://localhost:8000/ws" {
		t.Errorf("SocketURL = %q, want default", cfg.SocketURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %s, want 10s", cfg.HTTPTimeout)
	}
	if cfg.GetRetries != 2 {
		t.Errorf("GetRetries = %d, want 2", cfg.GetRetries)
	}
	if !cfg.IsDev() {
		t.Error("default ENV should be development")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://hms.example.com/api")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("TOKEN", "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://hms.example.com/api" {
		t.Errorf("APIBaseURL = %q, want env override", cfg.APIBaseURL)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %s, want 3s", cfg.HTTPTimeout)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Token)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIBaseURL:  "http://localhost:8000/api",
		SocketURL:   "ws://localhost:8000/ws",
		PageSize:    10,
		HTTPTimeout: 10 * time.Second,
		GetRetries:  2,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad api scheme", func(c *Config) { c.APIBaseURL = "ftp://x" }},
		{"bad socket scheme", func(c *Config) { c.SocketURL = "http://x" }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative retries", func(c *Config) { c.GetRetries = -1 }},
		{"token and token file", func(c *Config) { c.Token = "a"; c.TokenFile = "b" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
