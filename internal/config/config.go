package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL  string        `mapstructure:"API_BASE_URL"`
	SocketURL   string        `mapstructure:"SOCKET_URL"`
	Token       string        `mapstructure:"TOKEN"`
	TokenFile   string        `mapstructure:"TOKEN_FILE"`
	PageSize    int           `mapstructure:"PAGE_SIZE"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
	GetRetries  int           `mapstructure:"GET_RETRIES"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	Env         string        `mapstructure:"ENV"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("SOCKET_URL", "ws://localhost:8000/ws")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("GET_RETRIES", 2)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENV", "development")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("SOCKET_URL")
	v.BindEnv("TOKEN")
	v.BindEnv("TOKEN_FILE")
	v.BindEnv("PAGE_SIZE")
	v.BindEnv("HTTP_TIMEOUT")
	v.BindEnv("GET_RETRIES")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("ENV")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration can produce working clients: the
// API base URL must be http(s), the socket URL ws(s), and the numeric knobs
// must be sane.
func (c *Config) Validate() error {
	base, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https, got %q", c.APIBaseURL)
	}

	sock, err := url.Parse(c.SocketURL)
	if err != nil {
		return fmt.Errorf("SOCKET_URL is not a valid URL: %w", err)
	}
	if sock.Scheme != "ws" && sock.Scheme != "wss" {
		return fmt.Errorf("SOCKET_URL must use ws or wss, got %q", c.SocketURL)
	}

	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.GetRetries < 0 {
		return fmt.Errorf("GET_RETRIES must not be negative, got %d", c.GetRetries)
	}
	if c.Token != "" && c.TokenFile != "" {
		return fmt.Errorf("TOKEN and TOKEN_FILE are mutually exclusive")
	}

	return nil
}
