package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseAPIURL         string        `mapstructure:"base_api_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	TokenStoreType  string        `mapstructure:"token_store_type"`
	TokenStorePath  string        `mapstructure:"token_store_path"`
	TokenTTLSeconds int64         `mapstructure:"token_ttl_seconds"`
	TokenTTL        time.Duration `mapstructure:"-"`

	PublishersFile        string        `mapstructure:"publishers_file"`
	PublishTimeoutSeconds int64         `mapstructure:"publish_timeout_seconds"`
	PublishTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-request-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_api_url", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("token_store_type", "bbolt")
	v.SetDefault("token_store_path", "./data/session.db")
	v.SetDefault("token_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("publishers_file", "")
	v.SetDefault("publish_timeout_seconds", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseAPIURL = strings.TrimSpace(cfg.BaseAPIURL)
	if cfg.BaseAPIURL == "" {
		return nil, fmt.Errorf("base_api_url is required")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.TokenTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid token_ttl_seconds (must be positive seconds)")
	}
	cfg.TokenTTL = time.Duration(cfg.TokenTTLSeconds) * time.Second

	if cfg.PublishTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid publish_timeout_seconds (must be positive seconds)")
	}
	cfg.PublishTimeout = time.Duration(cfg.PublishTimeoutSeconds) * time.Second

	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)
	return &cfg, nil
}
