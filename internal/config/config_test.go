package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_API_URL", " https://api.samvad.test ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseAPIURL != "https://api.samvad.test" {
		t.Fatalf("BaseAPIURL = %q", cfg.BaseAPIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.TokenStoreType != "bbolt" || cfg.TokenStorePath == "" {
		t.Fatalf("unexpected token store defaults: %q %q", cfg.TokenStoreType, cfg.TokenStorePath)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.PublishersFile != "" {
		t.Fatalf("publishers should be disabled by default, got %q", cfg.PublishersFile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BASE_API_URL", "http://localhost:8000/api")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("TOKEN_STORE_TYPE", "memory")
	t.Setenv("TOKEN_TTL_SECONDS", "60")
	t.Setenv("PUBLISHERS_FILE", "./configs/publishers.yaml")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 5*time.Second || cfg.TokenTTL != time.Minute {
		t.Fatalf("durations not derived: %v %v", cfg.HTTPTimeout, cfg.TokenTTL)
	}
	if cfg.TokenStoreType != "memory" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.PublishersFile != "./configs/publishers.yaml" {
		t.Fatalf("PublishersFile = %q", cfg.PublishersFile)
	}
}

func TestLoadRequiresBaseAPIURL(t *testing.T) {
	t.Setenv("BASE_API_URL", "   ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without base_api_url")
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, key := range []string{"HTTP_TIMEOUT_SECONDS", "TOKEN_TTL_SECONDS", "PUBLISH_TIMEOUT_SECONDS"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv("BASE_API_URL", "http://api")
			t.Setenv(key, "0")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0", key)
			}
		})
	}
}
