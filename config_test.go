package authsession

import (
	"testing"
	"time"

	"github.com/crmkit/authsession/credstore"
	"github.com/crmkit/authsession/token"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Token.RefreshWindow != token.DefaultRefreshWindow {
		t.Fatalf("unexpected default refresh window %v", cfg.Token.RefreshWindow)
	}
	if cfg.Storage.TokenKey != credstore.DefaultTokenKey || cfg.Storage.UserKey != credstore.DefaultUserKey {
		t.Fatalf("unexpected default storage keys %+v", cfg.Storage)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative refresh window", func(c *Config) { c.Token.RefreshWindow = -time.Second }},
		{"empty token key", func(c *Config) { c.Storage.TokenKey = "" }},
		{"empty user key", func(c *Config) { c.Storage.UserKey = "" }},
		{"colliding keys", func(c *Config) {
			c.Storage.TokenKey = "same"
			c.Storage.UserKey = "same"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHSESSION_REFRESH_WINDOW", "90s")
	t.Setenv("AUTHSESSION_TOKEN_KEY", "acme.tokens")
	t.Setenv("AUTHSESSION_REFRESH_SINGLE_FLIGHT", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Token.RefreshWindow != 90*time.Second {
		t.Fatalf("expected 90s refresh window, got %v", cfg.Token.RefreshWindow)
	}
	if cfg.Storage.TokenKey != "acme.tokens" {
		t.Fatalf("expected overridden token key, got %q", cfg.Storage.TokenKey)
	}
	if cfg.Storage.UserKey != credstore.DefaultUserKey {
		t.Fatalf("expected default user key preserved, got %q", cfg.Storage.UserKey)
	}
	if !cfg.Refresh.SingleFlight {
		t.Fatal("expected single-flight enabled from env")
	}
}

func TestConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("AUTHSESSION_TOKEN_KEY", "same")
	t.Setenv("AUTHSESSION_USER_KEY", "same")

	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected validation failure for colliding keys")
	}
}
