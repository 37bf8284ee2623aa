package authsession

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/crmkit/authsession/credstore"
	"github.com/crmkit/authsession/token"
)

// Config tunes the session controller. Values are fixed at Build time and
// treated as immutable afterwards.
type Config struct {
	Token   TokenConfig
	Storage StorageConfig
	Refresh RefreshConfig
}

// TokenConfig controls expiry interpretation.
type TokenConfig struct {
	// RefreshWindow is how long before access-token expiry a refresh is
	// considered due. Zero falls back to token.DefaultRefreshWindow.
	RefreshWindow time.Duration `env:"AUTHSESSION_REFRESH_WINDOW"`
}

// StorageConfig controls where credentials are persisted.
type StorageConfig struct {
	// TokenKey and UserKey are the two fixed storage keys.
	TokenKey string `env:"AUTHSESSION_TOKEN_KEY"`
	UserKey  string `env:"AUTHSESSION_USER_KEY"`
	// Path, when set, backs the store with a credstore.FileKV at that
	// location. Ignored when a KV is injected through the builder.
	Path string `env:"AUTHSESSION_STORE_PATH"`
}

// RefreshConfig controls refresh-call coordination.
type RefreshConfig struct {
	// SingleFlight collapses concurrent RefreshToken calls into one remote
	// refresh whose result all callers share. Off by default: callers that
	// want at-most-once-per-expiry semantics opt in.
	SingleFlight bool `env:"AUTHSESSION_REFRESH_SINGLE_FLIGHT"`
}

// DefaultConfig returns the configuration [Builder.Build] starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			RefreshWindow: token.DefaultRefreshWindow,
		},
		Storage: StorageConfig{
			TokenKey: credstore.DefaultTokenKey,
			UserKey:  credstore.DefaultUserKey,
		},
	}
}

// ConfigFromEnv returns the default config overridden by AUTHSESSION_*
// environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if c.Token.RefreshWindow < 0 {
		return errors.New("Token RefreshWindow must be >= 0")
	}
	if c.Storage.TokenKey == "" {
		return errors.New("Storage TokenKey must not be empty")
	}
	if c.Storage.UserKey == "" {
		return errors.New("Storage UserKey must not be empty")
	}
	if c.Storage.TokenKey == c.Storage.UserKey {
		return errors.New("Storage TokenKey and UserKey must differ")
	}
	return nil
}
