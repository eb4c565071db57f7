// Package config loads the partsource deployment configuration.
//
// Configuration is a TOML file describing the marketplace endpoints, the
// static vendor account roster, matching preferences, the inventory store,
// and the session store backend. Secrets (marketplace login, Gemini API key)
// never live in the file; they come from the environment, optionally seeded
// from a .env file by the caller.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/torqueline/partsource/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	Marketplace Marketplace `toml:"marketplace"`
	Vendors     []Vendor    `toml:"vendors"`
	Matching    Matching    `toml:"matching"`
	Inventory   Inventory   `toml:"inventory"`
	Session     Session     `toml:"session"`
	AI          AI          `toml:"ai"`
	Server      Server      `toml:"server"`
}

// Marketplace describes the remote parts marketplace.
type Marketplace struct {
	// Endpoint is the single query endpoint (query/variables/operation).
	Endpoint string `toml:"endpoint"`
	// LoginURL is the interactive login page driven by the browser handshake.
	LoginURL string `toml:"login_url"`
	// UsernameEnv and PasswordEnv name the environment variables holding
	// the login credentials.
	UsernameEnv string `toml:"username_env"`
	PasswordEnv string `toml:"password_env"`
}

// Vendor is one sourceable vendor account. The roster is fixed at deploy
// time; vendors are not discovered at runtime.
type Vendor struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Matching holds ranking preferences for the local matching engine.
type Matching struct {
	// PreferredVendor sorts first among non-inventory offers.
	PreferredVendor string `toml:"preferred_vendor"`
}

// Inventory selects the local inventory store backend.
type Inventory struct {
	// Driver is "postgres" or "memory".
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Session selects the session store backend and validity window.
type Session struct {
	// Store is "memory", "file", or "redis".
	Store string `toml:"store"`
	// Dir is the credential directory for the file store.
	Dir string `toml:"dir"`
	// RedisAddr is the address for the redis store.
	RedisAddr string `toml:"redis_addr"`
	// TTLHours is the fixed validity window measured from acquisition.
	TTLHours int `toml:"ttl_hours"`
}

// AI configures the text-completion collaborator used for legacy inventory
// matching. An empty model disables the fallback.
type AI struct {
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Defaults applied by Load when fields are unset.
const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultServerAddr  = ":8080"
	DefaultUsernameEnv = "PARTSOURCE_USERNAME"
	DefaultPasswordEnv = "PARTSOURCE_PASSWORD"
	DefaultAPIKeyEnv   = "GEMINI_API_KEY"
)

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read config %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates TOML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Marketplace.UsernameEnv == "" {
		c.Marketplace.UsernameEnv = DefaultUsernameEnv
	}
	if c.Marketplace.PasswordEnv == "" {
		c.Marketplace.PasswordEnv = DefaultPasswordEnv
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = int(DefaultSessionTTL / time.Hour)
	}
	if c.Inventory.Driver == "" {
		c.Inventory.Driver = "memory"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.AI.APIKeyEnv == "" {
		c.AI.APIKeyEnv = DefaultAPIKeyEnv
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.Marketplace.Endpoint); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "marketplace.endpoint")
	}
	if err := errors.ValidateURL(c.Marketplace.LoginURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "marketplace.login_url")
	}

	if len(c.Vendors) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one vendor account is required")
	}
	seen := make(map[string]bool, len(c.Vendors))
	for _, v := range c.Vendors {
		if v.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "vendor account missing id")
		}
		if seen[v.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate vendor account %q", v.ID)
		}
		seen[v.ID] = true
	}

	switch c.Session.Store {
	case "memory", "file":
	case "redis":
		if c.Session.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "session.redis_addr is required for the redis store")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown session store %q", c.Session.Store)
	}

	switch c.Inventory.Driver {
	case "memory":
	case "postgres":
		if c.Inventory.DSN == "" {
			return errors.New(errors.ErrCodeInvalidInput, "inventory.dsn is required for the postgres driver")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown inventory driver %q", c.Inventory.Driver)
	}

	return nil
}

// SessionTTL returns the configured session validity window.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// Username reads the marketplace username from the environment.
func (c *Config) Username() string { return os.Getenv(c.Marketplace.UsernameEnv) }

// Password reads the marketplace password from the environment.
func (c *Config) Password() string { return os.Getenv(c.Marketplace.PasswordEnv) }

// APIKey reads the AI collaborator API key from the environment.
func (c *Config) APIKey() string { return os.Getenv(c.AI.APIKeyEnv) }
