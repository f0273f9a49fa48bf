package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Ledger backends.
const (
	BackendRPC    = "rpc"
	BackendMirror = "mirror"
)

var contractRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Ledger LedgerConfig      `yaml:"ledger"`
	RPC    RPCConfig         `yaml:"rpc"`
	Mirror MirrorConfig      `yaml:"mirror"`
	Auth   AuthConfig        `yaml:"auth"`
	Cache  CacheConfig       `yaml:"cache"`
	Render RenderConfig      `yaml:"render"`
}

// Validate validates the configuration. Only the selected ledger
// backend's section is checked.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	switch c.Ledger.Backend {
	case BackendRPC:
		if err := c.RPC.Validate(); err != nil {
			return fmt.Errorf("rpc: %w", err)
		}
	case BackendMirror:
		if err := c.Mirror.Validate(); err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return c.Render.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// PublicURL is the externally visible base URL used in metadata links.
	PublicURL string `yaml:"public_url"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PublicURL, is.URL),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LedgerConfig selects where records are read from.
type LedgerConfig struct {
	Backend string `yaml:"backend"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendRPC, BackendMirror)),
	)
}

// RPCConfig holds the EVM JSON-RPC endpoint and the message contract.
type RPCConfig struct {
	URL      string        `yaml:"url"`
	Contract string        `yaml:"contract"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Validate validates the RPC configuration.
func (c *RPCConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Contract, validation.Required, validation.Match(contractRe)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// MirrorConfig holds the SQLite mirror and the record spool it imports.
type MirrorConfig struct {
	Path  string `yaml:"path"`
	Spool string `yaml:"spool"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the mirror configuration.
func (c *MirrorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Spool, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced on record staging and the
// event stream:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// CacheConfig configures the render cache. An empty RedisURL disables it.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether a cache server is configured.
func (c *CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.When(c.Enabled(), validation.Required, validation.Min(time.Second))),
	)
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	// OGFormat is the encoding of social cards when a request does not
	// name one.
	OGFormat string `yaml:"og_format"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OGFormat, validation.Required, validation.In("svg", "png")),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Ledger: LedgerConfig{
			Backend: BackendMirror,
		},
		RPC: RPCConfig{
			URL:     "https://sepolia.base.org",
			Timeout: 10 * time.Second,
		},
		Mirror: MirrorConfig{
			Path:  "./terminalart.db",
			Spool: "./spool",
			Watch: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Render: RenderConfig{
			OGFormat: "png",
		},
	}
}
