// internal/config/model.go
//
// Typed configuration model for formrelay.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `FORMRELAY_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Zero values are replaced by `applyDefaults` before validation.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"fmt"
	"strings"
	"time"
)

//
// Service section
//

// Service names the deployment in logs, the health body, and the API banner.
type Service struct {
	Name string `koanf:"name" validate:"required,max=64"`
}

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gt=0"`
	CORSOrigins  []string      `koanf:"cors_origins"  validate:"min=1,dive,required"`
}

//
// Database section
//

// Database selects the store backend.
//
// The DSN is a *template* kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  When it contains a `%s` verb the
// password (usually a vault: reference) is substituted at connect time.
type Database struct {
	Driver   string `koanf:"driver"   validate:"required,oneof=mysql postgres"`
	DSN      string `koanf:"dsn"      validate:"required,dsn_template"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=1"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0,ltefield=MaxOpen"`
}

// ResolvedDSN returns the DSN with the password substituted.
func (d Database) ResolvedDSN() string {
	if strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Relay section
//

// Relay points at the third-party form-relay endpoint.
type Relay struct {
	Endpoint string        `koanf:"endpoint" validate:"required,url"`
	Timeout  time.Duration `koanf:"timeout"  validate:"gt=0"`
}

//
// Admin section
//

// Admin guards and bounds the read-back endpoints.  An empty Token leaves
// them open.
type Admin struct {
	Token        string `koanf:"token"`
	DefaultLimit int    `koanf:"default_limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit     int    `koanf:"max_limit"     validate:"gte=1,lte=1000"`
}

//
// Logging, GeoIP, Duplicate
//

type Logging struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

type Duplicate struct {
	CacheSize int `koanf:"cache_size" validate:"gte=1"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // FORMRELAY_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	Service   Service   `koanf:"service"`
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Relay     Relay     `koanf:"relay"`
	Admin     Admin     `koanf:"admin"`
	Logging   Logging   `koanf:"logging"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Duplicate Duplicate `koanf:"duplicate"`
	Paths     Paths     `koanf:"-"`
}

// applyDefaults fills zero values the YAML may omit.
func applyDefaults(c *Config) {
	if c.Service.Name == "" {
		c.Service.Name = "formrelay"
	}
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = min(5, c.Database.MaxOpen)
	}
	if c.Relay.Timeout == 0 {
		c.Relay.Timeout = 10 * time.Second
	}
	if c.Admin.MaxLimit == 0 {
		c.Admin.MaxLimit = 100
	}
	if c.Admin.DefaultLimit == 0 {
		c.Admin.DefaultLimit = min(50, c.Admin.MaxLimit)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Duplicate.CacheSize == 0 {
		c.Duplicate.CacheSize = 4096
	}
}
