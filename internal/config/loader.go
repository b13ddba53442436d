// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `FORMRELAY_`, where `__` maps to “.”
     (e.g., `FORMRELAY_HTTP__LISTEN_ADDR → http.listen_addr`).

String leaves of the form `vault:<mount>/<path>#<key>` are then replaced
by the secret they name.  The merged tree is unmarshalled into typed
structs, defaulted, validated, and enriched with the runtime root path.
Callers own the returned *Config; both binaries load it once at start.

Instrumentation
---------------
  • DEBUG spans – root discovery, YAML read, vault resolution.
  • ERROR spans – YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  – final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Secrets are never logged; only their key paths are.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/vault"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "FORMRELAY_"

// SecretResolver turns a vault: reference into its plain value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// newResolver is swapped in tests.
var newResolver = func() (SecretResolver, error) {
	return vault.New(zap.S())
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves FORMRELAY_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, and validates.
func Load() (*Config, error) {
	return LoadFrom(context.Background(), rootDir())
}

// LoadFrom is Load with an explicit root directory.
func LoadFrom(ctx context.Context, root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("config yaml %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: FORMRELAY_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("config env overlay: %w", err)
	}

	if err := resolveSecrets(ctx, k); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"service", cfg.Service.Name,
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"driver", cfg.Database.Driver,
		"admin_guarded", cfg.Admin.Token != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every vault: string leaf for its secret.  The Vault
// client is only built when at least one reference exists.
func resolveSecrets(ctx context.Context, k *koanf.Koanf) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && vault.IsRef(s) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	sort.Strings(refs)

	res, err := newResolver()
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}
	for _, key := range refs {
		plain, err := res.Resolve(ctx, k.String(key))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, plain); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}
