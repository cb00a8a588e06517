// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` dotenv file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `PR_`, where `__` maps to “.”
     (e.g., `PR_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, resolved against Vault for `vault:` references, validated, and
cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls
`Load()` again and swaps the pointer.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Vault resolution only touches secret-bearing fields, and only when a
    value actually carries the `vault:` prefix, so dev setups without a
    Vault server keep working.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/vault"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PR_ROOT or climbs directories until conf/global.yaml is
// found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("PR_ROOT"); r != "" {
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

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: PR_SESSION__TTL_DAYS → session.ttl_days
	if err := k.Load(env.Provider("PR_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)

	if err := resolveSecrets(ctx, &cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"cookie", cfg.Session.CookieName,
		"ttl_days", cfg.Session.TTLDays,
		"landing", cfg.Guard.LandingPath,
		"ai", cfg.AI.Enabled(),
	)
	return &cfg, nil
}

// applyDefaults fills values the YAML may omit.  These mirror the shipped
// conf/global.yaml so a minimal file still yields a working service.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "pr_session"
	}
	if c.Session.TTLDays == 0 {
		c.Session.TTLDays = 5
	}
	if c.Guard.LoginPath == "" {
		c.Guard.LoginPath = "/login"
	}
	if c.Guard.LandingPath == "" {
		c.Guard.LandingPath = "/thinking"
	}
	if c.Guard.TransitPath == "" {
		c.Guard.TransitPath = "/dashboard"
	}
}

/*──────────────────────────── vault secrets ───────────────────────────────*/

// resolveSecrets swaps `vault:mount/path#key` references for their plain
// values.  The Vault client is only constructed when at least one field
// carries the prefix.
func resolveSecrets(ctx context.Context, c *Config) error {
	refs := []*string{
		&c.Database.Password,
		&c.Identity.APIKey,
		&c.AI.APIKey,
	}

	needed := false
	for _, r := range refs {
		if vault.IsRef(*r) {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	cli, err := vault.New(ctx, zap.S().Infof)
	if err != nil {
		return err
	}

	for _, r := range refs {
		if !vault.IsRef(*r) {
			continue
		}
		plain, err := cli.Resolve(ctx, *r)
		if err != nil {
			return err
		}
		*r = plain
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context) error { _, err := Load(ctx); return err }
