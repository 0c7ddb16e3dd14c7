// Package config loads the patterndb configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/patterndb/config.toml
// (~/.config/patterndb/config.toml when XDG_CONFIG_HOME is unset). Every key
// is optional; a missing file yields Default.
//
//	[cache]
//	backend = "badger"          # file | badger | redis | mongo | none
//	dir     = "/var/cache/patterndb"
//	ttl     = "720h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri        = "mongodb://localhost:27017"
//	database   = "patterndb"
//	collection = "tables"
//
//	[build]
//	workers   = 8
//	encodings = ["corner-perm", "corner-orient"]
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/patterndb/pkg/cache"
	"github.com/matzehuels/patterndb/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "patterndb"

// Config is the parsed configuration file.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Build  BuildConfig  `toml:"build"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects where tables are stored.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	// Prefix scopes keys so several deployments can share one backend.
	Prefix string `toml:"prefix"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// BuildConfig holds table construction defaults.
type BuildConfig struct {
	Workers   int      `toml:"workers"`
	Encodings []string `toml:"encodings"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from a TOML string such as "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: CacheConfig{Backend: cache.BackendFile},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   AppName,
			Collection: "tables",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the file at path over Default. A missing file is not an error
// unless the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Parse decodes configuration from TOML text over Default.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Cache.Backend != "" && !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of %v)", c.Cache.Backend, cache.Backends)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.Build.Workers != 0 {
		if err := errors.ValidateWorkers(c.Build.Workers); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "build.workers")
		}
	}
	return nil
}

// CacheOptions converts the cache, redis and mongo sections for cache.Open.
// An empty cache.dir resolves to the default cache directory.
func (c Config) CacheOptions() (cache.Options, error) {
	dir := c.Cache.Dir
	if dir == "" {
		d, err := CacheDir()
		if err != nil {
			return cache.Options{}, fmt.Errorf("resolve cache dir: %w", err)
		}
		dir = d
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis:   cache.RedisConfig{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB},
		Mongo: cache.MongoConfig{
			URI:                    c.Mongo.URI,
			Database:               c.Mongo.Database,
			Collection:             c.Mongo.Collection,
			ServerSelectionTimeout: 10 * time.Second,
		},
	}, nil
}

// Keyer returns the table keyer, scoped by cache.prefix when set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// DefaultPath returns $XDG_CONFIG_HOME/patterndb/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/patterndb/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
