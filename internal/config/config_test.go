package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/patterndb/pkg/cache"
	"github.com/matzehuels/patterndb/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[cache]
backend = "redis"
ttl = "36h"

[redis]
addr = "cache:6379"
db = 2

[build]
workers = 4
encodings = ["corner-perm"]
`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Build.Workers != 4 || len(cfg.Build.Encodings) != 1 {
		t.Errorf("build = %+v", cfg.Build)
	}
	// untouched sections keep defaults
	if cfg.Mongo.Database != "patterndb" {
		t.Errorf("mongo.database = %q", cfg.Mongo.Database)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", `[cache`},
		{"unknown key", "[cache]\nbackedn = \"file\""},
		{"unknown backend", "[cache]\nbackend = \"s3\""},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
		{"workers", "[build]\nworkers = -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file falls back to defaults
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load missing default: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}

	// Missing explicit file is an error
	if _, err := Load(filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("Load of missing explicit path should fail")
	}

	path := filepath.Join(dir, AppName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestCacheOptions(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	opts, err := Default().CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dir != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("Dir = %q", opts.Dir)
	}

	cfg := Default()
	cfg.Cache.Dir = "/srv/tables"
	cfg.Redis.Password = "secret"
	opts, err = cfg.CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dir != "/srv/tables" || opts.Redis.Password != "secret" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestKeyer(t *testing.T) {
	plain := Default().Keyer().TableKey("corner-perm", 40320)
	if want := cache.NewDefaultKeyer().TableKey("corner-perm", 40320); plain != want {
		t.Errorf("unscoped key = %q, want %q", plain, want)
	}

	cfg, err := Parse(`
[cache]
prefix = "staging:"
`)
	if err != nil {
		t.Fatal(err)
	}
	scoped := cfg.Keyer().TableKey("corner-perm", 40320)
	if scoped != "staging:"+plain {
		t.Errorf("scoped key = %q, want prefix on %q", scoped, plain)
	}
	if !strings.HasPrefix(scoped, "staging:table:") {
		t.Errorf("scoped key = %q", scoped)
	}
}
