package cache

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendFile, BackendBadger, BackendRedis, BackendMongo, BackendNone}

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	// Dir is the root directory for the file and badger backends.
	Dir    string
	Redis  RedisConfig
	Mongo  MongoConfig
	Logger *log.Logger
}

// Open returns the backend named by opts.Backend. An empty name selects the
// file backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendBadger:
		return NewBadgerCache(BadgerConfig{
			Path:   filepath.Join(opts.Dir, "badger"),
			Logger: opts.Logger,
		})
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, opts.Mongo)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
