package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/patterndb/pkg/cache"
	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/errors"
	"github.com/matzehuels/patterndb/pkg/observability"
	"github.com/matzehuels/patterndb/pkg/pdb"
)

// keyType labels cache hook events.
const keyType = "table"

// Runner loads tables with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// keep loaded tables. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load returns the table for opts.Encoding, from the cache when possible.
//
// A cache entry that fails to decode is logged and replaced by a fresh
// build. Failing to store a built table is logged but not returned, since
// the table itself is usable.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	enc, _ := LookupEncoding(opts.Encoding)
	db := pdb.New(enc.New())
	key := r.Keyer.TableKey(db.Name(), db.Size())
	start := time.Now()

	if !opts.Refresh {
		if res, ok := r.fromCache(ctx, db, key, logger); ok {
			res.Stats.Duration = time.Since(start)
			logger.Info("loaded table", "table", db.Name(), "entries", res.Stats.Filled, "duration", res.Stats.Duration)
			return res, nil
		}
	}

	id := uuid.NewString()
	blog := logger.With("build", id[:8])
	blog.Info("building table", "table", db.Name(), "size", db.Size(), "workers", opts.Workers)

	buildOpts := []pdb.Option{pdb.WithWorkers(opts.Workers), pdb.WithLogger(blog)}
	if opts.OnLevel != nil {
		buildOpts = append(buildOpts, pdb.WithOnLevel(opts.OnLevel))
	}
	if err := db.Build(ctx, cube.Puzzle{}, buildOpts...); err != nil {
		if stderrors.Is(err, pdb.ErrConstructionInterrupted) {
			return nil, errors.Wrap(errors.ErrCodeBuildInterrupted, err, "build of %s interrupted", db.Name())
		}
		return nil, errors.Wrap(errors.ErrCodeBuildFailed, err, "build %s", db.Name())
	}

	res := &Result{Database: db, BuildID: id, Stats: tableStats(db.Table())}
	res.Stats.Duration = time.Since(start)
	blog.Info("built table", "table", db.Name(), "entries", res.Stats.Filled,
		"max", res.Stats.MaxDistance, "duration", res.Stats.Duration)

	res.Stats.EncodedBytes = r.store(ctx, db.Table(), key, opts.TTL, blog)
	return res, nil
}

// Heuristic loads every named table and combines them with pdb.Max.
// The results are returned in the order of names.
func (r *Runner) Heuristic(ctx context.Context, names []string, opts Options) (pdb.Heuristic[cube.State], []*Result, error) {
	if len(names) == 0 {
		names = DefaultHeuristic
	}
	parts := make([]pdb.Heuristic[cube.State], 0, len(names))
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		o := opts
		o.Encoding = name
		res, err := r.Load(ctx, o)
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, res.Database)
		results = append(results, res)
	}
	return pdb.Max(parts...), results, nil
}

// Evict removes the stored table for the named encoding.
func (r *Runner) Evict(ctx context.Context, name string) error {
	enc, err := LookupEncoding(name)
	if err != nil {
		return err
	}
	proj := enc.New()
	if err := r.Cache.Delete(ctx, r.Keyer.TableKey(proj.Name(), proj.Size())); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "evict %s", name)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) fromCache(ctx context.Context, db *pdb.Database[cube.State], key string, logger *log.Logger) (*Result, bool) {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		logger.Warn("cache lookup failed", "table", db.Name(), "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		logger.Debug("cache miss", "table", db.Name())
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)

	t, err := db.Decode(data)
	if err != nil {
		logger.Warn("discarding cached table", "table", db.Name(), "err", err)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}

	res := &Result{Database: db, CacheHit: true, Stats: tableStats(t)}
	res.Stats.EncodedBytes = len(data)
	return res, true
}

func (r *Runner) store(ctx context.Context, t *pdb.Table, key string, ttl time.Duration, logger *log.Logger) int {
	data, err := pdb.MarshalTable(t)
	if err != nil {
		logger.Warn("encode table", "table", t.Name(), "err", err)
		return 0
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		logger.Warn("store table", "table", t.Name(), "err", err)
		return 0
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	logger.Debug("stored table", "table", t.Name(), "bytes", len(data))
	return len(data)
}

// logger returns the logger for a run.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
