// Package pipeline loads pattern databases for the CLI and the HTTP server.
//
// A table is expensive to build and cheap to store, so every entry point goes
// through the same load-or-build path: look the table up in the cache, decode
// it on a hit, and otherwise build it, encode it and store it for next time.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Load(ctx, pipeline.Options{Encoding: "corner-perm"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d, err := res.Database.Distance(state)
//
// Several companion tables combine into one admissible heuristic:
//
//	h, _, err := runner.Heuristic(ctx, []string{"corner-perm", "corner-orient"}, opts)
package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/errors"
	"github.com/matzehuels/patterndb/pkg/pdb"
	"github.com/matzehuels/patterndb/pkg/pdb/corner"
)

// =============================================================================
// Encodings
// =============================================================================

// Encoding describes a projection the runner can build.
type Encoding struct {
	Name        string
	Description string
	New         func() pdb.Projection[cube.State]
}

var encodings = []Encoding{
	{
		Name:        corner.PermutationName,
		Description: "placement of the 8 corners, orientation ignored (8! entries)",
		New:         func() pdb.Projection[cube.State] { return corner.NewPermutation[cube.State]() },
	},
	{
		Name:        corner.OrientationName,
		Description: "twist of the 8 corners, placement ignored (3^7 entries)",
		New:         func() pdb.Projection[cube.State] { return corner.NewOrientation[cube.State]() },
	},
	{
		Name:        corner.FullName,
		Description: "placement and twist of the 8 corners (8!·3^7 entries)",
		New:         func() pdb.Projection[cube.State] { return corner.NewFull[cube.State]() },
	},
}

// Encodings returns every registered encoding.
func Encodings() []Encoding {
	return append([]Encoding(nil), encodings...)
}

// EncodingNames returns the names of every registered encoding.
func EncodingNames() []string {
	names := make([]string, len(encodings))
	for i, e := range encodings {
		names[i] = e.Name
	}
	return names
}

// LookupEncoding returns the encoding registered under name.
func LookupEncoding(name string) (Encoding, error) {
	if err := errors.ValidateEncoding(name, EncodingNames()); err != nil {
		return Encoding{}, err
	}
	for _, e := range encodings {
		if e.Name == name {
			return e, nil
		}
	}
	return Encoding{}, errors.New(errors.ErrCodeInvalidEncoding, "unknown encoding %q", name)
}

// DefaultHeuristic lists the companion tables the CLI and server combine
// when no encoding is named.
var DefaultHeuristic = []string{corner.PermutationName, corner.OrientationName}

// =============================================================================
// Options
// =============================================================================

// DefaultTTL is how long stored tables live. Zero keeps them until the cache
// is cleared; a table only changes with FormatVersion, which changes its key.
const DefaultTTL time.Duration = 0

// DefaultWorkers returns the default build parallelism.
func DefaultWorkers() int { return runtime.GOMAXPROCS(0) }

// Options configures a single Load.
type Options struct {
	// Encoding names the projection to load.
	Encoding string

	// Workers is the build parallelism. Zero selects DefaultWorkers.
	Workers int

	// Refresh skips the cache lookup and rebuilds the table.
	Refresh bool

	// TTL is passed to the cache when storing a fresh table.
	TTL time.Duration

	// OnLevel, if set, is called once per breadth-first level of a build.
	OnLevel func(depth uint8, count int)

	// Logger overrides the runner's logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills defaults in place.
func (o *Options) ValidateAndSetDefaults() error {
	if _, err := LookupEncoding(o.Encoding); err != nil {
		return err
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	if err := errors.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if o.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ttl cannot be negative: %s", o.TTL)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is a loaded table.
type Result struct {
	// Database answers distance queries.
	Database *pdb.Database[cube.State]

	// BuildID identifies the build that produced the table. Empty on a
	// cache hit.
	BuildID string

	// CacheHit reports whether the table came from the cache.
	CacheHit bool

	// Stats describes the table and how long it took to obtain.
	Stats Stats
}

// Stats contains table statistics.
type Stats struct {
	Size        uint32
	Filled      int
	MaxDistance uint8
	Histogram   []int
	// EncodedBytes is the size of the stored form, zero if not stored.
	EncodedBytes int
	Duration     time.Duration
}

func tableStats(t *pdb.Table) Stats {
	d, _ := t.MaxDistance()
	return Stats{
		Size:        t.Size(),
		Filled:      t.Filled(),
		MaxDistance: d,
		Histogram:   t.Histogram(),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d entries, max distance %d", s.Filled, s.Size, s.MaxDistance)
}
