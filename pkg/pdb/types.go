package pdb

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Sentinel errors for pattern database operations.
var (
	// ErrUnpopulatedIndex is returned by Distance when the build never reached
	// the state's index. It means "no bound known", never zero.
	ErrUnpopulatedIndex = errors.New("pdb: index not populated")

	// ErrIncomplete is returned when a table is queried before a build has
	// completed or a seed value has been set.
	ErrIncomplete = errors.New("pdb: table incomplete")

	// ErrConstructionInterrupted is returned when a build is cancelled.
	ErrConstructionInterrupted = errors.New("pdb: construction interrupted")

	// ErrDistanceOverflow is returned when a breadth-first level would exceed
	// MaxDistance. It indicates an encoding that does not fit a byte table.
	ErrDistanceOverflow = errors.New("pdb: distance exceeds table width")

	// ErrIndexRange is returned when a projection produces an index outside
	// its declared size.
	ErrIndexRange = errors.New("pdb: projection index out of range")

	// ErrTableMismatch is returned when a loaded table does not belong to the
	// projection it is attached to.
	ErrTableMismatch = errors.New("pdb: table does not match projection")

	// ErrNoProjection is returned by a Database that was not created with
	// New or NewSeeded.
	ErrNoProjection = errors.New("pdb: database has no projection")

	// ErrNilPuzzle is returned when Build is called without a puzzle.
	ErrNilPuzzle = errors.New("pdb: puzzle is nil")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("pdb: invalid option supplied")
)

// Projection maps a full puzzle state to a dense index in [0, Size()).
//
// Implementations must be pure: the same state always yields the same index,
// and Index may be called concurrently.
type Projection[S any] interface {
	// Name identifies the encoding, e.g. "corner-perm". It is stored in
	// serialized tables and used as a cache key component.
	Name() string

	// Size returns the number of indices the projection can produce.
	Size() uint32

	// Index returns the database index for s.
	Index(s S) (uint32, error)
}

// Puzzle is the move graph a table is built over. Moves are numbered
// 0..MoveCount()-1. Apply must not mutate its argument.
type Puzzle[S any] interface {
	Solved() S
	MoveCount() int
	Apply(s S, move int) S
	MoveName(move int) string
}

// Heuristic is an admissible lower bound on the moves needed to solve a state.
type Heuristic[S any] interface {
	Distance(s S) (uint8, error)
}

// Option configures Build via functional arguments.
// If an Option is invalid (e.g. zero workers), it is recorded and surfaced as
// ErrOptionViolation when Build is invoked.
type Option func(*BuildOptions)

// BuildOptions holds parameters and callbacks for Build.
type BuildOptions struct {
	// Workers is the number of goroutines expanding each breadth-first level.
	// 1 selects the sequential single-queue traversal.
	Workers int

	// Logger receives debug output for each level.
	Logger *log.Logger

	// OnLevel is called once per depth with the number of indices first
	// reached at that depth.
	OnLevel func(depth uint8, count int)

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns BuildOptions with a sequential traversal, a
// discarding logger and a no-op level hook.
func DefaultOptions() BuildOptions {
	return BuildOptions{
		Workers: 1,
		Logger:  log.New(io.Discard),
		OnLevel: func(uint8, int) {},
	}
}

// WithWorkers selects the level-parallel strategy when n > 1.
func WithWorkers(n int) Option {
	return func(o *BuildOptions) {
		if n < 1 {
			o.err = fmt.Errorf("%w: workers must be positive (%d)", ErrOptionViolation, n)
			return
		}
		o.Workers = n
	}
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *log.Logger) Option {
	return func(o *BuildOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithOnLevel registers a callback invoked once per breadth-first level.
func WithOnLevel(fn func(depth uint8, count int)) Option {
	return func(o *BuildOptions) {
		if fn != nil {
			o.OnLevel = fn
		}
	}
}

// ErrCorruptTable is returned by UnmarshalTable for malformed input.
var ErrCorruptTable = errors.New("pdb: corrupt table encoding")
