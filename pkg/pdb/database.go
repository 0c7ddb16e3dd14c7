package pdb

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Database is a pattern database over puzzle states of type S.
//
// A Database composes a Projection with a Table. The projection decides what
// part of the state is tracked; the table storage, the build and the query
// path are shared by every encoding.
//
// Distance and IndexFor are safe for concurrent use and take no locks. Build,
// Load and Reset are serialized against each other.
//
// Create a Database with New or NewSeeded. The zero value has no projection;
// its queries fail with ErrIncomplete and its Build and Load with
// ErrNoProjection.
type Database[S any] struct {
	proj  Projection[S]
	table atomic.Pointer[Table]
	mu    sync.Mutex
}

// New returns a database whose table is empty. It must be built or loaded
// before Distance can be used.
func New[S any](proj Projection[S]) *Database[S] {
	db := &Database[S]{proj: proj}
	db.table.Store(NewTable(proj.Name(), proj.Size()))
	return db
}

// NewSeeded returns a database whose every entry holds v. Distance returns v
// for every state without any build, including v == Unknown.
func NewSeeded[S any](proj Projection[S], v uint8) *Database[S] {
	db := &Database[S]{proj: proj}
	db.table.Store(NewSeededTable(proj.Name(), proj.Size(), v))
	return db
}

// Name returns the projection's encoding name.
func (db *Database[S]) Name() string {
	if db.proj == nil {
		return ""
	}
	return db.proj.Name()
}

// Size returns the index space size.
func (db *Database[S]) Size() uint32 {
	if db.proj == nil {
		return 0
	}
	return db.proj.Size()
}

// Projection returns the projection the database was created with.
func (db *Database[S]) Projection() Projection[S] { return db.proj }

// Table returns the current table. Entries of a table in StateBuilding are
// still being written and must not be read.
func (db *Database[S]) Table() *Table { return db.current() }

// current returns the published table, or an empty one for the zero value.
func (db *Database[S]) current() *Table {
	if t := db.table.Load(); t != nil {
		return t
	}
	return &Table{}
}

// Complete reports whether a build has finished.
func (db *Database[S]) Complete() bool {
	return db.current().state == StateComplete
}

// IndexFor returns the table index of s.
func (db *Database[S]) IndexFor(s S) (uint32, error) {
	return indexOf(db.proj, s)
}

// Distance returns the stored distance of s.
//
// It fails with ErrIncomplete unless the table is Complete or Seeded, and with
// ErrUnpopulatedIndex when a Complete table never reached the index. Callers
// must treat both as "no bound known".
func (db *Database[S]) Distance(s S) (uint8, error) {
	t := db.current()
	switch t.state {
	case StateComplete, StateSeeded:
	case StateInterrupted:
		return 0, fmt.Errorf("%w: %s: %w", ErrIncomplete, t.name, ErrConstructionInterrupted)
	default:
		return 0, fmt.Errorf("%w: %s is %s", ErrIncomplete, t.name, t.state)
	}

	idx, err := indexOf(db.proj, s)
	if err != nil {
		return 0, err
	}
	d := t.data[idx]
	if d == Unknown && t.state == StateComplete {
		return 0, fmt.Errorf("%w: %s[%d]", ErrUnpopulatedIndex, t.name, idx)
	}
	return d, nil
}

// Load replaces the table with t, typically one decoded from storage.
// The table must match the projection's name and size and be usable.
func (db *Database[S]) Load(t *Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrTableMismatch)
	}
	if db.proj == nil {
		return ErrNoProjection
	}
	if t.name != db.proj.Name() || t.Size() != db.proj.Size() {
		return fmt.Errorf("%w: got %s/%d, want %s/%d",
			ErrTableMismatch, t.name, t.Size(), db.proj.Name(), db.proj.Size())
	}
	if !t.state.Usable() {
		return fmt.Errorf("%w: %s is %s", ErrIncomplete, t.name, t.state)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.table.Store(t)
	return nil
}

// Reset discards the table and returns the database to the empty state.
func (db *Database[S]) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.table.Store(NewTable(db.Name(), db.Size()))
}

func indexOf[S any](proj Projection[S], s S) (uint32, error) {
	if proj == nil {
		return 0, ErrNoProjection
	}
	idx, err := proj.Index(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", proj.Name(), err)
	}
	if idx >= proj.Size() {
		return 0, fmt.Errorf("%w: %s produced %d, size %d", ErrIndexRange, proj.Name(), idx, proj.Size())
	}
	return idx, nil
}
