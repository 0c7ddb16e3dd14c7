// Package pdb implements pattern databases: dense tables that map a projected
// puzzle sub-state to its exact minimum move distance from the solved
// sub-state.
//
// A [Projection] maps a full puzzle state to an index in [0, Size()). A
// [Database] pairs a projection with a [Table] of one byte per index and fills
// it by breadth-first search over a [Puzzle]'s move graph. The index, not the
// full state, is the visited key, so memory is bounded by the index space.
//
// # Lifecycle
//
// A table is Empty when created by [New], Seeded when created by [NewSeeded],
// Building while [Database.Build] runs, and then either Complete or
// Interrupted. [Database.Distance] answers only for Complete and Seeded
// tables:
//
//	db := pdb.New[cube.State](corner.NewPermutation[cube.State]())
//	if err := db.Build(ctx, cube.Puzzle{}, pdb.WithWorkers(4)); err != nil {
//	    return err
//	}
//	d, err := db.Distance(state)
//
// An entry the build never reached holds [Unknown]; Distance reports it as
// [ErrUnpopulatedIndex], never as zero.
//
// # Concurrency
//
// Build uses a single FIFO worklist by default. With [WithWorkers] greater than
// one it expands each level across goroutines, committing assignments through
// an atomic bitset, and waits for all workers before starting the next level.
// Both strategies produce byte-identical tables.
//
// Once Complete, a table is immutable and Distance takes no locks.
//
// # Persistence
//
// [MarshalTable] and [UnmarshalTable] convert a Complete table to a compact
// checksummed form that preserves index order.
package pdb
