package pdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/patterndb/pkg/observability"
)

// checkEvery is how many dequeued states pass between context checks.
const checkEvery = 256

// Build fills the table by breadth-first expansion from p.Solved().
//
// The solved state's index gets distance 0. Every successor whose index is
// still Unknown gets the current distance plus one and is expanded in turn.
// The index is the visited key, so memory is bounded by the index space and
// the first assignment of an index is kept.
//
// Build is idempotent: a Complete table is left untouched. If ctx is
// cancelled, the partial table is kept in StateInterrupted and the error
// wraps ErrConstructionInterrupted. Any other failure discards the partial
// table.
func (db *Database[S]) Build(ctx context.Context, p Puzzle[S], opts ...Option) error {
	if p == nil {
		return ErrNilPuzzle
	}
	if db.proj == nil {
		return ErrNoProjection
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o.err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.table.Load().state == StateComplete {
		return nil
	}

	name, size := db.proj.Name(), db.proj.Size()
	work := NewTable(name, size)
	work.state = StateBuilding
	db.table.Store(work)

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, name, int(size))
	o.Logger.Debug("build start", "table", name, "size", size, "workers", o.Workers)
	start := time.Now()

	onLevel := func(depth uint8, count int) {
		o.Logger.Debug("level", "table", name, "depth", depth, "count", count)
		hooks.OnLevel(ctx, name, int(depth), count)
		o.OnLevel(depth, count)
	}

	var err error
	if o.Workers > 1 {
		err = buildParallel(ctx, db.proj, p, work.data, o.Workers, onLevel)
	} else {
		err = buildSequential(ctx, db.proj, p, work.data, onLevel)
	}

	final := &Table{name: name, data: work.data}
	switch {
	case err == nil:
		final.state = StateComplete
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		final.state = StateInterrupted
		err = fmt.Errorf("%w: %w", ErrConstructionInterrupted, err)
	default:
		final = NewTable(name, size)
	}
	db.table.Store(final)

	filled := 0
	if final.state != StateEmpty {
		filled = final.Filled()
	}
	hooks.OnBuildComplete(ctx, name, filled, time.Since(start), err)
	if err != nil {
		o.Logger.Debug("build failed", "table", name, "filled", filled, "err", err)
		return err
	}
	o.Logger.Debug("build complete", "table", name, "filled", filled, "elapsed", time.Since(start))
	return nil
}

type queued[S any] struct {
	state S
	depth uint8
}

// buildSequential runs a single FIFO worklist. A level is reported when its
// first state is dequeued, by which point every state of that depth has been
// assigned.
func buildSequential[S any](ctx context.Context, proj Projection[S], p Puzzle[S], data []uint8, onLevel func(uint8, int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	solved := p.Solved()
	idx, err := indexOf(proj, solved)
	if err != nil {
		return err
	}
	data[idx] = 0

	var counts [int(MaxDistance) + 1]int
	counts[0] = 1
	queue := []queued[S]{{state: solved}}
	head := 0
	reported := -1
	moves := p.MoveCount()

	for steps := 0; head < len(queue); steps++ {
		item := queue[head]
		head++
		newLevel := int(item.depth) > reported
		if newLevel || steps%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if newLevel {
			reported = int(item.depth)
			onLevel(item.depth, counts[item.depth])
		}

		for m := 0; m < moves; m++ {
			next := p.Apply(item.state, m)
			idx, err := indexOf(proj, next)
			if err != nil {
				return err
			}
			if data[idx] != Unknown {
				continue
			}
			if item.depth == MaxDistance {
				return fmt.Errorf("%w: %s at index %d", ErrDistanceOverflow, proj.Name(), idx)
			}
			d := item.depth + 1
			data[idx] = d
			counts[d]++
			queue = append(queue, queued[S]{state: next, depth: d})
		}

		// Reclaim the consumed prefix once it dominates the slice.
		if head > 4096 && head*2 > len(queue) {
			n := copy(queue, queue[head:])
			clear(queue[n:])
			queue = queue[:n]
			head = 0
		}
	}
	return nil
}

// buildParallel expands one depth at a time across workers. Indices are
// claimed through an atomic bitset so each is assigned exactly once; the
// errgroup barrier separates levels, which keeps every assignment minimal.
func buildParallel[S any](ctx context.Context, proj Projection[S], p Puzzle[S], data []uint8, workers int, onLevel func(uint8, int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seen := make([]atomic.Uint64, (len(data)+63)/64)
	claim := func(i uint32) bool {
		mask := uint64(1) << (i & 63)
		return seen[i>>6].Or(mask)&mask == 0
	}

	solved := p.Solved()
	idx, err := indexOf(proj, solved)
	if err != nil {
		return err
	}
	claim(idx)
	data[idx] = 0

	frontier := []S{solved}
	for depth := uint8(0); len(frontier) > 0; depth++ {
		onLevel(depth, len(frontier))
		next, err := expandLevel(ctx, proj, p, data, claim, frontier, depth, workers)
		if err != nil {
			return err
		}
		frontier = next
	}
	return nil
}

func expandLevel[S any](ctx context.Context, proj Projection[S], p Puzzle[S], data []uint8,
	claim func(uint32) bool, frontier []S, depth uint8, workers int) ([]S, error) {
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(frontier) + workers - 1) / workers
	out := make([][]S, workers)
	moves := p.MoveCount()

	for w := range workers {
		lo := w * chunk
		if lo >= len(frontier) {
			break
		}
		hi := min(lo+chunk, len(frontier))
		g.Go(func() error {
			var buf []S
			for i, s := range frontier[lo:hi] {
				if i%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for m := 0; m < moves; m++ {
					next := p.Apply(s, m)
					idx, err := indexOf(proj, next)
					if err != nil {
						return err
					}
					if !claim(idx) {
						continue
					}
					if depth == MaxDistance {
						return fmt.Errorf("%w: %s at index %d", ErrDistanceOverflow, proj.Name(), idx)
					}
					data[idx] = depth + 1
					buf = append(buf, next)
				}
			}
			out[w] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range out {
		total += len(b)
	}
	next := make([]S, 0, total)
	for _, b := range out {
		next = append(next, b...)
	}
	return next, nil
}
