package corner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/pdb"
)

func buildPermutation(t *testing.T, opts ...pdb.Option) *pdb.Database[cube.State] {
	t.Helper()
	db := pdb.New[cube.State](NewPermutation[cube.State]())
	require.NoError(t, db.Build(context.Background(), cube.Puzzle{}, opts...))
	return db
}

func TestPermutation_Dimensions(t *testing.T) {
	p := NewPermutation[cube.State]()
	assert.Equal(t, "corner-perm", p.Name())
	assert.Equal(t, uint32(40320), p.Size())

	idx, err := p.Index(cube.Solved())
	require.NoError(t, err)
	assert.Zero(t, idx)
}

func TestZeroValues(t *testing.T) {
	s := cube.Solved().ApplyAll(cube.Scramble(3, 15))

	want, err := NewPermutation[cube.State]().Index(s)
	require.NoError(t, err)
	got, err := Permutation[cube.State]{}.Index(s)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want, err = NewFull[cube.State]().Index(s)
	require.NoError(t, err)
	got, err = Full[cube.State]{}.Index(s)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	pieces, err := Permutation[cube.State]{}.Pieces(0)
	require.NoError(t, err)
	assert.Equal(t, [NumCorners]int{0, 1, 2, 3, 4, 5, 6, 7}, pieces)
}

func TestPermutation_Pieces(t *testing.T) {
	p := NewPermutation[cube.State]()
	s := cube.Solved().ApplyAll(cube.Scramble(7, 25))

	idx, err := p.Index(s)
	require.NoError(t, err)
	pieces, err := p.Pieces(idx)
	require.NoError(t, err)
	for slot, piece := range pieces {
		assert.Equal(t, int(s.Perm[slot]), piece)
	}

	_, err = p.Pieces(PermutationSize)
	require.Error(t, err)
}

func TestPermutation_IgnoresOrientation(t *testing.T) {
	p := NewPermutation[cube.State]()
	base := cube.Solved().ApplyAll(cube.Scramble(3, 30))

	twisted := base
	twisted.Orient = [NumCorners]uint8{1, 2, 0, 0, 2, 1, 0, 0}

	a, err := p.Index(base)
	require.NoError(t, err)
	b, err := p.Index(twisted)
	require.NoError(t, err)
	require.Equal(t, a, b)

	db := buildPermutation(t)
	da, err := db.Distance(base)
	require.NoError(t, err)
	dbt, err := db.Distance(twisted)
	require.NoError(t, err)
	require.Equal(t, da, dbt)
}

func TestPermutation_Build(t *testing.T) {
	db := buildPermutation(t)
	tbl := db.Table()

	require.Equal(t, pdb.StateComplete, tbl.State())
	require.Equal(t, PermutationSize, tbl.Filled())

	d, err := db.Distance(cube.Solved())
	require.NoError(t, err)
	require.Zero(t, d)

	for _, tok := range []string{"U", "R2", "F'", "D", "L2", "B'"} {
		m, err := cube.ParseMove(tok)
		require.NoError(t, err)
		d, err := db.Distance(cube.Solved().Apply(m))
		require.NoError(t, err)
		require.Equal(t, uint8(1), d, tok)
	}
}

func TestPermutation_StepDown(t *testing.T) {
	db := buildPermutation(t)
	p := NewPermutation[cube.State]()
	puzzle := cube.Puzzle{}

	for idx := uint32(0); idx < PermutationSize; idx++ {
		pieces, err := p.Pieces(idx)
		require.NoError(t, err)
		var s cube.State
		for slot, piece := range pieces {
			s.Perm[slot] = uint8(piece)
		}

		d, err := db.Distance(s)
		require.NoError(t, err)
		if d == 0 {
			continue
		}
		found := false
		for m := 0; m < puzzle.MoveCount() && !found; m++ {
			nd, err := db.Distance(puzzle.Apply(s, m))
			require.NoError(t, err)
			found = nd == d-1
		}
		require.True(t, found, "index %d at distance %d has no step down", idx, d)
	}
}

// TestPermutation_MatchesExhaustiveSearch compares the table against a
// breadth-first search keyed on the permutation itself.
func TestPermutation_MatchesExhaustiveSearch(t *testing.T) {
	db := buildPermutation(t)
	puzzle := cube.Puzzle{}

	dist := map[[NumCorners]uint8]int{cube.Solved().Perm: 0}
	queue := []cube.State{cube.Solved()}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for m := 0; m < puzzle.MoveCount(); m++ {
			n := puzzle.Apply(s, m)
			if _, ok := dist[n.Perm]; ok {
				continue
			}
			dist[n.Perm] = dist[s.Perm] + 1
			queue = append(queue, n)
		}
	}
	require.Len(t, dist, PermutationSize)

	for p, want := range dist {
		got, err := db.Distance(cube.State{Perm: p})
		require.NoError(t, err)
		require.Equal(t, want, int(got))
	}
}

func TestPermutation_ParallelMatchesSequential(t *testing.T) {
	seq := buildPermutation(t)
	par := buildPermutation(t, pdb.WithWorkers(4))
	require.True(t, seq.Table().Equal(par.Table()))
}

func TestPermutation_Seeded(t *testing.T) {
	db := pdb.NewSeeded[cube.State](NewPermutation[cube.State](), 255)
	for seed := uint64(0); seed < 50; seed++ {
		d, err := db.Distance(cube.Solved().ApplyAll(cube.Scramble(seed, 20)))
		require.NoError(t, err)
		require.Equal(t, uint8(255), d)
	}
}

func TestOrientation(t *testing.T) {
	o := NewOrientation[cube.State]()
	assert.Equal(t, "corner-orient", o.Name())
	assert.Equal(t, uint32(2187), o.Size())

	idx, err := o.Index(cube.Solved())
	require.NoError(t, err)
	assert.Zero(t, idx)

	// placement does not matter
	moved := cube.Solved()
	moved.Perm[0], moved.Perm[1] = moved.Perm[1], moved.Perm[0]
	idx, err = o.Index(moved)
	require.NoError(t, err)
	assert.Zero(t, idx)

	bad := cube.Solved()
	bad.Orient[2] = 3
	_, err = o.Index(bad)
	require.ErrorIs(t, err, ErrInvalidOrientation)
}

func TestOrientation_Twists(t *testing.T) {
	o := NewOrientation[cube.State]()
	for seed := uint64(0); seed < 20; seed++ {
		s := cube.Solved().ApplyAll(cube.Scramble(seed, 15))
		idx, err := o.Index(s)
		require.NoError(t, err)
		tw, err := o.Twists(idx)
		require.NoError(t, err)
		require.Equal(t, s.Orient, tw)
	}
	_, err := o.Twists(OrientationSize)
	require.Error(t, err)
}

func TestOrientation_Build(t *testing.T) {
	db := pdb.New[cube.State](NewOrientation[cube.State]())
	require.NoError(t, db.Build(context.Background(), cube.Puzzle{}))
	require.Equal(t, OrientationSize, db.Table().Filled())

	// quarter turns of U and D never twist corners
	for _, tok := range []string{"U", "D'", "U2"} {
		m, err := cube.ParseMove(tok)
		require.NoError(t, err)
		d, err := db.Distance(cube.Solved().Apply(m))
		require.NoError(t, err)
		require.Zero(t, d, tok)
	}
}

func TestFull(t *testing.T) {
	f := NewFull[cube.State]()
	p := NewPermutation[cube.State]()
	o := NewOrientation[cube.State]()
	assert.Equal(t, uint32(88179840), f.Size())
	assert.Equal(t, "corner-full", f.Name())

	seen := make(map[uint32]cube.State)
	for seed := uint64(0); seed < 200; seed++ {
		s := cube.Solved().ApplyAll(cube.Scramble(seed, 25))
		fi, err := f.Index(s)
		require.NoError(t, err)
		pi, _ := p.Index(s)
		oi, _ := o.Index(s)
		require.Equal(t, pi*OrientationSize+oi, fi)
		require.Less(t, fi, f.Size())
		if prev, ok := seen[fi]; ok {
			require.Equal(t, prev, s)
		}
		seen[fi] = s
	}
}

func TestCompanionMax(t *testing.T) {
	ctx := context.Background()
	pdbPerm := buildPermutation(t)
	pdbOrient := pdb.New[cube.State](NewOrientation[cube.State]())
	require.NoError(t, pdbOrient.Build(ctx, cube.Puzzle{}))

	h := pdb.Max[cube.State](pdbPerm, pdbOrient)
	for seed := uint64(0); seed < 50; seed++ {
		moves := cube.Scramble(seed, 8)
		s := cube.Solved().ApplyAll(moves)
		d, err := h.Distance(s)
		require.NoError(t, err)
		require.LessOrEqual(t, int(d), len(moves))

		dp, _ := pdbPerm.Distance(s)
		do, _ := pdbOrient.Distance(s)
		require.Equal(t, max(dp, do), d)
	}
}
