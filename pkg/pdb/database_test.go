package pdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Empty(t *testing.T) {
	db := New[row](newRankProj())

	require.Equal(t, "row-perm", db.Name())
	require.Equal(t, uint32(24), db.Size())
	require.False(t, db.Complete())
	require.Equal(t, StateEmpty, db.Table().State())
	require.Zero(t, db.Table().Filled())

	_, err := db.Distance(row{0, 1, 2, 3})
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestDatabase_ZeroValue(t *testing.T) {
	var db Database[row]

	require.Empty(t, db.Name())
	require.Zero(t, db.Size())
	require.False(t, db.Complete())
	require.Equal(t, StateEmpty, db.Table().State())

	_, err := db.Distance(row{0, 1, 2, 3})
	require.ErrorIs(t, err, ErrIncomplete)
	_, err = db.IndexFor(row{0, 1, 2, 3})
	require.ErrorIs(t, err, ErrNoProjection)
	require.ErrorIs(t, db.Build(context.Background(), swapPuzzle{}), ErrNoProjection)
	require.ErrorIs(t, db.Load(NewSeededTable("row-perm", 24, 1)), ErrNoProjection)
	db.Reset()
	require.Equal(t, StateEmpty, db.Table().State())
}

func TestNewSeeded(t *testing.T) {
	for _, v := range []uint8{0, 7, Unknown} {
		db := NewSeeded[row](newRankProj(), v)
		require.Equal(t, StateSeeded, db.Table().State())
		for _, s := range allRows() {
			d, err := db.Distance(s)
			require.NoError(t, err)
			require.Equal(t, v, d)
		}
	}
}

func TestIndexFor(t *testing.T) {
	db := New[row](newRankProj())

	idx, err := db.IndexFor(row{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	idx, err = db.IndexFor(row{3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, uint32(23), idx)

	_, err = db.IndexFor(row{0, 0, 2, 3})
	require.Error(t, err)

	_, err = New[row](badProj{}).IndexFor(row{})
	require.ErrorIs(t, err, ErrIndexRange)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	src := New[row](newRankProj())
	require.NoError(t, src.Build(ctx, swapPuzzle{}))

	dst := New[row](newRankProj())
	require.NoError(t, dst.Load(src.Table()))
	d, err := dst.Distance(row{3, 2, 1, 0})
	require.NoError(t, err)
	require.Equal(t, uint8(6), d)

	other := New[row](zeroProj{})
	require.ErrorIs(t, other.Load(src.Table()), ErrTableMismatch)
	require.ErrorIs(t, other.Load(nil), ErrTableMismatch)
	require.ErrorIs(t, dst.Load(NewTable("row-perm", 24)), ErrIncomplete)
}

func TestReset(t *testing.T) {
	db := New[row](newRankProj())
	require.NoError(t, db.Build(context.Background(), swapPuzzle{}))
	require.True(t, db.Complete())

	db.Reset()
	require.False(t, db.Complete())
	require.Zero(t, db.Table().Filled())
}

func TestTable_Stats(t *testing.T) {
	db := New[row](newRankProj())
	require.NoError(t, db.Build(context.Background(), swapPuzzle{}))
	tbl := db.Table()

	assert.Equal(t, 24, tbl.Filled())
	assert.Equal(t, []int{1, 3, 5, 6, 5, 3, 1}, tbl.Histogram())
	d, ok := tbl.MaxDistance()
	assert.True(t, ok)
	assert.Equal(t, uint8(6), d)
	assert.Len(t, tbl.Bytes(), 24)

	empty := NewTable("x", 5)
	assert.Empty(t, empty.Histogram())
	_, ok = empty.MaxDistance()
	assert.False(t, ok)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "complete", StateComplete.String())
	assert.Equal(t, "seeded", StateSeeded.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.True(t, StateSeeded.Usable())
	assert.False(t, StateInterrupted.Usable())
}
