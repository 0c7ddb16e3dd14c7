// Package corner provides pattern database projections over the eight corner
// cubies of a 3x3x3 cube.
//
// Slots are numbered in the fixed order URF, UFL, ULB, UBR, DFR, DLF, DBL,
// DRB; pieces use the same numbering, so the solved state has piece i in slot
// i with orientation 0.
//
// [Permutation] ignores orientation and [Orientation] ignores placement.
// [Full] folds both into one index. The first two are companion databases
// meant to be combined with pdb.Max.
package corner

import (
	"errors"
	"fmt"

	"github.com/matzehuels/patterndb/pkg/perm"
)

// NumCorners is the number of tracked corner slots.
const NumCorners = 8

// Index space sizes.
const (
	PermutationSize = 40320                             // 8!
	OrientationSize = 2187                              // 3^7
	FullSize        = PermutationSize * OrientationSize // 88,179,840
)

// Encoding names.
const (
	PermutationName = "corner-perm"
	OrientationName = "corner-orient"
	FullName        = "corner-full"
)

// ErrInvalidOrientation is returned for a corner twist outside 0..2.
var ErrInvalidOrientation = errors.New("corner: invalid orientation")

// View is read-only access to the corner cubies of a puzzle state.
type View interface {
	// Corner returns the piece in slot and its twist.
	Corner(slot int) (piece, orientation uint8)
}

var pieceIndexer = perm.MustIndexer(NumCorners, NumCorners)

// Permutation indexes which piece sits in each corner slot. The zero value
// is ready to use.
type Permutation[S View] struct{}

// NewPermutation returns the corner permutation projection.
func NewPermutation[S View]() Permutation[S] { return Permutation[S]{} }

func (Permutation[S]) Name() string { return PermutationName }
func (Permutation[S]) Size() uint32 { return PermutationSize }

// Index ranks the slot-ordered piece tuple. States that differ only in
// orientation share an index.
func (Permutation[S]) Index(s S) (uint32, error) {
	var tuple [NumCorners]int
	for slot := range tuple {
		piece, _ := s.Corner(slot)
		tuple[slot] = int(piece)
	}
	r, err := pieceIndexer.Rank(tuple[:])
	if err != nil {
		return 0, err
	}
	return uint32(r), nil
}

// Pieces returns the slot-ordered piece tuple for a permutation index.
func (Permutation[S]) Pieces(index uint32) ([NumCorners]int, error) {
	var out [NumCorners]int
	err := pieceIndexer.UnrankInto(uint64(index), out[:])
	return out, err
}

// Orientation indexes the twists of slots 0..6 as base-3 digits. The twist of
// the last slot is fixed by the others and is not encoded.
type Orientation[S View] struct{}

// NewOrientation returns the corner orientation projection.
func NewOrientation[S View]() Orientation[S] { return Orientation[S]{} }

func (Orientation[S]) Name() string { return OrientationName }
func (Orientation[S]) Size() uint32 { return OrientationSize }

func (Orientation[S]) Index(s S) (uint32, error) {
	var idx uint32
	for slot := 0; slot < NumCorners-1; slot++ {
		_, o := s.Corner(slot)
		if o > 2 {
			return 0, fmt.Errorf("%w: slot %d has twist %d", ErrInvalidOrientation, slot, o)
		}
		idx = idx*3 + uint32(o)
	}
	return idx, nil
}

// Twists returns the eight slot twists for an orientation index, deriving
// the last from the others.
func (Orientation[S]) Twists(index uint32) ([NumCorners]uint8, error) {
	var out [NumCorners]uint8
	if index >= OrientationSize {
		return out, fmt.Errorf("%w: %d", perm.ErrIndexOutOfRange, index)
	}
	sum := 0
	for slot := NumCorners - 2; slot >= 0; slot-- {
		out[slot] = uint8(index % 3)
		sum += int(out[slot])
		index /= 3
	}
	out[NumCorners-1] = uint8((3 - sum%3) % 3)
	return out, nil
}

// Full folds permutation and orientation into a single index,
// perm*OrientationSize + orientation. The zero value is ready to use.
type Full[S View] struct {
	perm   Permutation[S]
	orient Orientation[S]
}

// NewFull returns the combined corner projection.
func NewFull[S View]() Full[S] {
	return Full[S]{}
}

func (Full[S]) Name() string { return FullName }
func (Full[S]) Size() uint32 { return FullSize }

func (f Full[S]) Index(s S) (uint32, error) {
	p, err := f.perm.Index(s)
	if err != nil {
		return 0, err
	}
	o, err := f.orient.Index(s)
	if err != nil {
		return 0, err
	}
	return p*OrientationSize + o, nil
}
