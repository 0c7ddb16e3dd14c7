package perm

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxAlphabet is the largest alphabet an Indexer accepts. Symbols are tracked
// in a single 64-bit mask while ranking.
const MaxAlphabet = 64

// Sentinel errors for ranking operations.
var (
	// ErrInvalidPermutation is returned when a tuple has the wrong length,
	// repeats a symbol, or uses a symbol outside the alphabet.
	ErrInvalidPermutation = errors.New("perm: invalid permutation")

	// ErrIndexOutOfRange is returned when an index is not in [0, N!).
	ErrIndexOutOfRange = errors.New("perm: index out of range")

	// ErrInvalidSize is returned by NewIndexer for unsupported dimensions.
	ErrInvalidSize = errors.New("perm: invalid indexer size")
)

// Indexer maps arrangements of n distinct symbols to dense integers in
// [0, n!) and back.
//
// An Indexer is immutable after NewIndexer returns and is safe for
// concurrent use.
type Indexer struct {
	n        int
	alphabet int
	size     uint64
	weights  []uint64 // weights[i] = (n-1-i)!
}

// NewIndexer returns an indexer for tuples of length n drawn from the
// symbols [0, alphabet).
//
// n must be in [0, MaxN] and alphabet in [n, MaxAlphabet].
func NewIndexer(n, alphabet int) (*Indexer, error) {
	if n < 0 || n > MaxN {
		return nil, fmt.Errorf("%w: n=%d (want 0..%d)", ErrInvalidSize, n, MaxN)
	}
	if alphabet < n || alphabet > MaxAlphabet {
		return nil, fmt.Errorf("%w: alphabet=%d (want %d..%d)", ErrInvalidSize, alphabet, n, MaxAlphabet)
	}
	weights := make([]uint64, n)
	for i := range weights {
		weights[i] = Factorial(n - 1 - i)
	}
	return &Indexer{
		n:        n,
		alphabet: alphabet,
		size:     Factorial(n),
		weights:  weights,
	}, nil
}

// MustIndexer is like NewIndexer but panics on invalid dimensions. It is
// intended for package-level variables with constant arguments.
func MustIndexer(n, alphabet int) *Indexer {
	ix, err := NewIndexer(n, alphabet)
	if err != nil {
		panic(err)
	}
	return ix
}

// N returns the tuple length.
func (ix *Indexer) N() int { return ix.n }

// Alphabet returns the number of symbols tuples may draw from.
func (ix *Indexer) Alphabet() int { return ix.alphabet }

// Size returns n!, the number of distinct indices.
func (ix *Indexer) Size() uint64 { return ix.size }

// Rank returns the Lehmer-code index of tuple.
//
// Digit i counts the symbols after position i that are smaller than
// tuple[i]; the index is the sum of digit i × (n-1-i)!. Only the relative
// order of the symbols affects the result.
func (ix *Indexer) Rank(tuple []int) (uint64, error) {
	if len(tuple) != ix.n {
		return 0, fmt.Errorf("%w: got %d symbols, want %d", ErrInvalidPermutation, len(tuple), ix.n)
	}

	var present uint64
	for i, s := range tuple {
		if s < 0 || s >= ix.alphabet {
			return 0, fmt.Errorf("%w: symbol %d at position %d outside alphabet [0,%d)", ErrInvalidPermutation, s, i, ix.alphabet)
		}
		bit := uint64(1) << uint(s)
		if present&bit != 0 {
			return 0, fmt.Errorf("%w: symbol %d repeated at position %d", ErrInvalidPermutation, s, i)
		}
		present |= bit
	}

	var index uint64
	remaining := present
	for i, s := range tuple {
		bit := uint64(1) << uint(s)
		smaller := bits.OnesCount64(remaining & (bit - 1))
		index += uint64(smaller) * ix.weights[i]
		remaining &^= bit
	}
	return index, nil
}

// Unrank returns the arrangement of the symbols 0..n-1 whose rank is index.
func (ix *Indexer) Unrank(index uint64) ([]int, error) {
	dst := make([]int, ix.n)
	if err := ix.UnrankInto(index, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// UnrankInto writes the arrangement for index into dst, which must have
// length n. It does not allocate.
func (ix *Indexer) UnrankInto(index uint64, dst []int) error {
	if index >= ix.size {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, ix.size)
	}
	if len(dst) != ix.n {
		return fmt.Errorf("%w: destination has %d slots, want %d", ErrInvalidPermutation, len(dst), ix.n)
	}

	unused := uint32(1)<<uint(ix.n) - 1
	for i := range dst {
		w := ix.weights[i]
		digit := int(index / w)
		index %= w
		dst[i] = nthSetBit(unused, digit)
		unused &^= 1 << uint(dst[i])
	}
	return nil
}

// nthSetBit returns the position of the k-th (0-based) set bit of mask.
func nthSetBit(mask uint32, k int) int {
	for ; k > 0; k-- {
		mask &= mask - 1
	}
	return bits.TrailingZeros32(mask)
}
