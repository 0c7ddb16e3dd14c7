// Package perm ranks and unranks permutations and enumerates them for testing
// and debugging.
//
// # Overview
//
// A pattern database stores one value per arrangement of a tracked set of
// puzzle pieces. To address those values with a flat array, every arrangement
// needs a dense integer in [0, N!). This package provides that mapping:
//
//   - [Indexer]: Lehmer-code rank/unrank, configured once per tuple length
//   - [Generate]: Heap's algorithm for exhaustive enumeration
//   - [Factorial] and [Seq]: helpers for sizing and initializing permutations
//
// # Ranking
//
// For each position i of the tuple, the i-th digit of the rank is the number
// of symbols to the right of position i that are smaller than the symbol at
// position i. Read as a mixed-radix number with place values (N-1)!, (N-2)!,
// ..., 0!, the digits give an index in [0, N!):
//
//	ix, _ := perm.NewIndexer(4, 4)
//	ix.Rank([]int{0, 1, 2, 3}) // 0
//	ix.Rank([]int{3, 2, 1, 0}) // 23
//
// Only the relative order of the symbols matters. When the alphabet is larger
// than the tuple, {7, 2, 5} ranks the same as {2, 0, 1}. [Indexer.Unrank]
// returns the arrangement over the symbols 0..N-1.
//
// The indexer keeps a precomputed factorial table and is otherwise immutable,
// so a single instance can be shared by any number of goroutines.
//
// # Errors
//
// Tuples with repeated symbols, symbols outside the alphabet or the wrong
// length fail with [ErrInvalidPermutation]. Indices outside [0, N!) fail with
// [ErrIndexOutOfRange].
package perm
