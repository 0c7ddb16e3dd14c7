// Package cube models the corner cubies of a 3×3×3 Rubik's Cube.
//
// Only corners are tracked: eight slots, each holding one of eight pieces
// with a twist of 0, 1 or 2. That is the whole state of a 2×2×2 cube and the
// part of a 3×3×3 cube the corner pattern databases look at.
//
// Slots and pieces use the conventional numbering
//
//	URF=0 UFL=1 ULB=2 UBR=3 DFR=4 DLF=5 DBL=6 DRB=7
//
// and moves are the 18 face turns in Singmaster notation (U, U2, U', R, ...).
// A move is applied by cubie multiplication: the piece that ends up in slot i
// is the piece that was in slot move.Perm[i], with the twists added mod 3.
//
// [Puzzle] exposes the model through the pdb.Puzzle contract:
//
//	var p cube.Puzzle
//	s := p.Solved()
//	moves, _ := cube.ParseMoves("R U R' U'")
//	s = s.ApplyAll(moves)
package cube
