package cube

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Faces in move order.
const (
	FaceU = iota
	FaceR
	FaceF
	FaceD
	FaceL
	FaceB
)

// NumMoves is the number of face turns (6 faces × 3 amounts).
const NumMoves = 18

// ErrInvalidMove is returned when a move token cannot be parsed.
var ErrInvalidMove = errors.New("cube: invalid move")

// Move is a face turn. Move = face*3 + (quarterTurns-1).
type Move uint8

// NewMove returns the move turning face by quarterTurns (1, 2 or 3) clockwise.
func NewMove(face, quarterTurns int) Move {
	return Move(face*3 + quarterTurns - 1)
}

// Face returns the face turned by m.
func (m Move) Face() int { return int(m) / 3 }

// Turns returns the number of clockwise quarter turns (1, 2 or 3).
func (m Move) Turns() int { return int(m)%3 + 1 }

// Inverse returns the move that undoes m.
func (m Move) Inverse() Move { return NewMove(m.Face(), 4-m.Turns()) }

const faceLetters = "URFDLB"

// String returns the Singmaster notation for m.
func (m Move) String() string {
	if int(m) >= NumMoves {
		return fmt.Sprintf("Move(%d)", uint8(m))
	}
	suffix := [...]string{"", "2", "'"}[m.Turns()-1]
	return string(faceLetters[m.Face()]) + suffix
}

// ParseMove parses a single token such as "R", "R2" or "R'".
func ParseMove(tok string) (Move, error) {
	if tok == "" {
		return 0, fmt.Errorf("%w: empty token", ErrInvalidMove)
	}
	face := strings.IndexByte(faceLetters, tok[0])
	if face < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, tok)
	}
	switch tok[1:] {
	case "":
		return NewMove(face, 1), nil
	case "2", "2'":
		return NewMove(face, 2), nil
	case "'":
		return NewMove(face, 3), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMove, tok)
}

// ParseMoves parses a whitespace- or comma-separated move sequence.
func ParseMoves(s string) ([]Move, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	moves := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// FormatMoves renders moves in Singmaster notation separated by spaces.
func FormatMoves(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// Scramble returns n random moves from a generator seeded with seed. Two
// consecutive moves never turn the same face.
func Scramble(seed uint64, n int) []Move {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	moves := make([]Move, 0, n)
	last := -1
	for len(moves) < n {
		m := Move(rng.IntN(NumMoves))
		if m.Face() == last {
			continue
		}
		moves = append(moves, m)
		last = m.Face()
	}
	return moves
}

// quarter turns, clockwise, as cubie permutations with twists.
var quarterTurns = [6]State{
	FaceU: {
		Perm: [8]uint8{UBR, URF, UFL, ULB, DFR, DLF, DBL, DRB},
	},
	FaceR: {
		Perm:   [8]uint8{DFR, UFL, ULB, URF, DRB, DLF, DBL, UBR},
		Orient: [8]uint8{2, 0, 0, 1, 1, 0, 0, 2},
	},
	FaceF: {
		Perm:   [8]uint8{UFL, DLF, ULB, UBR, URF, DFR, DBL, DRB},
		Orient: [8]uint8{1, 2, 0, 0, 2, 1, 0, 0},
	},
	FaceD: {
		Perm: [8]uint8{URF, UFL, ULB, UBR, DLF, DBL, DRB, DFR},
	},
	FaceL: {
		Perm:   [8]uint8{URF, ULB, DBL, UBR, DFR, UFL, DLF, DRB},
		Orient: [8]uint8{0, 1, 2, 0, 0, 2, 1, 0},
	},
	FaceB: {
		Perm:   [8]uint8{URF, UFL, UBR, DRB, DFR, DLF, ULB, DBL},
		Orient: [8]uint8{0, 0, 1, 2, 0, 0, 2, 1},
	},
}

var moveTable = buildMoveTable()

func buildMoveTable() [NumMoves]State {
	var table [NumMoves]State
	for face, q := range quarterTurns {
		s := Solved()
		for turns := 1; turns <= 3; turns++ {
			s = s.Multiply(q)
			table[NewMove(face, turns)] = s
		}
	}
	return table
}
