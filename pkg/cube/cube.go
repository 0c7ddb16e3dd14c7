package cube

import (
	"errors"
	"fmt"
	"strings"
)

// Corner slots in canonical order.
const (
	URF = iota
	UFL
	ULB
	UBR
	DFR
	DLF
	DBL
	DRB
)

// NumCorners is the number of corner slots.
const NumCorners = 8

// ErrInvalidState is returned by State.Validate for impossible cubes.
var ErrInvalidState = errors.New("cube: invalid state")

var cornerNames = [NumCorners]string{"URF", "UFL", "ULB", "UBR", "DFR", "DLF", "DBL", "DRB"}

// CornerName returns the conventional name of a slot or piece.
func CornerName(i int) string {
	if i < 0 || i >= NumCorners {
		return fmt.Sprintf("corner(%d)", i)
	}
	return cornerNames[i]
}

// State is a corner configuration. Perm[i] is the piece in slot i and
// Orient[i] its twist. The zero value is not solved; use Solved.
type State struct {
	Perm   [NumCorners]uint8
	Orient [NumCorners]uint8
}

// Solved returns the solved corner configuration.
func Solved() State {
	var s State
	for i := range s.Perm {
		s.Perm[i] = uint8(i)
	}
	return s
}

// Corner returns the piece and twist in slot.
func (s State) Corner(slot int) (piece, orientation uint8) {
	return s.Perm[slot], s.Orient[slot]
}

// IsSolved reports whether every corner is home and untwisted.
func (s State) IsSolved() bool {
	return s == Solved()
}

// Multiply returns the cubie product s·m, i.e. s followed by m.
func (s State) Multiply(m State) State {
	var r State
	for i := range r.Perm {
		r.Perm[i] = s.Perm[m.Perm[i]]
		r.Orient[i] = (s.Orient[m.Perm[i]] + m.Orient[i]) % 3
	}
	return r
}

// Apply returns the state after performing move.
func (s State) Apply(m Move) State {
	return s.Multiply(moveTable[m])
}

// ApplyAll applies moves in order.
func (s State) ApplyAll(moves []Move) State {
	for _, m := range moves {
		s = s.Apply(m)
	}
	return s
}

// Validate checks that Perm is a permutation of the eight pieces and that
// the twists sum to 0 mod 3.
func (s State) Validate() error {
	var seen [NumCorners]bool
	twist := 0
	for i := range s.Perm {
		p := s.Perm[i]
		if int(p) >= NumCorners || seen[p] {
			return fmt.Errorf("%w: slot %s holds piece %d", ErrInvalidState, CornerName(i), p)
		}
		seen[p] = true
		if s.Orient[i] > 2 {
			return fmt.Errorf("%w: slot %s has twist %d", ErrInvalidState, CornerName(i), s.Orient[i])
		}
		twist += int(s.Orient[i])
	}
	if twist%3 != 0 {
		return fmt.Errorf("%w: total twist %d is not a multiple of 3", ErrInvalidState, twist)
	}
	return nil
}

// ParseState parses the format produced by String: one slot:piece+twist
// token per slot, in any order. The result is validated.
func ParseState(text string) (State, error) {
	var s State
	fields := strings.Fields(text)
	if len(fields) != NumCorners {
		return State{}, fmt.Errorf("%w: want %d corners, got %d", ErrInvalidState, NumCorners, len(fields))
	}
	var set [NumCorners]bool
	for _, f := range fields {
		slotName, rest, ok1 := strings.Cut(f, ":")
		pieceName, twist, ok2 := strings.Cut(rest, "+")
		if !ok1 || !ok2 || len(twist) != 1 || twist[0] < '0' || twist[0] > '9' {
			return State{}, fmt.Errorf("%w: malformed corner %q", ErrInvalidState, f)
		}
		slot, piece := cornerIndex(slotName), cornerIndex(pieceName)
		if slot < 0 || piece < 0 {
			return State{}, fmt.Errorf("%w: unknown corner in %q", ErrInvalidState, f)
		}
		if set[slot] {
			return State{}, fmt.Errorf("%w: slot %s given twice", ErrInvalidState, slotName)
		}
		set[slot] = true
		s.Perm[slot] = uint8(piece)
		s.Orient[slot] = twist[0] - '0'
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

func cornerIndex(name string) int {
	for i, n := range cornerNames {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// String renders the state as slot:piece+twist pairs, e.g. "URF:URF+0 ...".
func (s State) String() string {
	var b strings.Builder
	for i := range s.Perm {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%s+%d", CornerName(i), CornerName(int(s.Perm[i])), s.Orient[i])
	}
	return b.String()
}
