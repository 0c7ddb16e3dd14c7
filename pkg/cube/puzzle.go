package cube

// Puzzle adapts the corner model to the pdb.Puzzle contract. Moves are
// identified by their Move value, 0..NumMoves-1.
type Puzzle struct{}

// Solved returns the solved state.
func (Puzzle) Solved() State { return Solved() }

// MoveCount returns the number of face turns.
func (Puzzle) MoveCount() int { return NumMoves }

// Apply performs move on s.
func (Puzzle) Apply(s State, move int) State { return s.Apply(Move(move)) }

// MoveName returns the Singmaster notation for move.
func (Puzzle) MoveName(move int) string { return Move(move).String() }
