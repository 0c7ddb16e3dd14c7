package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolved(t *testing.T) {
	s := Solved()
	assert.True(t, s.IsSolved())
	require.NoError(t, s.Validate())
	for slot := 0; slot < NumCorners; slot++ {
		piece, twist := s.Corner(slot)
		assert.Equal(t, uint8(slot), piece)
		assert.Zero(t, twist)
	}
}

func TestQuarterTurnOrder(t *testing.T) {
	for face := 0; face < 6; face++ {
		s := Solved()
		for i := 0; i < 4; i++ {
			s = s.Apply(NewMove(face, 1))
			if i < 3 {
				assert.False(t, s.IsSolved(), "face %d after %d turns", face, i+1)
			}
		}
		assert.True(t, s.IsSolved(), "face %d: four quarter turns should be identity", face)
	}
}

func TestInverse(t *testing.T) {
	for m := Move(0); m < NumMoves; m++ {
		s := Solved().Apply(m).Apply(m.Inverse())
		assert.True(t, s.IsSolved(), "%s then %s", m, m.Inverse())
	}
}

func TestMovesPreserveValidity(t *testing.T) {
	s := Solved().ApplyAll(Scramble(7, 200))
	require.NoError(t, s.Validate())
}

func TestSexyMoveOrder(t *testing.T) {
	// (R U R' U') has order 6.
	seq, err := ParseMoves("R U R' U'")
	require.NoError(t, err)
	s := Solved()
	for i := 0; i < 6; i++ {
		s = s.ApplyAll(seq)
	}
	assert.True(t, s.IsSolved())
}

func TestUDoesNotTwist(t *testing.T) {
	s := Solved().Apply(NewMove(FaceU, 1))
	assert.Equal(t, [8]uint8{}, s.Orient)
	assert.Equal(t, [8]uint8{UBR, URF, UFL, ULB, DFR, DLF, DBL, DRB}, s.Perm)
}

func TestValidate(t *testing.T) {
	s := Solved()
	s.Orient[URF] = 1
	assert.ErrorIs(t, s.Validate(), ErrInvalidState)

	s.Orient[UFL] = 2
	assert.NoError(t, s.Validate())

	s = Solved()
	s.Perm[URF] = UFL
	assert.ErrorIs(t, s.Validate(), ErrInvalidState)

	s = Solved()
	s.Orient[URF] = 3
	assert.ErrorIs(t, s.Validate(), ErrInvalidState)
}

func TestParseState(t *testing.T) {
	s := Solved().ApplyAll([]Move{NewMove(FaceR, 1), NewMove(FaceU, 1), NewMove(FaceF, 3)})
	got, err := ParseState(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, got)

	// slots may come in any order
	got, err = ParseState("dRB:DRB+0 URF:URF+0 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0")
	require.NoError(t, err)
	assert.True(t, got.IsSolved())

	for _, bad := range []string{
		"",
		"URF:URF+0",
		"URF:URF+1 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
		"URF:UFL+0 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
		"URF:URF+0 URF:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
		"URF:XYZ+0 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
		"URF:URF+3 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
		"URF:URF0 UFL:UFL+0 ULB:ULB+0 UBR:UBR+0 DFR:DFR+0 DLF:DLF+0 DBL:DBL+0 DRB:DRB+0",
	} {
		_, err := ParseState(bad)
		assert.ErrorIs(t, err, ErrInvalidState, "input %q", bad)
	}
}

func TestStateString(t *testing.T) {
	assert.Contains(t, Solved().String(), "URF:URF+0")
	assert.Contains(t, Solved().String(), "DRB:DRB+0")
}
