package cli

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/pdb"
)

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listMoveStyle = lipgloss.NewStyle().Foreground(colorWhite)
	solvedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	boundStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// faceKeys maps lowercase keys to faces. The uppercase key turns the same
// face counter-clockwise.
var faceKeys = map[rune]int{
	'u': cube.FaceU, 'r': cube.FaceR, 'f': cube.FaceF,
	'd': cube.FaceD, 'l': cube.FaceL, 'b': cube.FaceB,
}

// =============================================================================
// ExploreModel - Interactive heuristic explorer
// =============================================================================

// ExploreModel is the bubbletea model for the explore command. Each key
// turns a face and the view shows the bound every table gives for the
// resulting state.
type ExploreModel struct {
	Tables    []*pdb.Database[cube.State]
	Heuristic pdb.Heuristic[cube.State]

	State cube.State
	Moves []cube.Move

	// Seed is the next scramble seed; it advances on every scramble.
	Seed        uint64
	ScrambleLen int
}

// NewExploreModel creates an explorer at the solved cube.
func NewExploreModel(tables []*pdb.Database[cube.State], seed uint64) ExploreModel {
	parts := make([]pdb.Heuristic[cube.State], len(tables))
	for i, t := range tables {
		parts[i] = t
	}
	return ExploreModel{
		Tables:      tables,
		Heuristic:   pdb.Max(parts...),
		State:       cube.Solved(),
		Seed:        seed,
		ScrambleLen: defaultScrambleLength,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "backspace":
		if n := len(m.Moves); n > 0 {
			m = m.withMoves(m.Moves[:n-1])
		}
		return m, nil
	case "0":
		return m.withMoves(nil), nil
	case "s":
		seq := cube.Scramble(m.Seed, m.ScrambleLen)
		m.Seed++
		return m.withMoves(seq), nil
	}

	if key.Type != tea.KeyRunes || len(key.Runes) != 1 {
		return m, nil
	}
	r := key.Runes[0]
	turns := 1
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
		turns = 3
	}
	face, ok := faceKeys[r]
	if !ok {
		return m, nil
	}
	return m.turn(cube.NewMove(face, turns)), nil
}

// turn appends mv, folding it into the previous move when both turn the
// same face.
func (m ExploreModel) turn(mv cube.Move) ExploreModel {
	moves := append([]cube.Move(nil), m.Moves...)
	if n := len(moves); n > 0 && moves[n-1].Face() == mv.Face() {
		total := (moves[n-1].Turns() + mv.Turns()) % 4
		moves = moves[:n-1]
		if total != 0 {
			moves = append(moves, cube.NewMove(mv.Face(), total))
		}
	} else {
		moves = append(moves, mv)
	}
	return m.withMoves(moves)
}

func (m ExploreModel) withMoves(moves []cube.Move) ExploreModel {
	m.Moves = moves
	m.State = cube.Solved().ApplyAll(moves)
	return m
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("u r f d l b turn  U R F D L B reverse  ⌫ undo  s scramble  0 reset  q quit"))
	b.WriteString("\n\n")

	if len(m.Moves) == 0 {
		b.WriteString(listDimStyle.Render("(solved)"))
	} else {
		b.WriteString(listMoveStyle.Render(cube.FormatMoves(m.Moves)))
		b.WriteString(listDimStyle.Render("  [" + strconv.Itoa(len(m.Moves)) + " moves]"))
	}
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		idx, err := t.IndexFor(m.State)
		index := "-"
		if err == nil {
			index = strconv.FormatUint(uint64(idx), 10)
		}
		rows = append(rows, []string{t.Name(), index, formatDistance(t.Distance(m.State))})
	}
	b.WriteString(table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Table", "Index", "Bound").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render())
	b.WriteString("\n\n")

	if m.State.IsSolved() {
		b.WriteString(solvedStyle.Render("solved"))
	} else {
		b.WriteString("heuristic ")
		d, err := m.Heuristic.Distance(m.State)
		if err != nil {
			b.WriteString(formatDistance(d, err))
		} else {
			b.WriteString(boundStyle.Render(strconv.Itoa(int(d))))
		}
	}
	b.WriteString("\n")

	return b.String()
}
