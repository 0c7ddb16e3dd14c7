package pdb

import (
	"errors"
	"fmt"

	"github.com/matzehuels/patterndb/pkg/perm"
)

// row is a 4-element arrangement used as a small, fully enumerable puzzle.
type row [4]int

// swapPuzzle moves by swapping adjacent positions. The distance of a row is
// its inversion count.
type swapPuzzle struct{}

func (swapPuzzle) Solved() row            { return row{0, 1, 2, 3} }
func (swapPuzzle) MoveCount() int         { return 3 }
func (swapPuzzle) MoveName(m int) string  { return fmt.Sprintf("s%d", m) }
func (swapPuzzle) Apply(s row, m int) row { s[m], s[m+1] = s[m+1], s[m]; return s }

// cyclePuzzle only rotates triples, so it never reaches an odd arrangement.
type cyclePuzzle struct{}

func (cyclePuzzle) Solved() row           { return row{0, 1, 2, 3} }
func (cyclePuzzle) MoveCount() int        { return 2 }
func (cyclePuzzle) MoveName(m int) string { return fmt.Sprintf("c%d", m) }
func (cyclePuzzle) Apply(s row, m int) row {
	s[m], s[m+1], s[m+2] = s[m+1], s[m+2], s[m]
	return s
}

// rankProj indexes the whole row.
type rankProj struct{ ix *perm.Indexer }

func newRankProj() rankProj { return rankProj{ix: perm.MustIndexer(4, 4)} }

func (rankProj) Name() string { return "row-perm" }
func (rankProj) Size() uint32 { return 24 }
func (p rankProj) Index(s row) (uint32, error) {
	r, err := p.ix.Rank(s[:])
	return uint32(r), err
}

// zeroProj tracks only where element 0 sits.
type zeroProj struct{}

func (zeroProj) Name() string { return "row-zero" }
func (zeroProj) Size() uint32 { return 4 }
func (zeroProj) Index(s row) (uint32, error) {
	for i, v := range s {
		if v == 0 {
			return uint32(i), nil
		}
	}
	return 0, errors.New("no zero")
}

// failProj fails for any row that is not solved.
type failProj struct{ rankProj }

var errBoom = errors.New("boom")

func (failProj) Name() string { return "row-fail" }
func (p failProj) Index(s row) (uint32, error) {
	if s != (row{0, 1, 2, 3}) {
		return 0, errBoom
	}
	return p.rankProj.Index(s)
}

// wideProj claims a larger index space than it produces.
type wideProj struct{ rankProj }

func (wideProj) Name() string { return "row-wide" }
func (wideProj) Size() uint32 { return 30 }

// badProj produces an index past its size.
type badProj struct{}

func (badProj) Name() string              { return "row-bad" }
func (badProj) Size() uint32              { return 4 }
func (badProj) Index(row) (uint32, error) { return 7, nil }

// linePuzzle walks a path of n nodes; its diameter is n-1.
type linePuzzle struct{ n int }

func (linePuzzle) Solved() int              { return 0 }
func (linePuzzle) MoveCount() int           { return 1 }
func (linePuzzle) MoveName(int) string      { return "+" }
func (p linePuzzle) Apply(s int, _ int) int { return min(s+1, p.n-1) }

type lineProj struct{ n int }

func (lineProj) Name() string                { return "line" }
func (p lineProj) Size() uint32              { return uint32(p.n) }
func (lineProj) Index(s int) (uint32, error) { return uint32(s), nil }

func inversions(s row) int {
	n := 0
	for i := range s {
		for j := i + 1; j < len(s); j++ {
			if s[i] > s[j] {
				n++
			}
		}
	}
	return n
}

func allRows() []row {
	var out []row
	for _, p := range perm.Generate(4, -1) {
		out = append(out, row{p[0], p[1], p[2], p[3]})
	}
	return out
}

// fullDistances runs an independent breadth-first search over complete rows.
func fullDistances[P Puzzle[row]](p P) map[row]int {
	dist := map[row]int{p.Solved(): 0}
	queue := []row{p.Solved()}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for m := 0; m < p.MoveCount(); m++ {
			t := p.Apply(s, m)
			if _, ok := dist[t]; !ok {
				dist[t] = dist[s] + 1
				queue = append(queue, t)
			}
		}
	}
	return dist
}
