package pdb

import "fmt"

// Unknown marks an entry the build has not reached.
const Unknown uint8 = 0xFF

// MaxDistance is the largest distance a table can hold.
const MaxDistance = Unknown - 1

// State is the lifecycle stage of a Table.
type State uint8

const (
	// StateEmpty: every entry is Unknown and no build has run.
	StateEmpty State = iota
	// StateBuilding: a build is filling the table.
	StateBuilding
	// StateComplete: the build finished; every reachable index holds its distance.
	StateComplete
	// StateInterrupted: the build was cancelled; entries are partial.
	StateInterrupted
	// StateSeeded: every entry holds a caller-supplied constant.
	StateSeeded
)

var stateNames = [...]string{"empty", "building", "complete", "interrupted", "seeded"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Usable reports whether distances may be read from a table in this state.
func (s State) Usable() bool {
	return s == StateComplete || s == StateSeeded
}

// Table is a dense array of one distance per index.
//
// A Table is written only while it is being built and is read-only once its
// state is Complete or Seeded; concurrent readers need no locking.
type Table struct {
	name  string
	data  []uint8
	state State
}

// NewTable returns an empty table of size entries, all Unknown.
func NewTable(name string, size uint32) *Table {
	data := make([]uint8, size)
	for i := range data {
		data[i] = Unknown
	}
	return &Table{name: name, data: data, state: StateEmpty}
}

// NewSeededTable returns a table whose entries all hold v.
func NewSeededTable(name string, size uint32, v uint8) *Table {
	data := make([]uint8, size)
	for i := range data {
		data[i] = v
	}
	return &Table{name: name, data: data, state: StateSeeded}
}

// Name returns the encoding name the table was built for.
func (t *Table) Name() string { return t.name }

// Size returns the number of entries.
func (t *Table) Size() uint32 { return uint32(len(t.data)) }

// State returns the lifecycle stage.
func (t *Table) State() State { return t.state }

// At returns the raw entry at index, which may be Unknown.
func (t *Table) At(index uint32) uint8 { return t.data[index] }

// Bytes returns the entries in index order. The slice aliases the table and
// must not be modified.
func (t *Table) Bytes() []byte { return t.data }

// Filled returns the number of entries that are not Unknown.
func (t *Table) Filled() int {
	n := 0
	for _, d := range t.data {
		if d != Unknown {
			n++
		}
	}
	return n
}

// Histogram returns the number of entries at each distance, indexed by
// distance. Unknown entries are not counted.
func (t *Table) Histogram() []int {
	var counts [256]int
	for _, d := range t.data {
		counts[d]++
	}
	last := -1
	for d := int(MaxDistance); d >= 0; d-- {
		if counts[d] > 0 {
			last = d
			break
		}
	}
	return append([]int(nil), counts[:last+1]...)
}

// MaxDistance returns the largest populated distance. ok is false when no
// entry is populated.
func (t *Table) MaxDistance() (d uint8, ok bool) {
	h := t.Histogram()
	if len(h) == 0 {
		return 0, false
	}
	return uint8(len(h) - 1), true
}

// Equal reports whether two tables hold the same name, state and entries.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.name == o.name && t.state == o.state && string(t.data) == string(o.data)
}
