package anodize

import "fmt"

// CellState enumerates the lattice site values.
type CellState uint8

const (
	Metal CellState = iota
	Oxide
	ElectricField
	Anion
	Solvent
)

// NumStates is the number of valid cell states.
const NumStates = 5

var stateNames = [NumStates]string{"metal", "oxide", "field", "anion", "solvent"}

// States lists every valid state in storage order.
func States() [NumStates]CellState {
	return [NumStates]CellState{Metal, Oxide, ElectricField, Anion, Solvent}
}

// Valid reports whether s is one of the five defined states.
func (s CellState) Valid() bool { return s < NumStates }

func (s CellState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", uint8(s))
	}
	return stateNames[s]
}

// OxideLike reports whether s counts toward a reorganization neighborhood.
func (s CellState) OxideLike() bool {
	return s == Oxide || s == ElectricField || s == Anion
}

// Counts holds one tally per state, indexed by CellState.
type Counts [NumStates]int

// Total returns the sum over all states.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Of returns the tally for s.
func (c Counts) Of(s CellState) int {
	if !s.Valid() {
		return 0
	}
	return c[s]
}
