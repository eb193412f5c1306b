package anodize

import (
	"fmt"
	"strconv"
	"strings"

	"anodize-ca/internal/core"
)

// Lattice owns the current and next state buffers. Current is read-only while
// a step is evaluated; next starts each step as a copy of current and receives
// the committed interaction writes.
type Lattice struct {
	cur *core.ByteGrid3
	nxt *core.ByteGrid3

	// claims[i] == epoch marks cell i as written during the current step.
	claims []uint32
	epoch  uint32
}

// NewLattice allocates a lattice filled with Solvent.
func NewLattice(size core.Size) *Lattice {
	l := &Lattice{
		cur: core.NewByteGrid3(size.X, size.Y, size.Z),
		nxt: core.NewByteGrid3(size.X, size.Y, size.Z),
	}
	l.claims = make([]uint32, l.cur.Len())
	l.epoch = 1
	l.cur.Fill(uint8(Solvent))
	l.nxt.Fill(uint8(Solvent))
	return l
}

// Size reports the lattice extents.
func (l *Lattice) Size() core.Size { return l.cur.Size() }

// Grid exposes the current buffer for neighbor queries.
func (l *Lattice) Grid() *core.ByteGrid3 { return l.cur }

// Read returns the current state at (x, y, z).
func (l *Lattice) Read(x, y, z int) CellState { return CellState(l.cur.Get(x, y, z)) }

// WriteNext stores s into the next buffer at (x, y, z).
func (l *Lattice) WriteNext(x, y, z int, s CellState) { l.nxt.Set(x, y, z, uint8(s)) }

// Commit swaps next into current and resynchronizes next so untouched sites
// pass through on the following step. Claims from the finished step expire.
func (l *Lattice) Commit() {
	l.cur, l.nxt = l.nxt, l.cur
	l.nxt.CopyFrom(l.cur)
	l.epoch++
	if l.epoch == 0 {
		clear(l.claims)
		l.epoch = 1
	}
}

// Discard throws away the writes of an unfinished step.
func (l *Lattice) Discard() {
	l.nxt.CopyFrom(l.cur)
	l.epoch++
	if l.epoch == 0 {
		clear(l.claims)
		l.epoch = 1
	}
}

// CountByState tallies the current buffer. A value outside the defined states
// is reported as a CorruptionError; step is only used for the report.
func (l *Lattice) CountByState(step int) (Counts, error) {
	var counts Counts
	for i, v := range l.cur.Cells() {
		if v >= NumStates {
			x, y, z := l.cur.Coord(i)
			return counts, &CorruptionError{X: x, Y: y, Z: z, Step: step, Value: v}
		}
		counts[v]++
	}
	return counts, nil
}

// setCurrent writes s directly into the current buffer and mirrors it into
// next. It is only used while building initial conditions.
func (l *Lattice) setCurrent(x, y, z int, s CellState) {
	l.cur.Set(x, y, z, uint8(s))
	l.nxt.Set(x, y, z, uint8(s))
}

func (l *Lattice) claimed(idx int) bool { return l.claims[idx] == l.epoch }

func (l *Lattice) claim(idx int) { l.claims[idx] = l.epoch }

func (l *Lattice) writeNextIdx(idx int, s CellState) { l.nxt.Cells()[idx] = uint8(s) }

// Axis names the normal of a lattice slice.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: axis %q", ErrInvalidAxis, s)
}

// ParseSlice parses "axis=index". The axis is either the plane normal (x, y,
// z) or the plane name (yz, xz, xy). The index is checked by Slice.
func ParseSlice(s string) (Axis, int, error) {
	name, idx, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("%w: slice %q, want axis=index", ErrInvalidAxis, s)
	}
	var axis Axis
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "yz":
		axis = AxisX
	case "xz":
		axis = AxisY
	case "xy":
		axis = AxisZ
	default:
		a, err := ParseAxis(name)
		if err != nil {
			return 0, 0, err
		}
		axis = a
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: slice index %q", ErrInvalidAxis, idx)
	}
	return axis, i, nil
}

// DefaultSlice is the vertical xz plane through the middle of the lattice.
func DefaultSlice(size core.Size) (Axis, int) {
	return AxisY, size.Y / 2
}

// Plane is a copy of one lattice slice. For AxisZ the plane spans (x, y), for
// AxisY it spans (x, z) and for AxisX it spans (y, z).
type Plane struct {
	Axis  Axis
	Index int
	W, H  int
	Cells []CellState
}

// At returns the state at plane coordinates (u, v).
func (p Plane) At(u, v int) CellState { return p.Cells[v*p.W+u] }

// Volume is a copy of the whole current buffer.
type Volume struct {
	Size  core.Size
	Cells []CellState
}

// At returns the state at (x, y, z).
func (v Volume) At(x, y, z int) CellState {
	return v.Cells[(z*v.Size.Y+y)*v.Size.X+x]
}

// Slice copies the plane normal to axis at index from the current buffer.
func (l *Lattice) Slice(axis Axis, index int) (Plane, error) {
	s := l.Size()
	var w, h, limit int
	switch axis {
	case AxisX:
		w, h, limit = s.Y, s.Z, s.X
	case AxisY:
		w, h, limit = s.X, s.Z, s.Y
	case AxisZ:
		w, h, limit = s.X, s.Y, s.Z
	default:
		return Plane{}, fmt.Errorf("%w: axis %d", ErrInvalidAxis, int(axis))
	}
	if index < 0 || index >= limit {
		return Plane{}, fmt.Errorf("%w: %s index %d outside [0,%d)", ErrInvalidAxis, axis, index, limit)
	}
	p := Plane{Axis: axis, Index: index, W: w, H: h, Cells: make([]CellState, w*h)}
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			var x, y, z int
			switch axis {
			case AxisX:
				x, y, z = index, u, v
			case AxisY:
				x, y, z = u, index, v
			case AxisZ:
				x, y, z = u, v, index
			}
			p.Cells[v*w+u] = CellState(l.cur.Get(x, y, z))
		}
	}
	return p, nil
}

// Volume copies the whole current buffer.
func (l *Lattice) Volume() Volume {
	src := l.cur.Cells()
	out := Volume{Size: l.Size(), Cells: make([]CellState, len(src))}
	for i, v := range src {
		out.Cells[i] = CellState(v)
	}
	return out
}
