package core

// ByteGrid3 stores a 3D grid of byte-sized cell values. Cells are laid out in
// z-major, then row-major order so every z plane is contiguous.
type ByteGrid3 struct {
	X, Y, Z int
	data    []uint8
}

// NewByteGrid3 allocates a grid with the given extents. Non-positive extents
// are clamped to 1.
func NewByteGrid3(x, y, z int) *ByteGrid3 {
	if x <= 0 {
		x = 1
	}
	if y <= 0 {
		y = 1
	}
	if z <= 0 {
		z = 1
	}
	return &ByteGrid3{X: x, Y: y, Z: z, data: make([]uint8, x*y*z)}
}

// Size reports the grid extents.
func (g *ByteGrid3) Size() Size { return Size{X: g.X, Y: g.Y, Z: g.Z} }

// Len returns the total number of cells.
func (g *ByteGrid3) Len() int { return len(g.data) }

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid3) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y, z).
func (g *ByteGrid3) Index(x, y, z int) int { return (z*g.Y+y)*g.X + x }

// Coord is the inverse of Index.
func (g *ByteGrid3) Coord(idx int) (x, y, z int) {
	plane := g.X * g.Y
	z = idx / plane
	rem := idx - z*plane
	y = rem / g.X
	x = rem - y*g.X
	return x, y, z
}

// Get returns the value at (x, y, z). Coordinates must be in range.
func (g *ByteGrid3) Get(x, y, z int) uint8 { return g.data[g.Index(x, y, z)] }

// Set stores v at (x, y, z). Coordinates must be in range.
func (g *ByteGrid3) Set(x, y, z int, v uint8) { g.data[g.Index(x, y, z)] = v }

// Wrap applies periodic wrapping to the x and y coordinates. z is closed and
// is never wrapped.
func (g *ByteGrid3) Wrap(x, y int) (int, int) {
	x = (x%g.X + g.X) % g.X
	y = (y%g.Y + g.Y) % g.Y
	return x, y
}

// InBounds reports whether (x, y, z) addresses a cell without wrapping.
func (g *ByteGrid3) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.X && y >= 0 && y < g.Y && z >= 0 && z < g.Z
}

// Fill sets every cell to v.
func (g *ByteGrid3) Fill(v uint8) {
	for i := range g.data {
		g.data[i] = v
	}
}

// CopyFrom overwrites the grid with the contents of src. Both grids must share
// the same extents.
func (g *ByteGrid3) CopyFrom(src *ByteGrid3) {
	copy(g.data, src.data)
}
