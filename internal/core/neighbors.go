package core

// Offset is a relative displacement inside a Moore neighborhood.
type Offset struct {
	DX, DY, DZ int
}

// MooreNeighbors is the number of cells in a 3D Moore neighborhood.
const MooreNeighbors = 26

// MooreOffsets lists the 26 neighborhood offsets in lexicographic (dx, dy, dz)
// order, excluding the origin.
var MooreOffsets = buildMooreOffsets()

func buildMooreOffsets() [MooreNeighbors]Offset {
	var out [MooreNeighbors]Offset
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out[i] = Offset{DX: dx, DY: dy, DZ: dz}
				i++
			}
		}
	}
	return out
}

// Neighbors returns the Moore offsets around (x, y, z). The set does not
// depend on the coordinate; boundary handling happens in Resolve.
func (g *ByteGrid3) Neighbors(x, y, z int) [MooreNeighbors]Offset {
	return MooreOffsets
}

// Resolve applies the boundary policy to (x, y, z) + o. x and y wrap; a
// resolved z outside [0, Z) yields ok=false. ok is also false when wrapping
// folds the neighbor back onto the origin, which happens on axes of extent 1.
func (g *ByteGrid3) Resolve(x, y, z int, o Offset) (nx, ny, nz int, ok bool) {
	nz = z + o.DZ
	if nz < 0 || nz >= g.Z {
		return 0, 0, 0, false
	}
	nx, ny = g.Wrap(x+o.DX, y+o.DY)
	if nx == x && ny == y && nz == z {
		return 0, 0, 0, false
	}
	return nx, ny, nz, true
}

// Interior reports whether a cell at height z may initiate an interaction.
// The two closed z faces never do.
func (g *ByteGrid3) Interior(z int) bool {
	return z > 0 && z < g.Z-1
}

// CountNeighbors counts the cells of the Moore neighborhood of (x, y, z) for
// which match returns true. Out-of-range z offsets are skipped. On small
// periodic axes a cell may be counted more than once, mirroring the offset
// enumeration.
func (g *ByteGrid3) CountNeighbors(x, y, z int, match func(uint8) bool) int {
	n := 0
	for _, o := range MooreOffsets {
		nz := z + o.DZ
		if nz < 0 || nz >= g.Z {
			continue
		}
		nx, ny := g.Wrap(x+o.DX, y+o.DY)
		if match(g.data[g.Index(nx, ny, nz)]) {
			n++
		}
	}
	return n
}
