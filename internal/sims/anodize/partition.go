package anodize

import "anodize-ca/internal/core"

// schedule groups the interior sites into color classes. Two sites of one
// class are at least three cells apart along some axis (periodic distance on
// x and y), so their closed Moore neighborhoods never overlap and a class can
// be evaluated fully in parallel.
type schedule struct {
	classes [][]int32
}

func buildSchedule(g *core.ByteGrid3) schedule {
	cx, nx := periodicColors(g.X)
	cy, ny := periodicColors(g.Y)
	buckets := make([][]int32, nx*ny*3)
	for z := 0; z < g.Z; z++ {
		if !g.Interior(z) {
			continue
		}
		for y := 0; y < g.Y; y++ {
			for x := 0; x < g.X; x++ {
				key := (cx[x]*ny+cy[y])*3 + z%3
				buckets[key] = append(buckets[key], int32(g.Index(x, y, z)))
			}
		}
	}
	var s schedule
	for _, b := range buckets {
		if len(b) > 0 {
			s.classes = append(s.classes, b)
		}
	}
	return s
}

// periodicColors colors the coordinates of a periodic axis of extent n so
// that equal colors are at least three apart around the ring. Coordinates on
// the largest multiple of three cycle through 0..2; the one or two leftover
// coordinates (or every coordinate when n <= 3) get colors of their own.
func periodicColors(n int) ([]int, int) {
	colors := make([]int, n)
	if n <= 3 {
		for i := range colors {
			colors[i] = i
		}
		return colors, n
	}
	full := n - n%3
	for i := 0; i < full; i++ {
		colors[i] = i % 3
	}
	for i := full; i < n; i++ {
		colors[i] = 3 + i - full
	}
	return colors, 3 + n%3
}

// sites returns the number of scheduled sites.
func (s schedule) sites() int {
	n := 0
	for _, c := range s.classes {
		n += len(c)
	}
	return n
}
