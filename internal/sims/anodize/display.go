package anodize

import "image/color"

var statePalette = []color.RGBA{
	Metal:         {R: 128, G: 128, B: 128, A: 255},
	Oxide:         {R: 200, G: 40, B: 40, A: 255},
	ElectricField: {R: 50, G: 90, B: 220, A: 255},
	Anion:         {R: 60, G: 170, B: 80, A: 255},
	Solvent:       {R: 245, G: 245, B: 245, A: 255},
	// Anything past the defined states renders as magenta.
	NumStates: {R: 255, G: 0, B: 255, A: 255},
}

var stateGlyphs = [NumStates]byte{'M', 'O', 'E', 'a', '.'}

// Palette exposes the color palette used for rendering lattice slices.
func (s *Simulation) Palette() []color.RGBA {
	return statePalette
}

// Glyph returns a single character for text renderings of a slice.
func (s CellState) Glyph() byte {
	if !s.Valid() {
		return '?'
	}
	return stateGlyphs[s]
}

// Rows renders the plane as text, one row per v coordinate, highest v first
// so z grows upwards for vertical slices.
func (p Plane) Rows() []string {
	rows := make([]string, 0, p.H)
	buf := make([]byte, p.W)
	for v := p.H - 1; v >= 0; v-- {
		for u := 0; u < p.W; u++ {
			buf[u] = p.At(u, v).Glyph()
		}
		rows = append(rows, string(buf))
	}
	return rows
}
