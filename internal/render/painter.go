//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// SlicePainter uploads lattice slices into a single RGBA image. The image is
// reallocated when the slice dimensions change.
type SlicePainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewSlicePainter allocates a painter for a w*h slice.
func NewSlicePainter(w, h int) *SlicePainter {
	sp := &SlicePainter{}
	sp.resize(w, h)
	return sp
}

func (sp *SlicePainter) resize(w, h int) {
	if sp.img != nil && sp.w == w && sp.h == h {
		return
	}
	if sp.img != nil {
		sp.img.Deallocate()
	}
	sp.w, sp.h = w, h
	sp.buf = make([]byte, 4*w*h)
	sp.img = ebiten.NewImage(w, h)
}

// Blit colors the slice cells with palette and draws them scaled at the
// origin of dst. Vertical slices are drawn with z pointing up.
func (sp *SlicePainter) Blit(dst *ebiten.Image, cells []uint8, w, h int, palette []color.RGBA, flipY bool, scale int) {
	if w <= 0 || h <= 0 || len(cells) != w*h {
		return
	}
	sp.resize(w, h)
	fillPaletteRGBA(sp.buf, cells, w, palette, flipY)
	sp.img.WritePixels(sp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(sp.img, op)
}

// Size returns the dimensions of the underlying image.
func (sp *SlicePainter) Size() (int, int) { return sp.w, sp.h }
