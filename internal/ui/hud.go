//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status and legend panel to the right of the slice view.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	lines      []Line

	pixel *ebiten.Image
}

// NewHUD constructs a HUD with the given panel width. A non-positive width
// disables it.
func NewHUD(width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update replaces the lines shown on the next Draw.
func (h *HUD) Update(lines []Line) {
	if h == nil {
		return
	}
	h.lines = lines
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		if h.panel != nil {
			h.panel.Deallocate()
		}
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	y := panelPadding + lineBaseline
	for _, l := range h.lines {
		if y > height {
			break
		}
		x := panelPadding
		if l.Swatch != nil {
			h.drawSwatch(x, y-swatchSize, *l.Swatch)
			x += swatchSize + swatchGap
		}
		fg := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if l.Header {
			fg = color.RGBA{R: 160, G: 170, B: 200, A: 255}
		}
		text.Draw(h.panel, l.Text, face, x, y, fg)
		y += lineHeight
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawSwatch(x, y int, c color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(swatchSize, swatchSize)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	h.panel.DrawImage(h.pixel, op)
}

const (
	panelPadding = 12
	lineHeight   = 16
	lineBaseline = 12
	swatchSize   = 10
	swatchGap    = 6
)
