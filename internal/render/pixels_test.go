package render

import (
	"image/color"
	"slices"
	"testing"
)

var testPalette = []color.RGBA{
	{R: 1, G: 2, B: 3, A: 255},
	{R: 10, G: 20, B: 30, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
}

func TestFillPaletteRGBA(t *testing.T) {
	cells := []uint8{0, 1, 2, 9}
	buf := make([]byte, len(cells)*4)
	fillPaletteRGBA(buf, cells, 2, testPalette, false)

	want := []byte{
		1, 2, 3, 255,
		10, 20, 30, 255,
		255, 0, 255, 255,
		255, 0, 255, 255,
	}
	if !slices.Equal(buf, want) {
		t.Fatalf("unexpected pixels: got %v want %v", buf, want)
	}
}

func TestFillPaletteRGBAFlip(t *testing.T) {
	// Two rows of width 2: row 0 is state 0, row 1 is state 1.
	cells := []uint8{0, 0, 1, 1}
	buf := make([]byte, len(cells)*4)
	fillPaletteRGBA(buf, cells, 2, testPalette, true)

	if buf[0] != 10 || buf[4] != 10 {
		t.Fatalf("expected row 1 on top after flip, got %v", buf[:8])
	}
	if buf[8] != 1 || buf[12] != 1 {
		t.Fatalf("expected row 0 at the bottom after flip, got %v", buf[8:])
	}
}

func TestFillPaletteRGBAEmptyPalette(t *testing.T) {
	buf := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	fillPaletteRGBA(buf, []uint8{1, 2}, 2, nil, false)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not cleared: %d", i, b)
		}
	}
}
