package render

import "image/color"

// fillPaletteRGBA converts state bytes of a w-wide plane into RGBA pixels
// using a palette. Values past the end of the palette take its last color.
// With flipY the first source row lands at the bottom of the image so the
// z axis of vertical slices points up. An empty palette clears the buffer
// to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, w int, palette []color.RGBA, flipY bool) {
	if len(palette) == 0 || w <= 0 {
		clear(buf[:len(cells)*4])
		return
	}
	h := len(cells) / w
	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		dst := i
		if flipY {
			x, y := i%w, i/w
			dst = (h-1-y)*w + x
		}
		base := dst * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
