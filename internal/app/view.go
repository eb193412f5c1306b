package app

import (
	"fmt"

	"anodize-ca/internal/core"
	"anodize-ca/internal/sims/anodize"
)

// View selects which plane of the lattice is shown.
type View struct {
	size  core.Size
	axis  anodize.Axis
	index int
}

// NewView parses spec (see anodize.ParseSlice). An empty spec selects the
// middle xz plane.
func NewView(size core.Size, spec string) (View, error) {
	v := View{size: size}
	if spec == "" {
		v.axis, v.index = anodize.DefaultSlice(size)
		return v, nil
	}
	axis, index, err := anodize.ParseSlice(spec)
	if err != nil {
		return View{}, err
	}
	v.axis = axis
	if index < 0 || index >= v.extent() {
		return View{}, fmt.Errorf("%w: %s index %d outside [0,%d)", anodize.ErrInvalidAxis, axis, index, v.extent())
	}
	v.index = index
	return v, nil
}

// Axis returns the axis normal to the shown plane.
func (v View) Axis() anodize.Axis { return v.axis }

// Index returns the position of the plane along its axis.
func (v View) Index() int { return v.index }

func (v View) extent() int {
	switch v.axis {
	case anodize.AxisX:
		return v.size.X
	case anodize.AxisY:
		return v.size.Y
	default:
		return v.size.Z
	}
}

// Dims returns the width and height of the shown plane in cells.
func (v View) Dims() (int, int) {
	switch v.axis {
	case anodize.AxisX:
		return v.size.Y, v.size.Z
	case anodize.AxisY:
		return v.size.X, v.size.Z
	default:
		return v.size.X, v.size.Y
	}
}

// Vertical reports whether the plane contains the z axis.
func (v View) Vertical() bool { return v.axis != anodize.AxisZ }

// WithAxis switches to axis, keeping the index when it is still inside the
// lattice and centering it otherwise.
func (v View) WithAxis(axis anodize.Axis) View {
	v.axis = axis
	if v.index >= v.extent() {
		v.index = v.extent() / 2
	}
	return v
}

// Move shifts the plane by delta, clamped to the lattice.
func (v View) Move(delta int) View {
	v.index = max(0, min(v.extent()-1, v.index+delta))
	return v
}

// MaxDims returns the largest plane any axis can show, used to size the
// window once.
func MaxDims(size core.Size) (int, int) {
	return max(size.X, size.Y), max(size.Y, size.Z)
}

func (v View) String() string {
	return fmt.Sprintf("%s=%d", v.axis, v.index)
}
