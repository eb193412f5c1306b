package core

import "context"

// Size describes the extents of a simulation lattice.
type Size struct {
	X int
	Y int
	Z int
}

// Cells returns the total number of cells.
func (s Size) Cells() int { return s.X * s.Y * s.Z }

// Sim defines the minimal contract a 3D cellular automaton must implement to
// be driven by the CLI and the viewer.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64) error
	Advance(ctx context.Context) error
	SliceBytes(axis, index int) ([]uint8, int, int, error)
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}
