package anodize

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every configuration failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrCorruption is wrapped by CorruptionError.
	ErrCorruption = errors.New("lattice corruption")
	// ErrCompleted is returned by Step once every configured step has run.
	ErrCompleted = errors.New("simulation completed")
	// ErrAborted is returned by Step after Abort was requested.
	ErrAborted = errors.New("simulation aborted")
	// ErrInvalidAxis is returned by slice accessors for an unknown axis or an
	// index outside the lattice.
	ErrInvalidAxis = errors.New("invalid slice axis or index")
	// ErrOutOfBounds is returned by State for coordinates outside the lattice.
	ErrOutOfBounds = errors.New("coordinate outside the lattice")
)

// ConfigError describes a single rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// CorruptionError reports a cell holding a value outside the defined states.
type CorruptionError struct {
	X, Y, Z int
	Step    int
	Value   uint8
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("invalid state %d at (%d,%d,%d) during step %d", e.Value, e.X, e.Y, e.Z, e.Step)
}

func (e *CorruptionError) Unwrap() error { return ErrCorruption }
