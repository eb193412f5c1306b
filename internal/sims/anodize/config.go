package anodize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"anodize-ca/internal/core"
)

// Params holds the rule probabilities.
type Params struct {
	PDissolution float64
	PAnion       float64
	PFieldGen    float64
	PDiffusion   float64
	PBond        float64
}

// SeedPattern selects how oxide nucleation sites are placed above the metal.
type SeedPattern string

const (
	// SeedLattice places oxide on every cell of the seed band whose
	// coordinates are all multiples of the seed spacing.
	SeedLattice SeedPattern = "lattice"
	// SeedRandom places oxide on seed band cells with probability Density.
	SeedRandom SeedPattern = "random"
	// SeedNone leaves the seed band as solvent.
	SeedNone SeedPattern = "none"
)

// Coord addresses a single lattice site.
type Coord struct {
	X, Y, Z int
}

// Seeding controls the initial conditions.
type Seeding struct {
	MetalThickness int
	Pattern        SeedPattern
	// Height is the exclusive upper z bound of the seed band. The band starts
	// at MetalThickness.
	Height  int
	Spacing int
	Density float64
	// Sites are forced to oxide after the pattern is applied.
	Sites []Coord
}

// Config controls the anodization simulation.
type Config struct {
	Size core.Size

	Seed          int64
	TotalSteps    int
	StatsInterval int
	// Workers bounds the goroutines used per pass. Zero means GOMAXPROCS.
	Workers int

	Params  Params
	Seeding Seeding
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Size:          core.Size{X: 50, Y: 50, Z: 100},
		Seed:          1337,
		TotalSteps:    500,
		StatsInterval: 10,
		Params: Params{
			PDissolution: 0.15,
			PAnion:       0.5,
			PFieldGen:    0.8,
			PDiffusion:   1.0,
			PBond:        0.1,
		},
		Seeding: Seeding{
			MetalThickness: 5,
			Pattern:        SeedLattice,
			Height:         10,
			Spacing:        3,
			Density:        0.05,
		},
	}
}

// Validate checks every field and returns all violations joined together.
func (c Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.Size.X <= 0 {
		bad("nx", "must be positive, got %d", c.Size.X)
	}
	if c.Size.Y <= 0 {
		bad("ny", "must be positive, got %d", c.Size.Y)
	}
	if c.Size.Z <= 0 {
		bad("nz", "must be positive, got %d", c.Size.Z)
	}
	if c.TotalSteps < 0 {
		bad("steps", "must not be negative, got %d", c.TotalSteps)
	}
	if c.StatsInterval <= 0 {
		bad("stats_interval", "must be positive, got %d", c.StatsInterval)
	}
	if c.Workers < 0 {
		bad("workers", "must not be negative, got %d", c.Workers)
	}

	probs := []struct {
		key string
		v   float64
	}{
		{"p_dissolution", c.Params.PDissolution},
		{"p_anion", c.Params.PAnion},
		{"p_field_gen", c.Params.PFieldGen},
		{"p_diffusion", c.Params.PDiffusion},
		{"p_bond", c.Params.PBond},
	}
	for _, p := range probs {
		// Written so NaN fails too.
		if !(p.v >= 0 && p.v <= 1) {
			bad(p.key, "must be within [0, 1], got %v", p.v)
		}
	}

	s := c.Seeding
	if s.MetalThickness < 0 {
		bad("metal_thickness", "must not be negative, got %d", s.MetalThickness)
	}
	if c.Size.Z > 0 && s.MetalThickness >= c.Size.Z {
		bad("metal_thickness", "must be below nz=%d, got %d", c.Size.Z, s.MetalThickness)
	}
	switch s.Pattern {
	case SeedLattice:
		if s.Spacing <= 0 {
			bad("seed_spacing", "must be positive, got %d", s.Spacing)
		}
	case SeedRandom:
		if !(s.Density >= 0 && s.Density <= 1) {
			bad("oxide_seed_density", "must be within [0, 1], got %v", s.Density)
		}
	case SeedNone:
	default:
		bad("seed_pattern", "unknown pattern %q", string(s.Pattern))
	}
	if s.Height < 0 {
		bad("seed_height", "must not be negative, got %d", s.Height)
	}
	for i, site := range s.Sites {
		if site.X < 0 || site.X >= c.Size.X || site.Y < 0 || site.Y >= c.Size.Y || site.Z < 0 || site.Z >= c.Size.Z {
			bad(fmt.Sprintf("seeds[%d]", i), "(%d,%d,%d) outside the lattice", site.X, site.Y, site.Z)
		}
	}
	return errors.Join(errs...)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unknown keys are ignored; malformed values are reported.
func FromMap(cfg map[string]string) (Config, error) {
	c := DefaultConfig()
	if cfg == nil {
		return c, nil
	}
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := cfg[key]; ok {
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, &ConfigError{Field: key, Reason: err.Error()})
				return
			}
			*dst = parsed
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := cfg[key]; ok {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, &ConfigError{Field: key, Reason: err.Error()})
				return
			}
			*dst = parsed
		}
	}

	setInt("nx", &c.Size.X)
	setInt("ny", &c.Size.Y)
	setInt("nz", &c.Size.Z)
	if v, ok := cfg["seed"]; ok {
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "seed", Reason: err.Error()})
		} else {
			c.Seed = parsed
		}
	}
	setInt("steps", &c.TotalSteps)
	setInt("stats_interval", &c.StatsInterval)
	setInt("workers", &c.Workers)

	setFloat("p_dissolution", &c.Params.PDissolution)
	setFloat("p_anion", &c.Params.PAnion)
	setFloat("p_field_gen", &c.Params.PFieldGen)
	setFloat("p_diffusion", &c.Params.PDiffusion)
	setFloat("p_bond", &c.Params.PBond)

	setInt("metal_thickness", &c.Seeding.MetalThickness)
	if v, ok := cfg["seed_pattern"]; ok {
		c.Seeding.Pattern = SeedPattern(strings.ToLower(strings.TrimSpace(v)))
	}
	setInt("seed_height", &c.Seeding.Height)
	setInt("seed_spacing", &c.Seeding.Spacing)
	setFloat("oxide_seed_density", &c.Seeding.Density)
	if v, ok := cfg["seeds"]; ok {
		sites, err := ParseSites(v)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "seeds", Reason: err.Error()})
		} else {
			c.Seeding.Sites = sites
		}
	}
	return c, errors.Join(errs...)
}

// ParseSites parses a list of coordinates written as "x,y,z;x,y,z".
func ParseSites(s string) ([]Coord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Coord
	for _, part := range strings.Split(s, ";") {
		fields := strings.Split(strings.TrimSpace(part), ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("site %q: want x,y,z", part)
		}
		var vals [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("site %q: %w", part, err)
			}
			vals[i] = v
		}
		out = append(out, Coord{X: vals[0], Y: vals[1], Z: vals[2]})
	}
	return out, nil
}
