// Package config loads run configuration for the anodize command: built-in
// defaults, then an optional YAML file, then ANODIZE_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"anodize-ca/internal/core"
	"anodize-ca/internal/sims/anodize"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ANODIZE_"

// File is the on-disk configuration layout.
type File struct {
	Lattice Lattice `yaml:"lattice" envPrefix:"LATTICE_"`
	Run     Run     `yaml:"run"`
	Rules   Rules   `yaml:"rules" envPrefix:"RULES_"`
	Seeding Seeding `yaml:"seeding" envPrefix:"SEED_"`
	Log     Log     `yaml:"log" envPrefix:"LOG_"`
	Metrics Metrics `yaml:"metrics" envPrefix:"METRICS_"`
	Export  Export  `yaml:"export" envPrefix:"EXPORT_"`
}

// Lattice holds the extents and the metal slab.
type Lattice struct {
	NX             int `yaml:"nx" env:"NX"`
	NY             int `yaml:"ny" env:"NY"`
	NZ             int `yaml:"nz" env:"NZ"`
	MetalThickness int `yaml:"metal_thickness" env:"METAL_THICKNESS"`
}

// Run holds the stepping controls.
type Run struct {
	Steps         int   `yaml:"steps" env:"STEPS"`
	StatsInterval int   `yaml:"stats_interval" env:"STATS_INTERVAL"`
	Seed          int64 `yaml:"seed" env:"SEED"`
	Workers       int   `yaml:"workers" env:"WORKERS"`
}

// Rules holds the rule probabilities.
type Rules struct {
	PDissolution float64 `yaml:"p_dissolution" env:"P_DISSOLUTION"`
	PAnion       float64 `yaml:"p_anion" env:"P_ANION"`
	PFieldGen    float64 `yaml:"p_field_gen" env:"P_FIELD_GEN"`
	PDiffusion   float64 `yaml:"p_diffusion" env:"P_DIFFUSION"`
	PBond        float64 `yaml:"p_bond" env:"P_BOND"`
}

// Seeding holds the initial oxide placement.
type Seeding struct {
	Pattern string  `yaml:"pattern" env:"PATTERN"`
	Height  int     `yaml:"height" env:"HEIGHT"`
	Spacing int     `yaml:"spacing" env:"SPACING"`
	Density float64 `yaml:"density" env:"DENSITY"`
	Sites   Sites   `yaml:"sites" env:"SITES"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=auto text json"`
}

// Metrics configures the Prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `yaml:"addr" env:"ADDR" validate:"omitempty,hostname_port"`
}

// Export configures the SQLite statistics sink. An empty path disables it.
type Export struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// Site is one explicit oxide seed.
type Site struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// Sites is a list of explicit seeds. In the environment it is written as
// "x,y,z;x,y,z".
type Sites []Site

// UnmarshalText parses the environment form.
func (s *Sites) UnmarshalText(text []byte) error {
	coords, err := anodize.ParseSites(string(text))
	if err != nil {
		return err
	}
	out := make(Sites, len(coords))
	for i, c := range coords {
		out[i] = Site{X: c.X, Y: c.Y, Z: c.Z}
	}
	*s = out
	return nil
}

// Default mirrors anodize.DefaultConfig with logging at info level.
func Default() File {
	d := anodize.DefaultConfig()
	f := File{
		Lattice: Lattice{
			NX:             d.Size.X,
			NY:             d.Size.Y,
			NZ:             d.Size.Z,
			MetalThickness: d.Seeding.MetalThickness,
		},
		Run: Run{
			Steps:         d.TotalSteps,
			StatsInterval: d.StatsInterval,
			Seed:          d.Seed,
			Workers:       d.Workers,
		},
		Rules: Rules{
			PDissolution: d.Params.PDissolution,
			PAnion:       d.Params.PAnion,
			PFieldGen:    d.Params.PFieldGen,
			PDiffusion:   d.Params.PDiffusion,
			PBond:        d.Params.PBond,
		},
		Seeding: Seeding{
			Pattern: string(d.Seeding.Pattern),
			Height:  d.Seeding.Height,
			Spacing: d.Seeding.Spacing,
			Density: d.Seeding.Density,
		},
		Log: Log{Level: "info", Format: "auto"},
	}
	return f
}

// Load reads path (skipped when empty), applies the process environment and
// validates the result.
func Load(path string) (File, error) {
	return LoadFrom(path, nil)
}

// LoadFrom is Load with an explicit environment. A nil environ reads the
// process environment.
func LoadFrom(path string, environ map[string]string) (File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(data, &f); err != nil {
			return File{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&f, opts); err != nil {
		return File{}, fmt.Errorf("parse env: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Decode unmarshals YAML over f. Unknown keys are rejected.
func Decode(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Marshal renders f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}

var fileValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the logging and output settings, then the simulation
// configuration. Every failure wraps anodize.ErrInvalidConfig.
func (f File) Validate() error {
	var errs []error
	if err := fileValidate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			errs = append(errs, &anodize.ConfigError{
				Field:  field,
				Reason: fmt.Sprintf("%q fails %s", fmt.Sprint(fe.Value()), fe.Tag()),
			})
		}
	}
	if err := f.Simulation().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Simulation converts the file into the simulation configuration.
func (f File) Simulation() anodize.Config {
	sites := make([]anodize.Coord, len(f.Seeding.Sites))
	for i, s := range f.Seeding.Sites {
		sites[i] = anodize.Coord{X: s.X, Y: s.Y, Z: s.Z}
	}
	return anodize.Config{
		Size:          core.Size{X: f.Lattice.NX, Y: f.Lattice.NY, Z: f.Lattice.NZ},
		Seed:          f.Run.Seed,
		TotalSteps:    f.Run.Steps,
		StatsInterval: f.Run.StatsInterval,
		Workers:       f.Run.Workers,
		Params: anodize.Params{
			PDissolution: f.Rules.PDissolution,
			PAnion:       f.Rules.PAnion,
			PFieldGen:    f.Rules.PFieldGen,
			PDiffusion:   f.Rules.PDiffusion,
			PBond:        f.Rules.PBond,
		},
		Seeding: anodize.Seeding{
			MetalThickness: f.Lattice.MetalThickness,
			Pattern:        anodize.SeedPattern(strings.ToLower(f.Seeding.Pattern)),
			Height:         f.Seeding.Height,
			Spacing:        f.Seeding.Spacing,
			Density:        f.Seeding.Density,
			Sites:          sites,
		},
	}
}

// SlogLevel maps the configured level onto slog.
func (l Log) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
