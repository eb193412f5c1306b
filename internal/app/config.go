package app

import "flag"

// Config represents the command-line parameters for the viewer.
type Config struct {
	ConfigPath string
	Slice      string
	Scale      int
	TPS        int
	PanelWidth int
	Seed       int64
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Scale: 6, TPS: 10, PanelWidth: 260}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML configuration file")
	fs.StringVar(&c.Slice, "slice", c.Slice, "initial slice, e.g. xz=25 or z=10 (default: middle xz plane)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation steps per second")
	fs.IntVar(&c.PanelWidth, "panel", c.PanelWidth, "side panel width in pixels, 0 to hide")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset, 0 keeps the configured seed")
}
