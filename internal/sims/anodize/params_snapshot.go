package anodize

import (
	"fmt"
	"strconv"
	"strings"

	"anodize-ca/internal/core"
)

// Parameters describes the active configuration.
func (s *Simulation) Parameters() core.ParameterSnapshot {
	return ParametersOf(s.cfg, s.Seed())
}

// ParametersOf describes cfg as a parameter snapshot, reporting seed as the
// active seed.
func ParametersOf(cfg Config, seed int64) core.ParameterSnapshot {
	p := cfg.Params
	sd := cfg.Seeding
	groups := []core.ParameterGroup{
		{
			Name: "Lattice",
			Params: []core.Parameter{
				intParam("nx", "Extent X", cfg.Size.X),
				intParam("ny", "Extent Y", cfg.Size.Y),
				intParam("nz", "Extent Z", cfg.Size.Z),
				int64Param("seed", "Seed", seed),
				intParam("steps", "Total steps", cfg.TotalSteps),
				intParam("stats_interval", "Statistics interval", cfg.StatsInterval),
				intParam("workers", "Workers", cfg.Workers),
			},
		},
		{
			Name:    "Initial Conditions",
			Summary: "Metal slab below metal_thickness, oxide nuclei in [metal_thickness, seed_height).",
			Params: []core.Parameter{
				intParam("metal_thickness", "Metal thickness", sd.MetalThickness),
				stringParam("seed_pattern", "Seed pattern", string(sd.Pattern)),
				intParam("seed_height", "Seed height", sd.Height),
				intParam("seed_spacing", "Seed spacing", sd.Spacing),
				floatParam("oxide_seed_density", "Oxide seed density", sd.Density),
				stringParam("seeds", "Explicit seeds", formatSites(sd.Sites)),
			},
		},
		{
			Name: "Rules",
			Params: []core.Parameter{
				describe(floatParam("p_dissolution", "Dissolution", p.PDissolution), "field + solvent -> solvent + solvent"),
				describe(floatParam("p_anion", "Anion incorporation", p.PAnion), "field + solvent -> anion + solvent"),
				describe(floatParam("p_field_gen", "Field generation", p.PFieldGen), "metal + oxide -> metal + field"),
				describe(floatParam("p_diffusion", "Diffusion", p.PDiffusion), "field swaps with oxide or anion"),
				describe(floatParam("p_bond", "Bond", p.PBond), "surface reorganization base probability"),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}

func describe(p core.Parameter, d string) core.Parameter {
	p.Description = d
	return p
}

func formatSites(sites []Coord) string {
	parts := make([]string, len(sites))
	for i, c := range sites {
		parts[i] = fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
	}
	return strings.Join(parts, ";")
}
