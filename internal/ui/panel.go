package ui

import (
	"fmt"
	"image/color"

	"anodize-ca/internal/core"
	"anodize-ca/internal/sims/anodize"
)

// Line is one row of the side panel. Swatch, when set, is drawn as a color
// chip before the text.
type Line struct {
	Text   string
	Swatch *color.RGBA
	Header bool
}

// Status is what the panel shows about the running simulation.
type Status struct {
	Step       int
	TotalSteps int
	State      anodize.Status
	Paused     bool
	View       string
	Counts     anodize.Counts
	Err        error
}

// PanelLines lays out the status block, one legend line per cell state with
// its count, and the parameter groups of snap.
func PanelLines(st Status, palette []color.RGBA, snap core.ParameterSnapshot) []Line {
	state := st.State.String()
	if st.Paused && st.State != anodize.StatusCompleted {
		state = "paused"
	}
	lines := []Line{
		{Text: "Anodization", Header: true},
		{Text: fmt.Sprintf("step %d/%d  %s", st.Step, st.TotalSteps, state)},
		{Text: "slice " + st.View},
	}
	if st.Err != nil {
		lines = append(lines, Line{Text: "error: " + st.Err.Error()})
	}

	lines = append(lines, Line{}, Line{Text: "Cells", Header: true})
	for s := anodize.CellState(0); s < anodize.NumStates; s++ {
		l := Line{Text: fmt.Sprintf("%-8s %d", s, st.Counts[s])}
		if int(s) < len(palette) {
			c := palette[s]
			l.Swatch = &c
		}
		lines = append(lines, l)
	}

	for _, g := range snap.Groups {
		lines = append(lines, Line{}, Line{Text: g.Name, Header: true})
		for _, p := range g.Params {
			if p.Value == "" {
				continue
			}
			lines = append(lines, Line{Text: fmt.Sprintf("%-18s %s", p.Key, p.Value)})
		}
	}
	lines = append(lines, Line{}, Line{Text: "space pause  n step  r reset", Header: true},
		Line{Text: "s new seed  x/y/z axis  up/down move"})
	return lines
}
