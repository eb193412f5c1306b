//go:build ebiten

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"anodize-ca/internal/core"
	"anodize-ca/internal/render"
	"anodize-ca/internal/sims/anodize"
	"anodize-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts an anodization simulation to the ebiten.Game interface.
type Game struct {
	sim     *anodize.Simulation
	painter *render.SlicePainter
	hud     *ui.HUD
	clock   *core.FixedStep
	logger  *slog.Logger

	view     View
	scale    int
	paused   bool
	tickOnce bool
	seed     int64
	err      error
}

// New constructs a Game for the provided simulation.
func New(sim *anodize.Simulation, view View, cfg *Config, logger *slog.Logger) *Game {
	w, h := view.Dims()
	return &Game{
		sim:     sim,
		painter: render.NewSlicePainter(w, h),
		hud:     ui.NewHUD(cfg.PanelWidth),
		clock:   core.NewFixedStep(cfg.TPS),
		logger:  logger,
		view:    view,
		scale:   cfg.Scale,
		seed:    sim.Seed(),
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	if err := g.sim.Reset(seed); err != nil {
		g.err = err
		return
	}
	g.err = nil
	g.tickOnce = false
	g.logger.Info("simulation reset", slog.Int64("seed", seed))
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		if !g.paused {
			g.clock.Reset()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	for key, axis := range map[ebiten.Key]anodize.Axis{
		ebiten.KeyX: anodize.AxisX,
		ebiten.KeyY: anodize.AxisY,
		ebiten.KeyZ: anodize.AxisZ,
	} {
		if inpututil.IsKeyJustPressed(key) {
			g.view = g.view.WithAxis(axis)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) || inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.view = g.view.Move(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) || inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		g.view = g.view.Move(-1)
	}

	due := g.clock.ShouldStep()
	if (!g.paused && due) || g.tickOnce {
		g.tickOnce = false
		g.advance()
	}
	g.hud.Update(g.panelLines())
	return nil
}

func (g *Game) advance() {
	err := g.sim.Advance(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, anodize.ErrCompleted):
		g.paused = true
	default:
		g.paused = true
		if g.err == nil {
			g.logger.Error("step failed", slog.Any("error", err))
		}
		g.err = err
	}
}

func (g *Game) panelLines() []ui.Line {
	counts, err := g.sim.Counts()
	if err != nil && g.err == nil {
		g.err = err
	}
	st := ui.Status{
		Step:       g.sim.StepIndex(),
		TotalSteps: g.sim.Config().TotalSteps,
		State:      g.sim.Status(),
		Paused:     g.paused,
		View:       g.view.String(),
		Counts:     counts,
		Err:        g.err,
	}
	return ui.PanelLines(st, g.sim.Palette(), g.sim.Parameters())
}

// Draw renders the current slice and the side panel.
func (g *Game) Draw(screen *ebiten.Image) {
	cells, w, h, err := g.sim.SliceBytes(int(g.view.Axis()), g.view.Index())
	if err == nil {
		g.painter.Blit(screen, cells, w, h, g.sim.Palette(), g.view.Vertical(), g.scale)
	}
	sw, sh := MaxDims(g.sim.Size())
	g.hud.Draw(screen, sw*g.scale, sh*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := MaxDims(g.sim.Size())
	return w*g.scale + g.hud.Width(), h * g.scale
}
