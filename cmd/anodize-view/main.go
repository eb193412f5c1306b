//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"anodize-ca/internal/app"
	"anodize-ca/internal/config"
	"anodize-ca/internal/sims/anodize"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	file, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Seed != 0 {
		file.Run.Seed = cfg.Seed
	}
	if err := file.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: file.Log.SlogLevel()}))

	sim, err := anodize.New(file.Simulation(), anodize.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	view, err := app.NewView(sim.Size(), cfg.Slice)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(sim, view, cfg, logger)
	w, h := app.MaxDims(sim.Size())
	size := sim.Size()

	ebiten.SetWindowTitle(fmt.Sprintf("anodize %dx%dx%d", size.X, size.Y, size.Z))
	ebiten.SetWindowSize(w*cfg.Scale+cfg.PanelWidth, h*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
