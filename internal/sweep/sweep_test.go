package sweep

import (
	"context"
	"errors"
	"testing"

	"anodize-ca/internal/sims/anodize"
)

func sweepConfig() anodize.Config {
	cfg := anodize.DefaultConfig()
	cfg.Size.X, cfg.Size.Y, cfg.Size.Z = 6, 6, 12
	cfg.Seeding.MetalThickness = 3
	cfg.Seeding.Height = 7
	cfg.TotalSteps = 8
	cfg.StatsInterval = 4
	return cfg
}

func TestGrid(t *testing.T) {
	base := anodize.DefaultConfig().Params
	points := Grid(base, []float64{0.1, 0.2}, []float64{0.5, 0.8, 1}, nil)
	if len(points) != 6 {
		t.Fatalf("got %d points, want 6", len(points))
	}
	for _, p := range points {
		if p.PAnion != base.PAnion {
			t.Fatalf("empty list should keep the base value, got %v", p)
		}
	}
	if got := Grid(base, nil, nil, nil); len(got) != 1 || got[0].PBond != base.PBond {
		t.Fatalf("empty grid = %v", got)
	}
}

func TestRunRanksByOxide(t *testing.T) {
	cfg := sweepConfig()
	points := Grid(cfg.Params, []float64{0, 0.5}, []float64{0.2, 1}, nil)
	results := Run(context.Background(), cfg, points, 3)
	if len(results) != len(points) {
		t.Fatalf("got %d results, want %d", len(results), len(points))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Point, r.Err)
		}
		if r.Steps != cfg.TotalSteps {
			t.Fatalf("%s ran %d steps", r.Point, r.Steps)
		}
		if r.Counts.Total() != cfg.Size.Cells() {
			t.Fatalf("%s: counts %v", r.Point, r.Counts)
		}
		if r.Front < cfg.Seeding.MetalThickness {
			t.Fatalf("%s: front at %d", r.Point, r.Front)
		}
		if i > 0 && results[i-1].Counts[anodize.Oxide] < r.Counts[anodize.Oxide] {
			t.Fatal("results not ordered by oxide count")
		}
	}
}

func TestRunIndependentOfPoolSize(t *testing.T) {
	cfg := sweepConfig()
	points := Grid(cfg.Params, []float64{0.1, 0.9}, []float64{0.5}, []float64{0.2, 0.6})
	serial := Run(context.Background(), cfg, points, 1)
	pooled := Run(context.Background(), cfg, points, 4)

	byPoint := make(map[Point]anodize.Counts)
	for _, r := range serial {
		byPoint[r.Point] = r.Counts
	}
	for _, r := range pooled {
		if byPoint[r.Point] != r.Counts {
			t.Fatalf("%s differs between pool sizes", r.Point)
		}
	}
}

func TestRunReportsFailures(t *testing.T) {
	cfg := sweepConfig()
	points := []Point{{PBond: 2, PFieldGen: 0.5, PAnion: 0.5}, {PBond: 0.1, PFieldGen: 0.5, PAnion: 0.5}}
	results := Run(context.Background(), cfg, points, 2)
	if results[0].Err != nil {
		t.Fatalf("successful run should rank first, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, anodize.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", results[1].Err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range Run(ctx, cfg, points[1:], 1) {
		if !errors.Is(r.Err, anodize.ErrAborted) {
			t.Fatalf("expected ErrAborted, got %v", r.Err)
		}
	}
}
