// Package sweep runs a grid of anodize simulations in parallel and ranks the
// outcomes.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"anodize-ca/internal/sims/anodize"
)

// Point is one parameter combination.
type Point struct {
	PBond     float64
	PFieldGen float64
	PAnion    float64
}

func (p Point) String() string {
	return fmt.Sprintf("p_bond=%.3f p_field_gen=%.3f p_anion=%.3f", p.PBond, p.PFieldGen, p.PAnion)
}

// Grid expands the value lists into their cartesian product. An empty list
// keeps the base value for that parameter.
func Grid(base anodize.Params, pBond, pFieldGen, pAnion []float64) []Point {
	if len(pBond) == 0 {
		pBond = []float64{base.PBond}
	}
	if len(pFieldGen) == 0 {
		pFieldGen = []float64{base.PFieldGen}
	}
	if len(pAnion) == 0 {
		pAnion = []float64{base.PAnion}
	}
	var points []Point
	for _, b := range pBond {
		for _, f := range pFieldGen {
			for _, a := range pAnion {
				points = append(points, Point{PBond: b, PFieldGen: f, PAnion: a})
			}
		}
	}
	return points
}

// Result summarizes one finished simulation.
type Result struct {
	Point  Point
	Counts anodize.Counts
	// Front is the highest z holding an oxide-like cell, -1 when there is none.
	Front     int
	Steps     int
	Conflicts int
	Elapsed   time.Duration
	Err       error
}

// Run evaluates every point on top of base using a pool of workers. Each
// simulation runs single-threaded. Results are ordered by oxide count,
// highest first, with failures last.
func Run(ctx context.Context, base anodize.Config, points []Point, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan Point)
	results := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- runPoint(ctx, base, p)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, p := range points {
			jobs <- p
		}
		close(jobs)
	}()

	all := make([]Result, 0, len(points))
	for res := range results {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Counts[anodize.Oxide] != b.Counts[anodize.Oxide] {
			return a.Counts[anodize.Oxide] > b.Counts[anodize.Oxide]
		}
		return a.Point.String() < b.Point.String()
	})
	return all
}

func runPoint(ctx context.Context, base anodize.Config, p Point) (res Result) {
	cfg := base
	cfg.Params.PBond = p.PBond
	cfg.Params.PFieldGen = p.PFieldGen
	cfg.Params.PAnion = p.PAnion
	cfg.Workers = 1

	res = Result{Point: p, Front: -1}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	sim, err := anodize.New(cfg, anodize.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		res.Err = err
		return res
	}
	for st, err := range sim.Run(ctx) {
		if err != nil {
			res.Err = err
			return res
		}
		res.Steps = st.Step
		res.Counts = st.Counts
		res.Conflicts += st.Conflicts
	}
	res.Front = frontHeight(sim.Grid())
	return res
}

func frontHeight(v anodize.Volume) int {
	for z := v.Size.Z - 1; z >= 0; z-- {
		for y := 0; y < v.Size.Y; y++ {
			for x := 0; x < v.Size.X; x++ {
				if v.At(x, y, z).OxideLike() {
					return z
				}
			}
		}
	}
	return -1
}
