package anodize

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"anodize-ca/internal/core"
	pcore "anodize-ca/pkg/core"
)

// RandomSource supplies the per-site draws of a step. Implementations must be
// pure functions of their arguments.
type RandomSource interface {
	Draw(x, y, z, step int) float64
	NeighborIndex(x, y, z, step int) int
}

// Status is the lifecycle state of a Simulation.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithRandomSource replaces the seeded source. Reset keeps using it.
func WithRandomSource(src RandomSource) Option {
	return func(s *Simulation) {
		s.src = src
		s.customSrc = true
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers an observer notified after every step.
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithWorkers overrides Config.Workers.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Simulation owns the lattice and advances it one step at a time. Snapshot
// accessors may be called from other goroutines; they observe the lattice
// between steps only.
type Simulation struct {
	cfg     Config
	engine  *Engine
	lattice *Lattice
	sched   schedule

	src       RandomSource
	customSrc bool
	seed      int64
	workers   int

	logger    *slog.Logger
	observers []Observer

	mu      sync.RWMutex
	status  Status
	step    int
	started time.Time
	stats   []StepStatistics
	err     error
	abort   atomic.Bool
}

// New validates cfg and builds a simulation seeded with cfg.Seed.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("anodize: %w", err)
	}
	engine, err := NewEngine(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("anodize: %w", err)
	}
	s := &Simulation{
		cfg:     cfg,
		engine:  engine,
		lattice: NewLattice(cfg.Size),
		logger:  slog.Default(),
		workers: cfg.Workers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	s.sched = buildSchedule(s.lattice.Grid())
	s.resetLocked(cfg.Seed)
	return s, nil
}

// Name returns the simulation identifier.
func (s *Simulation) Name() string { return "anodize" }

// Size reports the lattice extents.
func (s *Simulation) Size() core.Size { return s.cfg.Size }

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Reset rebuilds the initial conditions with the provided seed and returns
// the simulation to Idle. A zero seed keeps the configured one.
func (s *Simulation) Reset(seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seed == 0 {
		seed = s.cfg.Seed
	}
	s.resetLocked(seed)
	return nil
}

func (s *Simulation) resetLocked(seed int64) {
	s.seed = seed
	if !s.customSrc {
		s.src = pcore.NewSource(seed)
	}
	seedLattice(s.lattice, s.cfg, seed)
	s.status = StatusIdle
	s.step = 0
	s.stats = nil
	s.err = nil
	s.abort.Store(false)
}

// Seed reports the seed used by the last reset.
func (s *Simulation) Seed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

// Status reports the lifecycle state.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the cause of an abort, if any.
func (s *Simulation) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// StepIndex returns the number of completed steps.
func (s *Simulation) StepIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Abort requests that the simulation stop. It takes effect before the next
// step starts; a step already in progress always finishes.
func (s *Simulation) Abort() { s.abort.Store(true) }

// Step evaluates one step: every interior site picks a partner, the engine
// decides the pair outcome, and the committed writes become the new current
// buffer. Once TotalSteps steps have run it returns ErrCompleted.
func (s *Simulation) Step(ctx context.Context) (StepStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusCompleted:
		return StepStatistics{}, ErrCompleted
	case StatusAborted:
		return StepStatistics{}, s.err
	}
	if s.abort.Load() {
		return StepStatistics{}, s.abortLocked(ErrAborted)
	}
	if err := ctx.Err(); err != nil {
		return StepStatistics{}, s.abortLocked(fmt.Errorf("%w: %w", ErrAborted, err))
	}
	if s.step >= s.cfg.TotalSteps {
		s.status = StatusCompleted
		return StepStatistics{}, ErrCompleted
	}
	if s.status == StatusIdle {
		s.status = StatusRunning
		s.started = time.Now()
		s.logger.Info("anodization run started",
			slog.Int("nx", s.cfg.Size.X),
			slog.Int("ny", s.cfg.Size.Y),
			slog.Int("nz", s.cfg.Size.Z),
			slog.Int64("seed", s.seed),
			slog.Int("total_steps", s.cfg.TotalSteps),
			slog.Int("color_classes", len(s.sched.classes)),
			slog.Int("workers", s.workers),
		)
	}

	begin := time.Now()
	t, err := s.sweep(s.step)
	if err != nil {
		s.lattice.Discard()
		return StepStatistics{}, s.abortLocked(err)
	}
	s.lattice.Commit()
	s.step++

	counts, err := s.lattice.CountByState(s.step)
	if err != nil {
		return StepStatistics{}, s.abortLocked(err)
	}
	now := time.Now()
	st := StepStatistics{
		Step:         s.step,
		Elapsed:      now.Sub(s.started),
		Duration:     now.Sub(begin),
		Counts:       counts,
		Interactions: t.interactions,
		Skipped:      t.skipped,
		Conflicts:    t.conflicts,
		Fired:        t.fired,
	}
	if s.step%s.cfg.StatsInterval == 0 {
		s.stats = append(s.stats, st)
		s.logger.Debug("step sampled",
			slog.Int("step", st.Step),
			slog.Int("oxide", counts[Oxide]),
			slog.Int("field", counts[ElectricField]),
			slog.Int("applied", st.Applied()),
			slog.Int("conflicts", st.Conflicts),
		)
	}
	for _, o := range s.observers {
		o.ObserveStep(st)
	}
	if s.step == s.cfg.TotalSteps {
		s.status = StatusCompleted
		s.logger.Info("anodization run completed",
			slog.Int("steps", s.step),
			slog.Duration("elapsed", st.Elapsed),
		)
	}
	return st, nil
}

func (s *Simulation) abortLocked(cause error) error {
	s.status = StatusAborted
	s.err = cause
	s.logger.Error("anodization run aborted",
		slog.Int("step", s.step),
		slog.Any("error", cause),
	)
	return cause
}

// Advance runs one step, discarding the statistics.
func (s *Simulation) Advance(ctx context.Context) error {
	_, err := s.Step(ctx)
	return err
}

// Run returns a finite sequence of per-step statistics. Every iteration of the
// sequence resets the lattice to its initial conditions and then yields one
// entry per completed step until TotalSteps is reached. Breaking out of the
// loop leaves the lattice at the last yielded step. A failure is yielded once
// as the final element.
func (s *Simulation) Run(ctx context.Context) iter.Seq2[StepStatistics, error] {
	return func(yield func(StepStatistics, error) bool) {
		if err := s.Reset(s.Seed()); err != nil {
			yield(StepStatistics{}, err)
			return
		}
		for {
			st, err := s.Step(ctx)
			if errors.Is(err, ErrCompleted) {
				return
			}
			if err != nil {
				yield(StepStatistics{}, err)
				return
			}
			if !yield(st, nil) {
				return
			}
		}
	}
}

// sweep evaluates every color class once. The class order rotates with the
// step so no class is always first to claim contested cells.
func (s *Simulation) sweep(step int) (tally, error) {
	var total tally
	n := len(s.sched.classes)
	for k := 0; k < n; k++ {
		class := s.sched.classes[(step+k)%n]
		t, err := s.pass(class, step)
		if err != nil {
			return total, err
		}
		total.add(t)
	}
	return total, nil
}

// pass evaluates one color class. Sites of a class never share a cell, so the
// chunks write disjoint slots of the next buffer and the claim table.
func (s *Simulation) pass(class []int32, step int) (tally, error) {
	if s.workers <= 1 || len(class) < 2*s.workers {
		var t tally
		err := s.evaluate(class, step, &t)
		return t, err
	}
	chunks := s.workers * 4
	size := (len(class) + chunks - 1) / chunks
	tallies := make([]tally, chunks)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := 0; i < chunks; i++ {
		lo := i * size
		if lo >= len(class) {
			break
		}
		hi := min(lo+size, len(class))
		g.Go(func() error {
			return s.evaluate(class[lo:hi], step, &tallies[i])
		})
	}
	err := g.Wait()

	var total tally
	for _, t := range tallies {
		total.add(t)
	}
	return total, err
}

func (s *Simulation) evaluate(sites []int32, step int, t *tally) error {
	grid := s.lattice.Grid()
	cells := grid.Cells()
	for _, site := range sites {
		idx := int(site)
		x, y, z := grid.Coord(idx)

		pick := s.src.NeighborIndex(x, y, z, step)
		if pick < 0 || pick >= core.MooreNeighbors {
			return fmt.Errorf("random source picked neighbor %d at (%d,%d,%d) during step %d", pick, x, y, z, step)
		}
		nx, ny, nz, ok := grid.Resolve(x, y, z, core.MooreOffsets[pick])
		if !ok {
			t.skipped++
			continue
		}
		nidx := grid.Index(nx, ny, nz)

		a, b := CellState(cells[idx]), CellState(cells[nidx])
		if !a.Valid() {
			return &CorruptionError{X: x, Y: y, Z: z, Step: step, Value: uint8(a)}
		}
		if !b.Valid() {
			return &CorruptionError{X: nx, Y: ny, Z: nz, Step: step, Value: uint8(b)}
		}
		t.interactions++

		hood := NeighborhoodFunc(func() (int, int) {
			return grid.CountNeighbors(x, y, z, oxideLikeByte), grid.CountNeighbors(nx, ny, nz, oxideLikeByte)
		})
		out, err := s.engine.Apply(a, b, s.src.Draw(x, y, z, step), hood)
		if err != nil {
			return fmt.Errorf("step %d at (%d,%d,%d): %w", step, x, y, z, err)
		}
		if !out.Fired() {
			continue
		}
		if s.lattice.claimed(idx) || s.lattice.claimed(nidx) {
			t.conflicts++
			continue
		}
		s.lattice.claim(idx)
		s.lattice.claim(nidx)
		s.lattice.writeNextIdx(idx, out.A)
		s.lattice.writeNextIdx(nidx, out.B)
		t.fired[out.Rule]++
	}
	return nil
}

func oxideLikeByte(v uint8) bool { return CellState(v).OxideLike() }

// State returns the current state at (x, y, z).
func (s *Simulation) State(x, y, z int) (CellState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.lattice.Grid().InBounds(x, y, z) {
		return 0, fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfBounds, x, y, z)
	}
	return s.lattice.Read(x, y, z), nil
}

// Slice returns a copy of the plane normal to axis at index.
func (s *Simulation) Slice(axis Axis, index int) (Plane, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lattice.Slice(axis, index)
}

// SliceBytes returns a slice as raw state bytes with its width and height.
func (s *Simulation) SliceBytes(axis, index int) ([]uint8, int, int, error) {
	p, err := s.Slice(Axis(axis), index)
	if err != nil {
		return nil, 0, 0, err
	}
	out := make([]uint8, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = uint8(c)
	}
	return out, p.W, p.H, nil
}

// Grid returns a copy of the whole current buffer.
func (s *Simulation) Grid() Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lattice.Volume()
}

// Counts tallies the current buffer.
func (s *Simulation) Counts() (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lattice.CountByState(s.step)
}

// Statistics returns a copy of the sampled per-step statistics.
func (s *Simulation) Statistics() []StepStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StepStatistics(nil), s.stats...)
}

func init() {
	core.Register("anodize", func(cfg map[string]string) (core.Sim, error) {
		c, err := FromMap(cfg)
		if err != nil {
			return nil, err
		}
		sim, err := New(c)
		if err != nil {
			return nil, err
		}
		return sim, nil
	})
}
