// Package export persists run metadata and sampled step statistics.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"anodize-ca/internal/sims/anodize"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	status      TEXT NOT NULL,
	seed        INTEGER NOT NULL,
	nx          INTEGER NOT NULL,
	ny          INTEGER NOT NULL,
	nz          INTEGER NOT NULL,
	total_steps INTEGER NOT NULL,
	steps_run   INTEGER NOT NULL DEFAULT 0,
	config      BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS step_stats (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	step         INTEGER NOT NULL,
	elapsed_ns   INTEGER NOT NULL,
	metal        INTEGER NOT NULL,
	oxide        INTEGER NOT NULL,
	field        INTEGER NOT NULL,
	anion        INTEGER NOT NULL,
	solvent      INTEGER NOT NULL,
	interactions INTEGER NOT NULL,
	skipped      INTEGER NOT NULL,
	conflicts    INTEGER NOT NULL,
	PRIMARY KEY (run_id, step)
);`

// Fixed-width so timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrUnknownRun is returned when a run id is not in the database.
var ErrUnknownRun = errors.New("unknown run")

// Store writes runs and their statistics to a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path. ":memory:" keeps it in memory.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection so ":memory:" databases are shared by every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Run is a row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Seed       int64
	NX, NY, NZ int
	TotalSteps int
	StepsRun   int
}

// BeginRun records a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, cfg anodize.Config, seed int64) (string, error) {
	blob, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status, seed, nx, ny, nz, total_steps, config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC().Format(timeLayout), anodize.StatusRunning.String(),
		seed, cfg.Size.X, cfg.Size.Y, cfg.Size.Z, cfg.TotalSteps, blob)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// WriteSteps appends statistics to a run in a single transaction.
func (s *Store) WriteSteps(ctx context.Context, runID string, steps []anodize.StepStatistics) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO step_stats (run_id, step, elapsed_ns, metal, oxide, field, anion, solvent, interactions, skipped, conflicts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, st := range steps {
		c := st.Counts
		if _, err := stmt.ExecContext(ctx, runID, st.Step, st.Elapsed.Nanoseconds(),
			c[anodize.Metal], c[anodize.Oxide], c[anodize.ElectricField], c[anodize.Anion], c[anodize.Solvent],
			st.Interactions, st.Skipped, st.Conflicts); err != nil {
			return fmt.Errorf("insert step %d: %w", st.Step, err)
		}
	}
	return tx.Commit()
}

// FinishRun stores the final status and the number of completed steps.
func (s *Store) FinishRun(ctx context.Context, runID string, status anodize.Status, stepsRun int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, steps_run = ? WHERE id = ?`,
		s.now().UTC().Format(timeLayout), status.String(), stepsRun, runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// Runs lists every run, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), status, seed, nx, ny, nz, total_steps, steps_run
		 FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Status, &r.Seed,
			&r.NX, &r.NY, &r.NZ, &r.TotalSteps, &r.StepsRun); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(timeLayout, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Steps returns the statistics stored for a run in step order.
func (s *Store) Steps(ctx context.Context, runID string) ([]anodize.StepStatistics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, elapsed_ns, metal, oxide, field, anion, solvent, interactions, skipped, conflicts
		 FROM step_stats WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("select steps: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []anodize.StepStatistics
	for rows.Next() {
		var (
			st      anodize.StepStatistics
			elapsed int64
			c       anodize.Counts
		)
		if err := rows.Scan(&st.Step, &elapsed,
			&c[anodize.Metal], &c[anodize.Oxide], &c[anodize.ElectricField], &c[anodize.Anion], &c[anodize.Solvent],
			&st.Interactions, &st.Skipped, &st.Conflicts); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		st.Elapsed = time.Duration(elapsed)
		st.Counts = c
		out = append(out, st)
	}
	return out, rows.Err()
}

// Config returns the configuration a run was started with.
func (s *Store) Config(ctx context.Context, runID string) (anodize.Config, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT config FROM runs WHERE id = ?`, runID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return anodize.Config{}, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return anodize.Config{}, fmt.Errorf("select config: %w", err)
	}
	var cfg anodize.Config
	if err := json.Unmarshal(blob, &cfg); err != nil {
		return anodize.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
