package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anodize-ca/internal/export"
	"anodize-ca/internal/sims/anodize"
)

const smallConfig = `
lattice:
  nx: 6
  ny: 6
  nz: 12
  metal_thickness: 3
run:
  steps: 6
  stats_interval: 2
  seed: 11
seeding:
  height: 7
log:
  level: warn
`

func writeSmallConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anodize.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallConfig), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestValidate(t *testing.T) {
	out, _, err := execute(t, "validate", "--config", writeSmallConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "configuration ok: 6x6x12 lattice, 6 steps, seed 11")
}

func TestValidateRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  p_bond: 3\n"), 0o644))

	_, _, err := execute(t, "validate", "--config", path)
	require.ErrorIs(t, err, anodize.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "p_bond")
}

func TestParams(t *testing.T) {
	path := writeSmallConfig(t)
	out, _, err := execute(t, "params", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[Rules]")
	assert.Contains(t, out, "p_bond")
	assert.Contains(t, out, "surface reorganization")

	out, _, err = execute(t, "params", "--config", path, "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "p_dissolution: 0.15")
	assert.Contains(t, out, "nx: 6")
}

func TestRunRecordsStatistics(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(t, "run", "--config", writeSmallConfig(t), "--stats-db", db, "--slice", "xz=3", "--workers", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "STEP"))
	assert.Contains(t, out, "slice y=3 after step 6")

	ctx := context.Background()
	store, err := export.Open(ctx, db)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, int64(11), runs[0].Seed)
	steps, err := store.Steps(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, steps, 3)

	out, _, err = execute(t, "history", "--stats-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID)
	assert.Contains(t, out, "6x6x12")

	out, _, err = execute(t, "history", "--stats-db", db, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(out), "\n")))

	_, _, err = execute(t, "history", "--stats-db", db, "no-such-run")
	require.ErrorIs(t, err, export.ErrUnknownRun)
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	out, _, err := execute(t, "run", "--config", writeSmallConfig(t), "--steps", "4")
	require.NoError(t, err)
	// Samples at steps 2 and 4 plus the header.
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), "\n")))
}

func TestRunRejectsBadSlice(t *testing.T) {
	_, _, err := execute(t, "run", "--config", writeSmallConfig(t), "--slice", "diagonal")
	require.ErrorIs(t, err, anodize.ErrInvalidAxis)
}

func TestLogFormatFlag(t *testing.T) {
	_, stderr, err := execute(t, "run", "--config", writeSmallConfig(t), "--steps", "2",
		"--log-level", "info", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"anodization run started"`)

	_, _, err = execute(t, "run", "--config", writeSmallConfig(t), "--log-format", "xml")
	require.ErrorIs(t, err, anodize.ErrInvalidConfig)
}

func TestSweep(t *testing.T) {
	out, _, err := execute(t, "sweep", "--config", writeSmallConfig(t),
		"--p-bond", "0.1,0.5", "--p-field-gen", "0.8", "--jobs", "2", "--steps", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "p_bond=0.100")
	assert.Contains(t, out, "p_bond=0.500")
}
