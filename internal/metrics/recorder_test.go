package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anodize-ca/internal/sims/anodize"
)

func sampleStep() anodize.StepStatistics {
	st := anodize.StepStatistics{
		Step:         1,
		Duration:     3 * time.Millisecond,
		Counts:       anodize.Counts{anodize.Metal: 10, anodize.Oxide: 4, anodize.Solvent: 86},
		Interactions: 80,
		Skipped:      6,
		Conflicts:    2,
	}
	st.Fired[anodize.RulePassivation] = 3
	st.Fired[anodize.RuleReorganization] = 1
	return st
}

func TestRecorderObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveStep(sampleStep())
	r.ObserveStep(sampleStep())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.steps))
	assert.Equal(t, 160.0, testutil.ToFloat64(r.interactions))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.skipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.conflicts))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.fired.WithLabelValues("passivation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.fired.WithLabelValues("reorganization")))
	// Gauges hold the latest step, not a sum.
	assert.Equal(t, 4.0, testutil.ToFloat64(r.cells.WithLabelValues("oxide")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.cells.WithLabelValues("anion")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stepSeconds))
}

func TestRecorderAsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	cfg := anodize.DefaultConfig()
	cfg.Size.X, cfg.Size.Y, cfg.Size.Z = 6, 6, 10
	cfg.TotalSteps = 4
	cfg.Seeding.MetalThickness = 2
	sim, err := anodize.New(cfg, anodize.WithObserver(r))
	require.NoError(t, err)
	for _, err := range sim.Run(t.Context()) {
		require.NoError(t, err)
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(r.steps))
	var total float64
	for _, s := range anodize.States() {
		total += testutil.ToFloat64(r.cells.WithLabelValues(s.String()))
	}
	assert.Equal(t, float64(6*6*10), total)
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg).ObserveStep(sampleStep())

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `anodize_cells{state="metal"} 10`))
	assert.True(t, strings.Contains(string(body), "anodize_steps_total 1"))
}
