package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/config"
	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/marketdata"
	"github.com/CodingFreeze/FiveTenAlgo/internal/metrics"
	"github.com/CodingFreeze/FiveTenAlgo/internal/storage/archive"
	"github.com/CodingFreeze/FiveTenAlgo/internal/timeline"
)

func testService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	cfg := config.Defaults()
	cfg.Simulation.DataDir = t.TempDir()
	cfg.Simulation.CutoffDate = "2024-03-01"
	cfg.Simulation.UniverseSize = 3

	now := func() time.Time {
		return time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	}
	opts = append([]Option{WithNow(now)}, opts...)

	provider := marketdata.NewSynthetic(cfg.Simulation.Seed)
	return New(cfg, provider, metrics.NewRegistry(), zap.NewNop(), opts...)
}

func TestGenerateCreatesArtifact(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")

	err := s.Generate(context.Background(), mode, core.PeriodCovid)
	require.NoError(t, err)

	state, err := s.persist.Load(s.artifactPath(mode, core.PeriodCovid))
	require.NoError(t, err)
	assert.NotEmpty(t, state.PerformanceHistory)
	assert.Equal(t, mode.InitialCapital, state.InitialCapital)

	last := state.PerformanceHistory[len(state.PerformanceHistory)-1]
	assert.LessOrEqual(t, last.Date, "2024-03-01")
}

func TestGenerateArchivesArtifact(t *testing.T) {
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	archiver := archive.NewArchiver(fs, zap.NewNop())

	s := testService(t, WithArchiver(archiver))
	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	key, err := archiver.Latest(context.Background(), core.ArtifactFilename(mode, core.PeriodCovid))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-15/precomputed_simulation_default_covid.json", key)
}

func TestRegenerateReplacesArtifact(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	path := s.artifactPath(mode, core.PeriodCovid)

	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	require.NoError(t, s.Regenerate(context.Background(), mode, core.PeriodCovid))

	state, err := s.persist.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, state.PerformanceHistory)
}

func TestRegenerateWithoutExistingArtifact(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")

	require.NoError(t, s.Regenerate(context.Background(), mode, core.PeriodAll))
	_, err := s.persist.Load(s.artifactPath(mode, core.PeriodAll))
	require.NoError(t, err)
}

func TestCurrentStateExtendsPastCutoff(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	state := s.CurrentState(context.Background(), mode, core.PeriodCovid)
	require.NotEmpty(t, state.PerformanceHistory)
	last := state.PerformanceHistory[len(state.PerformanceHistory)-1]
	assert.Greater(t, last.Date, "2024-03-01")
	assert.LessOrEqual(t, last.Date, "2024-04-15")
}

// Mirrors the binary's wiring: the provider is a FileCache over Synthetic,
// so the continuation fetch must reach past the range the generation run
// cached.
func TestCurrentStateExtendsWithCachedProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Simulation.DataDir = t.TempDir()
	cfg.Simulation.CutoffDate = "2024-03-01"
	cfg.Simulation.UniverseSize = 3

	now := func() time.Time {
		return time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	}
	provider := marketdata.NewFileCache(
		filepath.Join(cfg.Simulation.DataDir, "market_data.json"),
		marketdata.NewSynthetic(cfg.Simulation.Seed),
		zap.NewNop(),
	)
	s := New(cfg, provider, metrics.NewRegistry(), zap.NewNop(), WithNow(now))

	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	state := s.CurrentState(context.Background(), mode, core.PeriodCovid)
	require.NotEmpty(t, state.PerformanceHistory)
	last := state.PerformanceHistory[len(state.PerformanceHistory)-1]
	assert.Greater(t, last.Date, "2024-03-01")
	assert.LessOrEqual(t, last.Date, "2024-04-15")
}

func TestAnomalyCorrectionsReachRegistry(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	path := s.artifactPath(mode, core.PeriodCovid)

	// An artifact whose tail jumped 5x gets smoothed on load; the
	// correction must show up on the anomalies counter.
	artifact := `{"capital":1000000,"portfolio":{},"trade_log":[],` +
		`"performance_history":[` +
		`{"date":"2024-01-01","portfolio_value":1000000,"cash":1000000,"total_return":0},` +
		`{"date":"2024-01-08","portfolio_value":5000000,"cash":1000000,"total_return":4}],` +
		`"initial_capital":1000000}`
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o644))

	s.CurrentState(context.Background(), mode, core.PeriodCovid)

	families, err := s.reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != "fiveten_anomalies_corrected_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Greater(t, total, 0.0)
}

func TestCurrentStateGeneratesWhenMissing(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")

	state := s.CurrentState(context.Background(), mode, core.PeriodCovid)
	assert.NotEmpty(t, state.PerformanceHistory)

	_, err := os.Stat(s.artifactPath(mode, core.PeriodCovid))
	assert.NoError(t, err, "artifact should have been generated on demand")
}

func TestPerformanceHistorySortedAndCached(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	ctx := context.Background()
	history, err := s.PerformanceHistory(ctx, mode, core.PeriodCovid, timeline.All)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i-1].Date, history[i].Date)
	}

	// Removing the artifact does not disturb a fresh cache entry.
	require.NoError(t, os.Remove(s.artifactPath(mode, core.PeriodCovid)))
	again, err := s.PerformanceHistory(ctx, mode, core.PeriodCovid, timeline.All)
	require.NoError(t, err)
	assert.Equal(t, len(history), len(again))
}

func TestPortfolio(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	p, err := s.Portfolio(context.Background(), mode, core.PeriodCovid)
	require.NoError(t, err)
	assert.Greater(t, p.Capital, 0.0)
	assert.NotNil(t, p.Positions)
}

func TestMetricsAndDistribution(t *testing.T) {
	s := testService(t)
	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodCovid))

	ctx := context.Background()
	m, err := s.Metrics(ctx, mode, core.PeriodCovid, timeline.All)
	require.NoError(t, err)
	assert.Equal(t, mode.InitialCapital, m.StartingValue)
	assert.Greater(t, m.EndingValue, 0.0)

	dist, err := s.Distribution(ctx, mode, core.PeriodCovid, timeline.All)
	require.NoError(t, err)
	assert.NotEmpty(t, dist)
	for _, d := range dist {
		assert.InDelta(t, d.Total, d.Cash+d.Equity, 1e-6)
	}
}

func TestStatus(t *testing.T) {
	s := testService(t)
	st := s.Status()
	assert.Equal(t, "initializing", st.Status)
	assert.False(t, st.DataAvailable)
	assert.Equal(t, "2024-03-01", st.CutoffDate)

	mode := core.ModeByName("default")
	require.NoError(t, s.Generate(context.Background(), mode, core.PeriodAll))

	st = s.Status()
	assert.Equal(t, "ready", st.Status)
	assert.True(t, st.DataAvailable)
}
