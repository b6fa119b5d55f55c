// Package service orchestrates artifact generation, continuation and
// presentation accessors behind the HTTP layer.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/analytics"
	"github.com/CodingFreeze/FiveTenAlgo/internal/config"
	"github.com/CodingFreeze/FiveTenAlgo/internal/continuation"
	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/engine"
	"github.com/CodingFreeze/FiveTenAlgo/internal/marketdata"
	"github.com/CodingFreeze/FiveTenAlgo/internal/metrics"
	"github.com/CodingFreeze/FiveTenAlgo/internal/persist"
	"github.com/CodingFreeze/FiveTenAlgo/internal/storage/archive"
	"github.com/CodingFreeze/FiveTenAlgo/internal/timeline"
)

// Portfolio is the current holdings view served by the API.
type Portfolio struct {
	Capital   float64                  `json:"capital"`
	Positions map[string]core.Position `json:"portfolio"`
}

// Status reports whether precomputed data is ready to serve.
type Status struct {
	Status        string `json:"status"`
	DataAvailable bool   `json:"precomputed_data_available"`
	CutoffDate    string `json:"cutoff_date"`
}

// Service wires the simulation engine, persistence, continuation and
// timeline projection together and serves windowed views of the result.
type Service struct {
	cfg       *config.Config
	log       *zap.Logger
	reg       *metrics.Registry
	persist   *persist.Manager
	provider  marketdata.Provider
	reconstr  *continuation.Reconstructor
	projector *timeline.Projector
	archiver  *archive.Archiver
	cache     *ttlCache
	now       func() time.Time

	// Reconstruction is unsafe to run twice concurrently for the same
	// artifact: both runs replay onto the same loaded state.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver enables artifact archival after generation.
func WithArchiver(a *archive.Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithNow overrides the reference clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(cfg *config.Config, provider marketdata.Provider, reg *metrics.Registry, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	mgr := persist.NewManager(log)
	s := &Service{
		cfg:      cfg,
		log:      log,
		reg:      reg,
		persist:  mgr,
		provider: provider,
		reconstr: continuation.New(cfg.Simulation.DataDir, cfg.Simulation.CutoffDate,
			cfg.Simulation.Seed, mgr, provider, log),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	if reg != nil {
		mgr.OnAnomaly = reg.RecordAnomaly
		s.reconstr.OnAnomaly = reg.RecordAnomaly
	}
	for _, opt := range opts {
		opt(s)
	}
	s.projector = timeline.NewProjector(s.now, log)
	s.cache = newTTLCache(cfg.Cache.TTL, s.now)
	return s
}

func (s *Service) artifactPath(mode core.Mode, period core.Period) string {
	return filepath.Join(s.cfg.Simulation.DataDir, core.ArtifactFilename(mode, period))
}

// Generate builds the precomputed artifact for one mode and period from
// scratch and persists it.
func (s *Service) Generate(ctx context.Context, mode core.Mode, period core.Period) error {
	start := period.StartDate()
	end := s.cfg.Simulation.CutoffDate

	series, err := s.provider.FetchWeekly(ctx, marketdata.Universe(s.cfg.Simulation.UniverseSize), start, end)
	if err != nil {
		return core.WrapError(core.ErrProviderFailed, err)
	}
	if len(series) == 0 {
		return core.WrapError(core.ErrNoData,
			fmt.Errorf("no market data between %s and %s", start, end))
	}

	rng := rand.New(rand.NewSource(s.cfg.Simulation.Seed))
	state := engine.New(mode, rng, s.log).Run(core.EmptyState(mode.InitialCapital), series)

	path := s.artifactPath(mode, period)
	if err := s.persist.Save(path, state); err != nil {
		return err
	}
	s.log.Info("generated precomputed artifact",
		zap.String("mode", mode.Name),
		zap.String("period", string(period)),
		zap.Int("history", len(state.PerformanceHistory)),
		zap.Int("trades", len(state.TradeLog)))
	if s.reg != nil {
		s.reg.RecordSimulation(mode.Name, string(period))
	}

	if s.archiver != nil {
		if _, err := s.archiver.Snapshot(ctx, core.ArtifactFilename(mode, period), state, s.now()); err != nil {
			s.log.Warn("failed to archive artifact", zap.Error(err))
		} else if s.reg != nil {
			s.reg.RecordArchive()
		}
	}
	return nil
}

// Regenerate discards the existing artifact for mode and period, including
// its backup, and rebuilds it from scratch. Cached responses are cleared so
// the next read serves the fresh state.
func (s *Service) Regenerate(ctx context.Context, mode core.Mode, period core.Period) error {
	path := s.artifactPath(mode, period)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.WrapError(core.ErrArtifactSave, err)
	}
	if err := os.Remove(path + persist.BackupSuffix); err != nil && !os.IsNotExist(err) {
		return core.WrapError(core.ErrArtifactSave, err)
	}
	s.cache.clear()
	return s.Generate(ctx, mode, period)
}

// GenerateAll builds artifacts for every mode and period combination.
func (s *Service) GenerateAll(ctx context.Context) error {
	for _, name := range core.ModeNames() {
		for _, period := range []core.Period{core.PeriodAll, core.Period2000, core.PeriodCovid} {
			if err := s.Generate(ctx, core.ModeByName(name), period); err != nil {
				return err
			}
		}
	}
	return nil
}

// precomputed loads the artifact for mode and period, generating it first
// when missing or unreadable.
func (s *Service) precomputed(ctx context.Context, mode core.Mode, period core.Period) core.SimulationState {
	path := s.artifactPath(mode, period)
	state, err := s.persist.Load(path)
	if err == nil {
		return state
	}
	s.log.Warn("precomputed artifact unavailable, regenerating",
		zap.String("path", path), zap.Error(err))
	os.Remove(path)

	if err := s.Generate(ctx, mode, period); err != nil {
		s.log.Error("failed to generate artifact", zap.Error(err))
		return core.EmptyState(mode.InitialCapital)
	}
	state, err = s.persist.Load(path)
	if err != nil {
		return core.EmptyState(mode.InitialCapital)
	}
	return state
}

// CurrentState returns the precomputed state extended through today.
func (s *Service) CurrentState(ctx context.Context, mode core.Mode, period core.Period) core.SimulationState {
	key := mode.Name + "/" + string(period)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	pre := s.precomputed(ctx, mode, period)

	start := s.now()
	state := s.reconstr.Extend(ctx, pre, mode, core.FormatDate(s.now()))
	if s.reg != nil {
		status := "ok"
		if len(state.PerformanceHistory) == len(pre.PerformanceHistory) {
			status = "unchanged"
		}
		s.reg.RecordReconstruction(mode.Name, status, time.Since(start).Seconds())
	}
	return state
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if _, ok := s.locks[key]; !ok {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

// projected returns the current state for mode and period, windowed to tl.
func (s *Service) projected(ctx context.Context, mode core.Mode, period core.Period, tl timeline.Timeline) core.SimulationState {
	return s.projector.Project(s.CurrentState(ctx, mode, period), tl)
}

// PerformanceHistory returns the windowed performance history, sorted by date.
func (s *Service) PerformanceHistory(ctx context.Context, mode core.Mode, period core.Period, tl timeline.Timeline) ([]core.PerformanceSnapshot, error) {
	key := fmt.Sprintf("performance_history_%s_%s_%s", mode.Name, period, tl)
	v, err := s.cached(key, func() (any, error) {
		history := s.projected(ctx, mode, period, tl).PerformanceHistory
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Date < history[j].Date
		})
		return history, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.PerformanceSnapshot), nil
}

// TradeLog returns the windowed trade log.
func (s *Service) TradeLog(ctx context.Context, mode core.Mode, period core.Period, tl timeline.Timeline) ([]core.Trade, error) {
	key := fmt.Sprintf("trade_log_%s_%s_%s", mode.Name, period, tl)
	v, err := s.cached(key, func() (any, error) {
		return s.projected(ctx, mode, period, tl).TradeLog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Trade), nil
}

// Portfolio returns the current holdings and cash for mode and period.
func (s *Service) Portfolio(ctx context.Context, mode core.Mode, period core.Period) (Portfolio, error) {
	key := fmt.Sprintf("portfolio_%s_%s", mode.Name, period)
	v, err := s.cached(key, func() (any, error) {
		state := s.CurrentState(ctx, mode, period)
		return Portfolio{Capital: state.Capital, Positions: state.Portfolio}, nil
	})
	if err != nil {
		return Portfolio{}, err
	}
	return v.(Portfolio), nil
}

// Metrics returns performance metrics for the windowed state.
func (s *Service) Metrics(ctx context.Context, mode core.Mode, period core.Period, tl timeline.Timeline) (analytics.Metrics, error) {
	key := fmt.Sprintf("metrics_%s_%s_%s", mode.Name, period, tl)
	v, err := s.cached(key, func() (any, error) {
		state := s.projected(ctx, mode, period, tl)
		return analytics.Compute(state, mode.InitialCapital), nil
	})
	if err != nil {
		return analytics.Metrics{}, err
	}
	return v.(analytics.Metrics), nil
}

// Distribution returns the cash/equity split over time for the windowed state.
func (s *Service) Distribution(ctx context.Context, mode core.Mode, period core.Period, tl timeline.Timeline) ([]analytics.DistributionPoint, error) {
	key := fmt.Sprintf("distribution_%s_%s_%s", mode.Name, period, tl)
	v, err := s.cached(key, func() (any, error) {
		return analytics.Distribution(s.projected(ctx, mode, period, tl)), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]analytics.DistributionPoint), nil
}

// Status reports readiness based on the default artifact's presence.
func (s *Service) Status() Status {
	path := s.artifactPath(core.ModeByName(core.ModeDefault), core.PeriodAll)
	_, err := os.Stat(path)
	available := err == nil

	status := "initializing"
	if available {
		status = "ready"
	}
	return Status{
		Status:        status,
		DataAvailable: available,
		CutoffDate:    s.cfg.Simulation.CutoffDate,
	}
}

func (s *Service) cached(key string, fetch func() (any, error)) (any, error) {
	if s.reg != nil {
		if s.cache.hit(key) {
			s.reg.RecordCache("response", "hit")
		} else {
			s.reg.RecordCache("response", "miss")
		}
	}
	return s.cache.get(key, fetch)
}
