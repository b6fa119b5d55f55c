// Package continuation extends a precomputed simulation through the period
// after its last recorded date, without mutating the stored artifact.
package continuation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/engine"
	"github.com/CodingFreeze/FiveTenAlgo/internal/marketdata"
	"github.com/CodingFreeze/FiveTenAlgo/internal/persist"
)

// Continuation smoothing assumes modest growth rather than the larger factor
// used for stored artifacts, since freshly generated points are more likely
// to carry feed glitches than real moves.
const continuationGrowth = 1.01

// recentTradeWindow bounds how far back the trade log is scanned for symbols
// the strategy may have exited but should keep following.
const recentTradeWindow = 100

// Reconstructor replays the trading engine over post-artifact price data.
// It is deliberately conservative: any failure along the way degrades to
// returning the input state unchanged.
type Reconstructor struct {
	dataDir  string
	cutoff   string
	seed     int64
	persist  *persist.Manager
	provider marketdata.Provider
	log      *zap.Logger

	// OnAnomaly, when set, is invoked with a kind label whenever a
	// corrupted tail entry is dropped before the replay.
	OnAnomaly func(kind string)
}

// New creates a Reconstructor. cutoff is the anchor used when the input
// state has no performance history at all.
func New(dataDir, cutoff string, seed int64, mgr *persist.Manager, provider marketdata.Provider, log *zap.Logger) *Reconstructor {
	return &Reconstructor{
		dataDir:  dataDir,
		cutoff:   cutoff,
		seed:     seed,
		persist:  mgr,
		provider: provider,
		log:      log,
	}
}

// Extend continues state from its last recorded date through endDate and
// returns the merged state. The input state is never modified. On any
// failure the input state is returned as-is.
func (r *Reconstructor) Extend(ctx context.Context, state core.SimulationState, mode core.Mode, endDate string) core.SimulationState {
	working := state.Clone()

	anchor := r.cutoff
	if last, ok := working.LastSnapshot(); ok {
		anchor = last.Date
		if r.tailAnomalous(working.PerformanceHistory) {
			r.log.Warn("dropping tail of performance history",
				zap.Error(core.ErrAnomalousValue),
				zap.String("mode", mode.Name),
				zap.String("date", last.Date),
				zap.Float64("portfolio_value", last.PortfolioValue))
			if r.OnAnomaly != nil {
				r.OnAnomaly("tail")
			}
			working.PerformanceHistory = working.PerformanceHistory[:len(working.PerformanceHistory)-1]
			if prev, ok := working.LastSnapshot(); ok {
				anchor = prev.Date
			}
		}
	}

	tempFile := filepath.Join(r.dataDir, fmt.Sprintf("temp_precomputed_%s_%s.json", mode.Name, uuid.NewString()[:8]))
	updatedFile := tempFile + ".updated"
	defer r.cleanup(tempFile, updatedFile)

	if err := r.persist.Save(tempFile, working); err != nil {
		r.log.Warn("failed to stage state for continuation", zap.Error(err))
		return state
	}
	loaded, err := r.persist.Load(tempFile)
	if err != nil {
		r.log.Warn("failed to reload staged state", zap.Error(err))
		return state
	}

	series, err := r.fetchSeries(ctx, loaded, anchor, endDate)
	if err != nil {
		r.log.Warn("failed to fetch continuation data", zap.Error(err))
		return state
	}

	rng := rand.New(rand.NewSource(r.seed))
	extended := engine.New(mode, rng, r.log).Run(loaded, series)

	if err := r.persist.Save(updatedFile, extended); err != nil {
		r.log.Warn("failed to save extended state", zap.Error(err))
		return state
	}
	final, err := r.persist.Load(updatedFile)
	if err != nil {
		r.log.Warn("failed to reload extended state", zap.Error(err))
		return state
	}

	final.PerformanceHistory = r.persist.SmoothHistory(final.PerformanceHistory, continuationGrowth)
	return final
}

// tailAnomalous reports whether the final history entry carries an
// implausible portfolio value: above the hard cap for a real account, or
// more than double the prior entry.
func (r *Reconstructor) tailAnomalous(history []core.PerformanceSnapshot) bool {
	n := len(history)
	if n == 0 {
		return false
	}
	last := history[n-1].PortfolioValue
	if last > 1e8 {
		return true
	}
	return n > 1 && last > 2*history[n-2].PortfolioValue
}

// fetchSeries downloads weekly rows strictly after anchor through endDate
// for the symbols the continuation should follow: current holdings plus
// anything traded recently, falling back to a broad default set.
func (r *Reconstructor) fetchSeries(ctx context.Context, state core.SimulationState, anchor, endDate string) ([]core.PricePoint, error) {
	anchorT, err := core.ParseDate(anchor)
	if err != nil {
		return nil, core.WrapError(core.ErrNoData, err)
	}
	start := core.FormatDate(anchorT.AddDate(0, 0, 1))
	if start > endDate {
		return nil, nil
	}
	return r.provider.FetchWeekly(ctx, r.followedSymbols(state), start, endDate)
}

func (r *Reconstructor) followedSymbols(state core.SimulationState) []string {
	symbols := state.HeldSymbols()
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		seen[s] = true
	}

	trades := state.TradeLog
	if len(trades) > recentTradeWindow {
		trades = trades[len(trades)-recentTradeWindow:]
	}
	for _, t := range trades {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}

	if len(symbols) == 0 {
		return marketdata.FallbackSymbols
	}
	return symbols
}

func (r *Reconstructor) cleanup(paths ...string) {
	for _, p := range paths {
		for _, f := range []string{p, p + persist.BackupSuffix} {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				r.log.Warn("could not remove scratch file", zap.String("path", f), zap.Error(err))
			}
		}
	}
}
