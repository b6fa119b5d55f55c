// Package timeline projects a simulation state into a requested viewing
// window, including synthetic alternate-start views that replay history as
// if trading had begun fresh at a fixed anchor.
package timeline

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// Timeline selects a viewing window over a state's history.
type Timeline string

const (
	OneMonth   Timeline = "1m"
	ThreeMonth Timeline = "3m"
	SixMonth   Timeline = "6m"
	OneYear    Timeline = "1y"
	ThreeYear  Timeline = "3y"
	FiveYear   Timeline = "5y"
	DotCom     Timeline = "2000"
	Covid      Timeline = "covid"
	All        Timeline = "all"
)

// Names returns the known timeline selectors.
func Names() []Timeline {
	return []Timeline{OneMonth, ThreeMonth, SixMonth, OneYear, ThreeYear, FiveYear, DotCom, Covid, All}
}

var rollingDays = map[Timeline]int{
	OneMonth:   30,
	ThreeMonth: 90,
	SixMonth:   180,
	OneYear:    365,
	ThreeYear:  3 * 365,
	FiveYear:   5 * 365,
}

// rebaseCapital is the fresh all-cash starting value for special-start views.
const rebaseCapital = 1_000_000

// Equity ramp for special-start views: linear from zero up to a 60% equity
// cap over roughly 150 days.
const (
	equityCap      = 0.6
	equityRampDays = 150.0
)

// Projector derives windowed states. Projection is pure with respect to its
// inputs; results are memoized for the life of the process.
//
// The memo key covers the portfolio composition and the selector, not the
// full history. A history that changes without a composition change will
// serve a stale projection. The short-lived response cache in front of the
// service papers over most of this in practice.
type Projector struct {
	mu   sync.Mutex
	memo map[string]core.SimulationState
	now  func() time.Time
	log  *zap.Logger
}

// NewProjector creates a Projector. now supplies the reference time for
// rolling windows and is injectable for tests.
func NewProjector(now func() time.Time, log *zap.Logger) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{
		memo: make(map[string]core.SimulationState),
		now:  now,
		log:  log,
	}
}

// Project returns state windowed to tl. The input is never mutated. An
// unknown selector or a state with no history returns the input unchanged.
func (p *Projector) Project(state core.SimulationState, tl Timeline) core.SimulationState {
	if len(state.PerformanceHistory) == 0 {
		return state
	}

	cutoff, special, ok := p.cutoff(state, tl)
	if !ok {
		p.log.Warn("unknown timeline selector", zap.String("timeline", string(tl)))
		return state
	}

	key := memoKey(state.Portfolio, tl)
	p.mu.Lock()
	if cached, hit := p.memo[key]; hit {
		p.mu.Unlock()
		return cached.Clone()
	}
	p.mu.Unlock()

	result := p.project(state, cutoff, special)

	p.mu.Lock()
	p.memo[key] = result.Clone()
	p.mu.Unlock()
	return result
}

func (p *Projector) cutoff(state core.SimulationState, tl Timeline) (cutoff string, special, ok bool) {
	if days, rolling := rollingDays[tl]; rolling {
		return core.FormatDate(p.now().AddDate(0, 0, -days)), false, true
	}
	switch tl {
	case DotCom:
		return core.Period2000.StartDate(), true, true
	case Covid:
		return core.PeriodCovid.StartDate(), true, true
	case All:
		return state.PerformanceHistory[0].Date, false, true
	}
	return "", false, false
}

func (p *Projector) project(state core.SimulationState, cutoff string, special bool) core.SimulationState {
	history := make([]core.PerformanceSnapshot, 0, len(state.PerformanceHistory))
	for _, e := range state.PerformanceHistory {
		if e.Date >= cutoff {
			history = append(history, e)
		}
	}
	if len(history) == 0 {
		return core.EmptyState(core.ModeByName(core.ModeDefault).InitialCapital)
	}

	trades := make([]core.Trade, 0, len(state.TradeLog))
	for _, t := range state.TradeLog {
		if t.Date >= cutoff {
			if t.ProfitLoss != nil {
				pl := *t.ProfitLoss
				t.ProfitLoss = &pl
			}
			trades = append(trades, t)
		}
	}

	startValue := history[0].PortfolioValue
	if special {
		history, trades = rebase(history, trades)
		startValue = rebaseCapital
	}

	for i := range history {
		if startValue > 0 {
			history[i].TotalReturn = (history[i].PortfolioValue/startValue - 1) * 100
		} else {
			history[i].TotalReturn = 0
		}
	}

	return core.SimulationState{
		Capital:            history[len(history)-1].Cash,
		Portfolio:          state.Portfolio,
		TradeLog:           trades,
		PerformanceHistory: history,
		InitialCapital:     startValue,
	}
}

// rebase rewrites a special-start window as if it began all-cash at
// rebaseCapital: the first entry is forced to pure cash, each later entry
// carries the original day-over-day growth, and cash shifts into equity
// along the ramp. Trade sizes are rescaled in proportion to the capital
// change so the log stays consistent with the rebased values.
func rebase(orig []core.PerformanceSnapshot, trades []core.Trade) ([]core.PerformanceSnapshot, []core.Trade) {
	rebased := make([]core.PerformanceSnapshot, len(orig))
	rebased[0] = core.PerformanceSnapshot{
		Date:           orig[0].Date,
		PortfolioValue: rebaseCapital,
		Cash:           rebaseCapital,
	}

	start, err := core.ParseDate(orig[0].Date)
	if err != nil {
		start = time.Time{}
	}

	for i := 1; i < len(orig); i++ {
		growth := 1.0
		if orig[i-1].PortfolioValue > 0 {
			growth = orig[i].PortfolioValue / orig[i-1].PortfolioValue
		}

		equityRatio := 0.0
		if d, err := core.ParseDate(orig[i].Date); err == nil && !start.IsZero() {
			days := d.Sub(start).Hours() / 24
			equityRatio = days / equityRampDays
			if equityRatio > equityCap {
				equityRatio = equityCap
			}
		}

		value := rebased[i-1].PortfolioValue * growth
		rebased[i] = core.PerformanceSnapshot{
			Date:           orig[i].Date,
			PortfolioValue: value,
			Cash:           value * (1 - equityRatio),
		}
	}

	if orig[0].PortfolioValue > 0 {
		scale := rebaseCapital / orig[0].PortfolioValue
		for i := range trades {
			trades[i].Value *= scale
			trades[i].Shares *= scale
		}
	}
	return rebased, trades
}

// memoKey fingerprints the portfolio composition plus the selector.
func memoKey(portfolio map[string]core.Position, tl Timeline) string {
	symbols := make([]string, 0, len(portfolio))
	for s := range portfolio {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|", tl)
	for _, s := range symbols {
		pos := portfolio[s]
		fmt.Fprintf(h, "%s:%g:%g|", s, pos.Shares, pos.CostBasis)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
