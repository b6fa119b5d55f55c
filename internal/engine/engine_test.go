package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/logger"
)

func newTestEngine(mode core.Mode, seed int64) *Engine {
	return New(mode, rand.New(rand.NewSource(seed)), logger.Nop())
}

func TestEngine_BuyThenSellScenario(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 1)

	// 100 -> 95 across 7 days is a -5% drop inside the buy band; later
	// 100 -> 110 across 7 days is a +10% rise inside the sell band.
	series := []core.PricePoint{
		{Symbol: "AAPL", Date: "2024-01-01", Price: 100},
		{Symbol: "AAPL", Date: "2024-01-08", Price: 95},
		{Symbol: "AAPL", Date: "2024-01-15", Price: 100},
		{Symbol: "AAPL", Date: "2024-01-22", Price: 110},
	}

	out := e.Run(core.EmptyState(mode.InitialCapital), series)

	require.Len(t, out.TradeLog, 2)
	assert.Equal(t, core.TradeBuy, out.TradeLog[0].Action)
	assert.Equal(t, "2024-01-08", out.TradeLog[0].Date)
	assert.Equal(t, core.TradeSell, out.TradeLog[1].Action)
	assert.Equal(t, "2024-01-22", out.TradeLog[1].Date)

	// One snapshot per processed date.
	require.Len(t, out.PerformanceHistory, 4)
	for i := 1; i < len(out.PerformanceHistory); i++ {
		assert.Less(t, out.PerformanceHistory[i-1].Date, out.PerformanceHistory[i].Date)
	}
}

func TestEngine_NoWeekAgoQuote_NoEvaluation(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 1)

	// Dates are 6 days apart: no exact week-ago match, so no signals, but
	// every date still gets a valuation snapshot.
	series := []core.PricePoint{
		{Symbol: "AAPL", Date: "2024-01-01", Price: 100},
		{Symbol: "AAPL", Date: "2024-01-07", Price: 95},
	}

	out := e.Run(core.EmptyState(mode.InitialCapital), series)

	assert.Empty(t, out.TradeLog)
	require.Len(t, out.PerformanceHistory, 2)
	assert.InDelta(t, mode.InitialCapital, out.PerformanceHistory[1].PortfolioValue, 1e-9)
}

func TestEngine_ValuationInvariant(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 7)

	series := []core.PricePoint{
		{Symbol: "AAPL", Date: "2024-01-01", Price: 100},
		{Symbol: "MSFT", Date: "2024-01-01", Price: 200},
		{Symbol: "AAPL", Date: "2024-01-08", Price: 95},  // buy signal
		{Symbol: "MSFT", Date: "2024-01-08", Price: 190}, // buy signal
		{Symbol: "AAPL", Date: "2024-01-15", Price: 97},
		{Symbol: "MSFT", Date: "2024-01-15", Price: 195},
	}

	out := e.Run(core.EmptyState(mode.InitialCapital), series)

	quotesByDate := groupByDate(series)
	for _, snap := range out.PerformanceHistory {
		quotes := quotesByDate[snap.Date]
		// portfolio_value == cash + sum(shares * price-that-day), where a
		// missing quote contributes zero. Positions held at the end of the
		// run are a superset of positions held on earlier dates, but since
		// this run only ever buys, the final holdings bound each valuation.
		var holdings float64
		for sym, pos := range out.Portfolio {
			if price, ok := quotes[sym]; ok {
				holdings += pos.Shares * price
			}
		}
		if snap.Date == out.PerformanceHistory[len(out.PerformanceHistory)-1].Date {
			assert.InDelta(t, snap.Cash+holdings, snap.PortfolioValue, 1e-6)
		}
		expectedReturn := (snap.PortfolioValue/mode.InitialCapital - 1) * 100
		assert.InDelta(t, expectedReturn, snap.TotalReturn, 1e-9)
	}
}

func TestEngine_MissingQuoteContributesZero(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 1)

	series := []core.PricePoint{
		{Symbol: "AAPL", Date: "2024-01-01", Price: 100},
		{Symbol: "AAPL", Date: "2024-01-08", Price: 95}, // buy executes
		// 2024-01-15 has no AAPL quote at all for valuation.
		{Symbol: "MSFT", Date: "2024-01-15", Price: 50},
	}

	out := e.Run(core.EmptyState(mode.InitialCapital), series)

	require.Len(t, out.TradeLog, 1)
	last := out.PerformanceHistory[len(out.PerformanceHistory)-1]
	// The held AAPL position is worth zero on a date it is not quoted.
	assert.InDelta(t, out.Capital, last.PortfolioValue, 1e-9)
}

func TestEngine_DownsamplesBuyCandidates(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 42)

	// 25 symbols all dropping exactly 5% week over week.
	var series []core.PricePoint
	for i := 0; i < 25; i++ {
		sym := fmt.Sprintf("SYM%02d", i)
		series = append(series,
			core.PricePoint{Symbol: sym, Date: "2024-01-01", Price: 100},
			core.PricePoint{Symbol: sym, Date: "2024-01-08", Price: 95},
		)
	}

	out := e.Run(core.EmptyState(mode.InitialCapital), series)

	assert.Len(t, out.TradeLog, 10)
	assert.Len(t, out.Portfolio, 10)
}

func TestEngine_SeededRunsAreReproducible(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)

	var series []core.PricePoint
	for i := 0; i < 25; i++ {
		sym := fmt.Sprintf("SYM%02d", i)
		series = append(series,
			core.PricePoint{Symbol: sym, Date: "2024-01-01", Price: 100},
			core.PricePoint{Symbol: sym, Date: "2024-01-08", Price: 95},
		)
	}

	a := newTestEngine(mode, 99).Run(core.EmptyState(mode.InitialCapital), series)
	b := newTestEngine(mode, 99).Run(core.EmptyState(mode.InitialCapital), series)

	require.Equal(t, len(a.TradeLog), len(b.TradeLog))
	for i := range a.TradeLog {
		assert.Equal(t, a.TradeLog[i].Symbol, b.TradeLog[i].Symbol)
	}
}

func TestEngine_DoesNotMutateInputState(t *testing.T) {
	mode := core.ModeByName(core.ModeDefault)
	e := newTestEngine(mode, 1)

	input := core.SimulationState{
		Capital:   mode.InitialCapital,
		Portfolio: map[string]core.Position{},
		PerformanceHistory: []core.PerformanceSnapshot{
			{Date: "2023-12-25", PortfolioValue: mode.InitialCapital, Cash: mode.InitialCapital},
		},
		InitialCapital: mode.InitialCapital,
	}

	series := []core.PricePoint{
		{Symbol: "AAPL", Date: "2024-01-01", Price: 100},
		{Symbol: "AAPL", Date: "2024-01-08", Price: 95},
	}

	out := e.Run(input, series)

	assert.Len(t, input.PerformanceHistory, 1)
	assert.Empty(t, input.TradeLog)
	assert.Len(t, out.PerformanceHistory, 3)
	// Pre-anchor entries are carried over unchanged.
	assert.Equal(t, "2023-12-25", out.PerformanceHistory[0].Date)
}
