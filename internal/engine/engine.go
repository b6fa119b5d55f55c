// Package engine drives week-by-week replay of a price series through the
// signal detector and portfolio ledger, producing a performance history.
package engine

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
	"github.com/CodingFreeze/FiveTenAlgo/internal/ledger"
	"github.com/CodingFreeze/FiveTenAlgo/internal/signal"
)

// maxBuysPerDate caps how many buy candidates execute on a single date,
// to avoid concentrating capital into one volatile week.
const maxBuysPerDate = 10

// Engine replays price series against one mode's parameters. The random
// source used for buy-candidate down-sampling is injected so runs are
// reproducible under a fixed seed.
type Engine struct {
	mode     core.Mode
	detector signal.Detector
	rng      *rand.Rand
	log      *zap.Logger
}

// New creates an engine for the mode. rng must not be shared with a
// concurrent engine.
func New(mode core.Mode, rng *rand.Rand, log *zap.Logger) *Engine {
	return &Engine{
		mode:     mode,
		detector: signal.NewDetector(mode),
		rng:      rng,
		log:      log,
	}
}

type candidate struct {
	symbol string
	price  float64
}

// Run replays series onto state in ascending date order and returns the
// extended state. The input state is never mutated; the result carries the
// input's trade log and performance history plus everything the replay adds.
func (e *Engine) Run(state core.SimulationState, series []core.PricePoint) core.SimulationState {
	book := ledger.FromState(state, e.mode)

	quotesByDate := groupByDate(series)
	dates := make([]string, 0, len(quotesByDate))
	for date := range quotesByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	history := make([]core.PerformanceSnapshot, len(state.PerformanceHistory), len(state.PerformanceHistory)+len(dates))
	copy(history, state.PerformanceHistory)

	// Running per-symbol price table, filled in date order.
	seen := make(map[string]map[string]float64)

	for _, date := range dates {
		quotes := quotesByDate[date]
		seen[date] = quotes

		weekAgo := core.WeekBefore(date)
		weekAgoQuotes := seen[weekAgo]

		if len(weekAgoQuotes) > 0 {
			var buys, sells []candidate

			for _, sym := range sortedSymbols(quotes) {
				price := quotes[sym]
				prior, ok := weekAgoQuotes[sym]
				if !ok {
					continue // no week-ago quote: no evaluation
				}
				if e.detector.Buy(price, prior) {
					buys = append(buys, candidate{sym, price})
				} else if book.Holds(sym) && e.detector.Sell(price, prior) {
					sells = append(sells, candidate{sym, price})
				}
			}

			if len(buys) > maxBuysPerDate {
				e.rng.Shuffle(len(buys), func(i, j int) {
					buys[i], buys[j] = buys[j], buys[i]
				})
				e.log.Debug("down-sampled buy candidates",
					zap.String("date", date),
					zap.Int("candidates", len(buys)),
					zap.Int("kept", maxBuysPerDate))
				buys = buys[:maxBuysPerDate]
			}

			for _, c := range buys {
				// Re-checked per buy: earlier buys on the same date can
				// exhaust cash.
				if book.Cash() > book.InitialCapital()*e.mode.TradeSizeBuyPct {
					book.Buy(c.symbol, c.price, date)
				}
			}
			for _, c := range sells {
				book.Sell(c.symbol, c.price, date)
			}
		}

		value := book.MarketValue(quotes)
		history = append(history, core.PerformanceSnapshot{
			Date:           date,
			PortfolioValue: value,
			Cash:           book.Cash(),
			TotalReturn:    (value/book.InitialCapital() - 1) * 100,
		})
	}

	return core.SimulationState{
		Capital:            book.Cash(),
		Portfolio:          book.Positions(),
		TradeLog:           book.Trades(),
		PerformanceHistory: history,
		InitialCapital:     book.InitialCapital(),
	}
}

func groupByDate(series []core.PricePoint) map[string]map[string]float64 {
	byDate := make(map[string]map[string]float64)
	for _, p := range series {
		if !p.IsValid() {
			continue
		}
		day, ok := byDate[p.Date]
		if !ok {
			day = make(map[string]float64)
			byDate[p.Date] = day
		}
		day[p.Symbol] = p.Price
	}
	return byDate
}

func sortedSymbols(quotes map[string]float64) []string {
	symbols := make([]string, 0, len(quotes))
	for sym := range quotes {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}
