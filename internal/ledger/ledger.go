// Package ledger owns capital, positions and the trade log, and applies
// buy/sell mutations. Failures are reported as boolean results, never errors:
// a rejected trade is a normal outcome of the strategy, not a fault.
package ledger

import (
	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// Ledger tracks cash, open positions and executed trades for one simulation.
// It is the only component that mutates portfolio state, and exactly one
// engine drives it at a time.
type Ledger struct {
	initialCapital float64
	capital        float64
	positions      map[string]core.Position
	trades         []core.Trade
	buyPct         float64
	sellPct        float64
}

// New creates an empty all-cash ledger for the mode.
func New(mode core.Mode) *Ledger {
	return &Ledger{
		initialCapital: mode.InitialCapital,
		capital:        mode.InitialCapital,
		positions:      make(map[string]core.Position),
		buyPct:         mode.TradeSizeBuyPct,
		sellPct:        mode.TradeSizeSellPct,
	}
}

// FromState rehydrates a ledger from a persisted state. The state is copied;
// the ledger never aliases the caller's maps or slices.
func FromState(state core.SimulationState, mode core.Mode) *Ledger {
	l := &Ledger{
		initialCapital: state.InitialCapital,
		capital:        state.Capital,
		positions:      make(map[string]core.Position, len(state.Portfolio)),
		trades:         make([]core.Trade, len(state.TradeLog)),
		buyPct:         mode.TradeSizeBuyPct,
		sellPct:        mode.TradeSizeSellPct,
	}
	if l.initialCapital <= 0 {
		l.initialCapital = mode.InitialCapital
	}
	for sym, pos := range state.Portfolio {
		l.positions[sym] = pos
	}
	for i, tr := range state.TradeLog {
		if tr.ProfitLoss != nil {
			pl := *tr.ProfitLoss
			tr.ProfitLoss = &pl
		}
		l.trades[i] = tr
	}
	return l
}

// Buy executes a buy sized at a fixed fraction of initial capital.
// Returns false without logging a trade when cash cannot cover the amount.
func (l *Ledger) Buy(symbol string, price float64, date string) bool {
	amount := l.initialCapital * l.buyPct
	if l.capital < amount {
		return false
	}

	shares := amount / price

	pos, held := l.positions[symbol]
	if held {
		pos.Shares += shares
		pos.CostBasis += amount
	} else {
		pos = core.Position{Shares: shares, CostBasis: amount}
	}
	l.positions[symbol] = pos

	l.capital -= amount
	l.trades = append(l.trades, core.Trade{
		Date:   date,
		Symbol: symbol,
		Action: core.TradeBuy,
		Price:  price,
		Shares: shares,
		Value:  amount,
	})
	return true
}

// Sell executes a sell sized at a fixed fraction of initial capital, capped
// at the shares actually held. Returns false when no position exists.
//
// Partial sells reduce cost basis by the ratio soldShares/(remaining+sold),
// i.e. against the pre-sale share count. A conventional average-cost removal
// would be equivalent here, but this exact form is the depended-upon
// behavior and is kept as is.
func (l *Ledger) Sell(symbol string, price float64, date string) bool {
	pos, held := l.positions[symbol]
	if !held || pos.Shares <= 0 {
		return false
	}

	amount := l.initialCapital * l.sellPct
	shares := amount / price
	if shares > pos.Shares {
		shares = pos.Shares
	}
	proceeds := shares * price

	pos.Shares -= shares

	var profitLoss float64
	if pos.Shares <= 0 {
		profitLoss = proceeds - pos.CostBasis
		delete(l.positions, symbol)
	} else {
		ratio := shares / (pos.Shares + shares)
		portion := pos.CostBasis * ratio
		pos.CostBasis -= portion
		profitLoss = proceeds - portion
		l.positions[symbol] = pos
	}

	l.capital += proceeds
	pl := profitLoss
	l.trades = append(l.trades, core.Trade{
		Date:       date,
		Symbol:     symbol,
		Action:     core.TradeSell,
		Price:      price,
		Shares:     shares,
		Value:      proceeds,
		ProfitLoss: &pl,
	})
	return true
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	return l.capital
}

// InitialCapital returns the capital the ledger started with.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// Holds reports whether a position is open in symbol.
func (l *Ledger) Holds(symbol string) bool {
	pos, held := l.positions[symbol]
	return held && pos.Shares > 0
}

// MarketValue returns cash plus the value of holdings at the given quotes.
// A symbol with no quote contributes zero to that valuation, not its prior
// mark; weekly series have gaps and that is the defined behavior.
func (l *Ledger) MarketValue(quotes map[string]float64) float64 {
	value := l.capital
	for sym, pos := range l.positions {
		if price, ok := quotes[sym]; ok {
			value += pos.Shares * price
		}
	}
	return value
}

// Positions returns a copy of the open positions.
func (l *Ledger) Positions() map[string]core.Position {
	out := make(map[string]core.Position, len(l.positions))
	for sym, pos := range l.positions {
		out[sym] = pos
	}
	return out
}

// Trades returns a copy of the executed trade log.
func (l *Ledger) Trades() []core.Trade {
	out := make([]core.Trade, len(l.trades))
	for i, tr := range l.trades {
		if tr.ProfitLoss != nil {
			pl := *tr.ProfitLoss
			tr.ProfitLoss = &pl
		}
		out[i] = tr
	}
	return out
}
