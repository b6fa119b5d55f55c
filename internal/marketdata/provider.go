// Package marketdata defines the price-series collaborator contract and a
// synthetic weekly generator used when no real feed is wired in.
package marketdata

import (
	"context"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// Provider supplies weekly price rows for a symbol set over an inclusive
// date range. Providers may omit dates or symbols with no data; callers
// must not assume continuity.
type Provider interface {
	// FetchWeekly returns rows for the symbols between start and end
	// (inclusive, wire-format dates).
	FetchWeekly(ctx context.Context, symbols []string, start, end string) ([]core.PricePoint, error)
}

// FallbackSymbols is used when a reconstruction has no held or recently
// traded symbols to follow.
var FallbackSymbols = []string{"SPY", "QQQ", "AAPL", "MSFT", "AMZN", "GOOGL"}

var universe = []string{
	// NASDAQ majors
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "NVDA", "AVGO", "ADBE",
	"COST", "PEP", "CSCO", "TMUS", "CMCSA", "NFLX", "AMD", "INTC", "QCOM", "INTU",
	"TXN", "PYPL", "ADP", "AMAT", "BKNG", "SBUX", "MDLZ", "GILD", "ADI", "REGN",
	// NYSE majors
	"JNJ", "JPM", "V", "PG", "HD", "MA", "UNH", "BAC", "DIS", "VZ",
	"XOM", "T", "KO", "PFE", "MRK", "CVX", "ABBV", "WMT", "CRM", "ORCL",
}

// Universe returns up to max symbols from the simulated stock universe.
func Universe(max int) []string {
	if max <= 0 || max >= len(universe) {
		max = len(universe)
	}
	out := make([]string, max)
	copy(out, universe[:max])
	return out
}
