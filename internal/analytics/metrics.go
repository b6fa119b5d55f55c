// Package analytics computes presentation metrics over a performance history.
package analytics

import (
	"math"
	"sort"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

const (
	riskFreeRate   = 0.02
	periodsPerYear = 252
)

// Metrics summarizes a windowed performance history.
type Metrics struct {
	TotalReturn   float64 `json:"total_return"`
	StartingValue float64 `json:"starting_value"`
	EndingValue   float64 `json:"ending_value"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	Volatility    float64 `json:"volatility"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
}

// DistributionPoint is the cash/equity split of the portfolio at one date.
type DistributionPoint struct {
	Date   string  `json:"date"`
	Cash   float64 `json:"cash"`
	Equity float64 `json:"equity"`
	Total  float64 `json:"total"`
}

// Compute derives metrics from state's performance history. defaultCapital
// stands in for the starting and ending value when the history is empty.
func Compute(state core.SimulationState, defaultCapital float64) Metrics {
	history := state.PerformanceHistory
	if len(history) == 0 {
		return Metrics{
			StartingValue: defaultCapital,
			EndingValue:   defaultCapital,
		}
	}

	starting := state.InitialCapital
	if starting <= 0 {
		starting = defaultCapital
	}
	ending := history[len(history)-1].PortfolioValue

	m := Metrics{
		StartingValue: starting,
		EndingValue:   ending,
		MaxDrawdown:   maxDrawdown(history),
	}
	if starting > 0 {
		m.TotalReturn = (ending/starting - 1) * 100
	}

	returns := periodReturns(history)
	m.Volatility = stdDev(returns)
	if m.Volatility > 0 {
		avg := mean(returns)
		m.SharpeRatio = (avg - riskFreeRate/periodsPerYear) / m.Volatility * math.Sqrt(periodsPerYear)
	}
	return m
}

// Distribution returns the cash/equity split per history entry, in date order.
func Distribution(state core.SimulationState) []DistributionPoint {
	out := make([]DistributionPoint, 0, len(state.PerformanceHistory))
	for _, e := range state.PerformanceHistory {
		out = append(out, DistributionPoint{
			Date:   e.Date,
			Cash:   e.Cash,
			Equity: e.PortfolioValue - e.Cash,
			Total:  e.PortfolioValue,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// maxDrawdown is the largest peak-to-trough decline, in percent.
func maxDrawdown(history []core.PerformanceSnapshot) float64 {
	peak := history[0].PortfolioValue
	var maxDD float64
	for _, e := range history {
		if e.PortfolioValue > peak {
			peak = e.PortfolioValue
		}
		if peak > 0 {
			dd := (peak - e.PortfolioValue) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// periodReturns is the percentage change between consecutive entries.
func periodReturns(history []core.PerformanceSnapshot) []float64 {
	if len(history) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].PortfolioValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (history[i].PortfolioValue/prev-1)*100)
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the population standard deviation.
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var variance float64
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)))
}
