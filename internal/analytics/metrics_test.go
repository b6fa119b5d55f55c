package analytics

import (
	"math"
	"testing"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

func historyState(values ...float64) core.SimulationState {
	state := core.EmptyState(values[0])
	dates := []string{"2024-01-07", "2024-01-14", "2024-01-21", "2024-01-28", "2024-02-04"}
	for i, v := range values {
		state.PerformanceHistory = append(state.PerformanceHistory, core.PerformanceSnapshot{
			Date:           dates[i],
			PortfolioValue: v,
			Cash:           v / 2,
		})
	}
	return state
}

func TestCompute_Empty(t *testing.T) {
	m := Compute(core.EmptyState(1_000_000), 1_000_000)
	if m.TotalReturn != 0 {
		t.Errorf("TotalReturn = %f, want 0", m.TotalReturn)
	}
	if m.StartingValue != 1_000_000 || m.EndingValue != 1_000_000 {
		t.Errorf("empty history should fall back to default capital, got %+v", m)
	}
}

func TestCompute_TotalReturn(t *testing.T) {
	m := Compute(historyState(1_000_000, 1_100_000), 1_000_000)
	if math.Abs(m.TotalReturn-10) > 0.001 {
		t.Errorf("TotalReturn = %f, want 10", m.TotalReturn)
	}
	if m.EndingValue != 1_100_000 {
		t.Errorf("EndingValue = %f, want 1100000", m.EndingValue)
	}
}

func TestCompute_MaxDrawdown(t *testing.T) {
	// Peak 1.2M, trough 0.9M: drawdown 25%.
	m := Compute(historyState(1_000_000, 1_200_000, 900_000, 1_050_000), 1_000_000)
	if math.Abs(m.MaxDrawdown-25) > 0.001 {
		t.Errorf("MaxDrawdown = %f, want 25", m.MaxDrawdown)
	}
}

func TestCompute_FlatHistoryNoSharpe(t *testing.T) {
	m := Compute(historyState(1_000_000, 1_000_000, 1_000_000), 1_000_000)
	if m.Volatility != 0 {
		t.Errorf("Volatility = %f, want 0", m.Volatility)
	}
	if m.SharpeRatio != 0 {
		t.Errorf("SharpeRatio = %f, want 0 when volatility is 0", m.SharpeRatio)
	}
}

func TestCompute_Volatility(t *testing.T) {
	// Returns: +10%, -10%. Mean 0, population std 10.
	m := Compute(historyState(1_000_000, 1_100_000, 990_000), 1_000_000)
	if math.Abs(m.Volatility-10) > 0.001 {
		t.Errorf("Volatility = %f, want 10", m.Volatility)
	}

	wantSharpe := (0 - riskFreeRate/periodsPerYear) / 10 * math.Sqrt(periodsPerYear)
	if math.Abs(m.SharpeRatio-wantSharpe) > 1e-9 {
		t.Errorf("SharpeRatio = %f, want %f", m.SharpeRatio, wantSharpe)
	}
}

func TestCompute_ZeroInitialCapitalFallsBack(t *testing.T) {
	state := historyState(1_000_000, 1_100_000)
	state.InitialCapital = 0
	m := Compute(state, 500_000)
	if m.StartingValue != 500_000 {
		t.Errorf("StartingValue = %f, want fallback 500000", m.StartingValue)
	}
}

func TestDistribution(t *testing.T) {
	state := historyState(1_000_000, 1_100_000)
	dist := Distribution(state)
	if len(dist) != 2 {
		t.Fatalf("len = %d, want 2", len(dist))
	}
	first := dist[0]
	if first.Cash != 500_000 || first.Equity != 500_000 || first.Total != 1_000_000 {
		t.Errorf("unexpected split: %+v", first)
	}
	if dist[0].Date > dist[1].Date {
		t.Error("distribution should be sorted by date")
	}
}

func TestDistribution_Empty(t *testing.T) {
	if d := Distribution(core.EmptyState(1_000_000)); len(d) != 0 {
		t.Errorf("len = %d, want 0", len(d))
	}
}
