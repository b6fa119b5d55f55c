package core

import (
	"testing"
)

func TestPricePoint_IsValid(t *testing.T) {
	p := PricePoint{Symbol: "AAPL", Date: "2024-01-05", Price: 182.5}
	if !p.IsValid() {
		t.Error("expected valid price point")
	}

	invalid := PricePoint{Symbol: "", Price: 0}
	if invalid.IsValid() {
		t.Error("expected invalid price point")
	}
}

func TestWeekBefore(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-08", "2024-01-01"},
		{"2020-03-13", "2020-03-06"},
		{"2000-01-01", "1999-12-25"},
		{"not-a-date", ""},
	}
	for _, tt := range tests {
		if got := WeekBefore(tt.date); got != tt.want {
			t.Errorf("WeekBefore(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestModeByName(t *testing.T) {
	m := ModeByName("aggressive")
	if m.Name != ModeAggressive {
		t.Errorf("Name = %s, want aggressive", m.Name)
	}
	if m.TradeSizeBuyPct != 0.002 {
		t.Errorf("TradeSizeBuyPct = %v, want 0.002", m.TradeSizeBuyPct)
	}

	// Unknown names fall back to default
	fallback := ModeByName("nonsense")
	if fallback.Name != ModeDefault {
		t.Errorf("fallback Name = %s, want default", fallback.Name)
	}
	if fallback.BuyThresholdLow != -5.5 || fallback.BuyThresholdHigh != -4.5 {
		t.Errorf("unexpected default buy band (%v, %v)", fallback.BuyThresholdLow, fallback.BuyThresholdHigh)
	}
}

func TestPeriod_StartDate(t *testing.T) {
	tests := []struct {
		period Period
		want   string
	}{
		{PeriodAll, "1971-02-08"},
		{Period2000, "2000-01-01"},
		{PeriodCovid, "2020-03-13"},
	}
	for _, tt := range tests {
		if got := tt.period.StartDate(); got != tt.want {
			t.Errorf("StartDate(%s) = %s, want %s", tt.period, got, tt.want)
		}
	}
}

func TestArtifactFilename(t *testing.T) {
	def := ModeByName(ModeDefault)
	if got := ArtifactFilename(def, PeriodAll); got != "precomputed_simulation.json" {
		t.Errorf("unexpected filename %s", got)
	}
	agg := ModeByName(ModeAggressive)
	if got := ArtifactFilename(agg, PeriodAll); got != "precomputed_simulation_aggressive.json" {
		t.Errorf("unexpected filename %s", got)
	}
	if got := ArtifactFilename(def, PeriodCovid); got != "precomputed_simulation_default_covid.json" {
		t.Errorf("unexpected filename %s", got)
	}
}

func TestSimulationState_Clone(t *testing.T) {
	pl := 12.5
	state := SimulationState{
		Capital:   990_000,
		Portfolio: map[string]Position{"AAPL": {Shares: 10, CostBasis: 1000}},
		TradeLog: []Trade{
			{Date: "2024-01-05", Symbol: "AAPL", Action: TradeSell, Price: 100, Shares: 10, Value: 1000, ProfitLoss: &pl},
		},
		PerformanceHistory: []PerformanceSnapshot{
			{Date: "2024-01-05", PortfolioValue: 1_000_000, Cash: 990_000},
		},
		InitialCapital: 1_000_000,
	}

	clone := state.Clone()

	clone.Portfolio["AAPL"] = Position{Shares: 99, CostBasis: 1}
	clone.PerformanceHistory[0].PortfolioValue = 0
	*clone.TradeLog[0].ProfitLoss = -1

	if state.Portfolio["AAPL"].Shares != 10 {
		t.Error("clone shares portfolio map with original")
	}
	if state.PerformanceHistory[0].PortfolioValue != 1_000_000 {
		t.Error("clone shares performance history with original")
	}
	if *state.TradeLog[0].ProfitLoss != 12.5 {
		t.Error("clone shares profit/loss pointer with original")
	}
}
