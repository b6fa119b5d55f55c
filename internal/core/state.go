package core

// SimulationState is the complete durable state of one simulation run.
// It is a value: transformations (engine replay, projection, reconstruction)
// return a new state and never mutate their input.
type SimulationState struct {
	Capital            float64               `json:"capital"`
	Portfolio          map[string]Position   `json:"portfolio"`
	TradeLog           []Trade               `json:"trade_log"`
	PerformanceHistory []PerformanceSnapshot `json:"performance_history"`
	InitialCapital     float64               `json:"initial_capital"`
}

// EmptyState returns a fresh all-cash state at the given initial capital.
func EmptyState(initialCapital float64) SimulationState {
	return SimulationState{
		Capital:            initialCapital,
		Portfolio:          map[string]Position{},
		TradeLog:           []Trade{},
		PerformanceHistory: []PerformanceSnapshot{},
		InitialCapital:     initialCapital,
	}
}

// Clone returns a deep copy of the state. Trade ProfitLoss pointers are
// duplicated so the copy shares no memory with the original.
func (s SimulationState) Clone() SimulationState {
	out := SimulationState{
		Capital:            s.Capital,
		Portfolio:          make(map[string]Position, len(s.Portfolio)),
		TradeLog:           make([]Trade, len(s.TradeLog)),
		PerformanceHistory: make([]PerformanceSnapshot, len(s.PerformanceHistory)),
		InitialCapital:     s.InitialCapital,
	}
	for sym, pos := range s.Portfolio {
		out.Portfolio[sym] = pos
	}
	for i, tr := range s.TradeLog {
		if tr.ProfitLoss != nil {
			pl := *tr.ProfitLoss
			tr.ProfitLoss = &pl
		}
		out.TradeLog[i] = tr
	}
	copy(out.PerformanceHistory, s.PerformanceHistory)
	return out
}

// LastSnapshot returns the most recent performance entry, if any.
func (s SimulationState) LastSnapshot() (PerformanceSnapshot, bool) {
	if len(s.PerformanceHistory) == 0 {
		return PerformanceSnapshot{}, false
	}
	return s.PerformanceHistory[len(s.PerformanceHistory)-1], true
}

// HeldSymbols returns the symbols currently held, in unspecified order.
func (s SimulationState) HeldSymbols() []string {
	symbols := make([]string, 0, len(s.Portfolio))
	for sym := range s.Portfolio {
		symbols = append(symbols, sym)
	}
	return symbols
}
