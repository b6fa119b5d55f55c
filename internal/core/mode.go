package core

// Mode is an immutable named parameter bundle controlling signal thresholds
// and trade sizing. Trade sizes are fractions of initial capital, never of
// the drifting cash balance, so position sizing stays stable over time.
type Mode struct {
	Name           string
	InitialCapital float64

	// Buy band: week-over-week percentage change that triggers a buy.
	BuyThresholdLow  float64
	BuyThresholdHigh float64

	// Sell band: week-over-week percentage change that triggers a sell
	// for symbols currently held.
	SellThresholdLow  float64
	SellThresholdHigh float64

	TradeSizeBuyPct  float64
	TradeSizeSellPct float64
}

// Preset mode names.
const (
	ModeDefault      = "default"
	ModeAggressive   = "aggressive"
	ModeConservative = "conservative"
	ModeBalanced     = "balanced"
)

var modePresets = map[string]Mode{
	ModeDefault: {
		Name:              ModeDefault,
		InitialCapital:    1_000_000,
		BuyThresholdLow:   -5.5,
		BuyThresholdHigh:  -4.5,
		SellThresholdLow:  9.5,
		SellThresholdHigh: 10.5,
		TradeSizeBuyPct:   0.001,
		TradeSizeSellPct:  0.002,
	},
	ModeAggressive: {
		Name:              ModeAggressive,
		InitialCapital:    1_000_000,
		BuyThresholdLow:   -5.0,
		BuyThresholdHigh:  -3.0,
		SellThresholdLow:  8.0,
		SellThresholdHigh: 12.0,
		TradeSizeBuyPct:   0.002,
		TradeSizeSellPct:  0.004,
	},
	ModeConservative: {
		Name:              ModeConservative,
		InitialCapital:    1_000_000,
		BuyThresholdLow:   -6.0,
		BuyThresholdHigh:  -5.0,
		SellThresholdLow:  11.0,
		SellThresholdHigh: 12.0,
		TradeSizeBuyPct:   0.0005,
		TradeSizeSellPct:  0.001,
	},
	ModeBalanced: {
		Name:              ModeBalanced,
		InitialCapital:    1_000_000,
		BuyThresholdLow:   -5.5,
		BuyThresholdHigh:  -4.5,
		SellThresholdLow:  9.0,
		SellThresholdHigh: 10.0,
		TradeSizeBuyPct:   0.001,
		TradeSizeSellPct:  0.0015,
	},
}

// ModeByName returns the preset for name, falling back to the default preset
// for unknown names.
func ModeByName(name string) Mode {
	if m, ok := modePresets[name]; ok {
		return m
	}
	return modePresets[ModeDefault]
}

// ModeNames returns the known preset names.
func ModeNames() []string {
	return []string{ModeDefault, ModeAggressive, ModeConservative, ModeBalanced}
}
