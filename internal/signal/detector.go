// Package signal implements week-over-week price band signal detection.
package signal

import "github.com/CodingFreeze/FiveTenAlgo/internal/core"

// Detector evaluates buy/sell signals from a (current, week-ago) price pair.
// Detection is pure: no state, no side effects. A missing week-ago quote is
// handled by the caller (no evaluation, not a signal and not an error).
type Detector struct {
	buyLow   float64
	buyHigh  float64
	sellLow  float64
	sellHigh float64
}

// NewDetector creates a detector with the mode's threshold bands.
func NewDetector(mode core.Mode) Detector {
	return Detector{
		buyLow:   mode.BuyThresholdLow,
		buyHigh:  mode.BuyThresholdHigh,
		sellLow:  mode.SellThresholdLow,
		sellHigh: mode.SellThresholdHigh,
	}
}

// Buy reports whether the week-over-week drop falls inside the buy band.
func (d Detector) Buy(current, weekAgo float64) bool {
	if weekAgo <= 0 {
		return false
	}
	change := (current - weekAgo) / weekAgo * 100
	return change >= d.buyLow && change <= d.buyHigh
}

// Sell reports whether the week-over-week rise falls inside the sell band.
// Callers evaluate this only for symbols currently held.
func (d Detector) Sell(current, weekAgo float64) bool {
	if weekAgo <= 0 {
		return false
	}
	change := (current - weekAgo) / weekAgo * 100
	return change >= d.sellLow && change <= d.sellHigh
}
