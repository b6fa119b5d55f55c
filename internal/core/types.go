package core

import "time"

// DateLayout is the wire format for all dates in artifacts and price series.
// ISO dates compare correctly as strings, which the timeline slicing relies on.
const DateLayout = "2006-01-02"

// PricePoint is one weekly closing quote for a symbol.
// Series are weekly-sampled and may contain gaps.
type PricePoint struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
}

// IsValid checks if the price point has required fields.
func (p PricePoint) IsValid() bool {
	return p.Symbol != "" && p.Date != "" && p.Price > 0
}

// TradeAction represents the direction of an executed trade.
type TradeAction string

const (
	// TradeBuy represents a buy execution.
	TradeBuy TradeAction = "BUY"
	// TradeSell represents a sell execution.
	TradeSell TradeAction = "SELL"
)

// Trade is one append-only entry in the trade log.
// ProfitLoss is set on SELL trades only.
type Trade struct {
	Date       string      `json:"date"`
	Symbol     string      `json:"symbol"`
	Action     TradeAction `json:"action"`
	Price      float64     `json:"price"`
	Shares     float64     `json:"shares"`
	Value      float64     `json:"value"`
	ProfitLoss *float64    `json:"profit_loss,omitempty"`
}

// Position is a holding in a single symbol. Shares stay positive while the
// position exists; a position is removed entirely once shares reach zero.
type Position struct {
	Shares    float64 `json:"shares"`
	CostBasis float64 `json:"cost_basis"`
}

// PerformanceSnapshot records end-of-date portfolio valuation.
type PerformanceSnapshot struct {
	Date           string  `json:"date"`
	PortfolioValue float64 `json:"portfolio_value"`
	Cash           float64 `json:"cash"`
	TotalReturn    float64 `json:"total_return"`
}

// ParseDate parses a wire-format date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time in wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekBefore returns the date seven days earlier, or "" if date is malformed.
func WeekBefore(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, -7))
}
