package marketdata

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// Synthetic generates weekly price series with enough volatility to exercise
// the trading bands: 5% weekly noise, a small upward drift, a 5% drop every
// 8 weeks and a 10% rise every 12 weeks, floored at 1.0. Output is
// deterministic for a given seed.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a generator seeded with seed.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

// FetchWeekly implements Provider. Dates are aligned to Sundays so two
// adjacent rows are exactly seven days apart.
func (s *Synthetic) FetchWeekly(ctx context.Context, symbols []string, start, end string) ([]core.PricePoint, error) {
	startT, err := core.ParseDate(start)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	endT, err := core.ParseDate(end)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	dates := weeklyDates(startT, endT)
	if len(dates) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var series []core.PricePoint
	for _, sym := range symbols {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		price := s.rng.Float64()*450 + 50 // base in [50, 500)
		for i, date := range dates {
			change := s.rng.NormFloat64() * 0.05
			trend := 0.001

			var special float64
			switch {
			case i > 0 && i%8 == 0:
				special = -0.05 // periodic drop to hit the buy band
			case i > 0 && i%12 == 0:
				special = 0.10 // periodic rise to hit the sell band
			}

			price *= 1 + change + trend + special
			if price < 1.0 {
				price = 1.0
			}

			series = append(series, core.PricePoint{Symbol: sym, Date: date, Price: price})
		}
	}
	return series, nil
}

// weeklyDates returns wire-format Sundays from the first Sunday on or after
// start through end.
func weeklyDates(start, end time.Time) []string {
	first := start
	for first.Weekday() != time.Sunday {
		first = first.AddDate(0, 0, 1)
	}

	var dates []string
	for d := first; !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, core.FormatDate(d))
	}
	return dates
}
