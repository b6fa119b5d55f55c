package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// FileCache is a read-through cache for a generated series: the first fetch
// is written to a JSON file and every later fetch replays the same market.
// Without it each process start would simulate against different synthetic
// prices and precomputed artifacts would stop lining up.
type FileCache struct {
	path     string
	provider Provider
	log      *zap.Logger
}

// NewFileCache wraps provider with a cache file at path.
func NewFileCache(path string, provider Provider, log *zap.Logger) *FileCache {
	return &FileCache{path: path, provider: provider, log: log}
}

// FetchWeekly implements Provider. Ranges past the cached coverage are
// fetched from the wrapped provider and folded into the cache file, so a
// continuation run after the generation cutoff still sees fresh rows. A
// corrupt cache file is regenerated, not surfaced as an error.
func (c *FileCache) FetchWeekly(ctx context.Context, symbols []string, start, end string) ([]core.PricePoint, error) {
	series, ok := c.load()
	if !ok || len(series) == 0 {
		series, err := c.provider.FetchWeekly(ctx, symbols, start, end)
		if err != nil {
			return nil, err
		}
		if err := c.write(series); err != nil {
			c.log.Warn("failed to write market data cache", zap.String("path", c.path), zap.Error(err))
		}
		return series, nil
	}

	series, grew, err := c.extend(ctx, series, symbols, start, end)
	if err != nil {
		return nil, err
	}
	if grew {
		if err := c.write(series); err != nil {
			c.log.Warn("failed to write market data cache", zap.String("path", c.path), zap.Error(err))
		}
	}
	return filterRange(series, start, end), nil
}

func (c *FileCache) load() ([]core.PricePoint, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var series []core.PricePoint
	if err := json.Unmarshal(data, &series); err != nil {
		c.log.Warn("market data cache unreadable, regenerating", zap.String("path", c.path))
		return nil, false
	}
	c.log.Debug("loaded market data from cache",
		zap.String("path", c.path), zap.Int("records", len(series)))
	return series, true
}

// extend fetches the slices of [start, end] that fall outside the cached
// date coverage and splices them in.
func (c *FileCache) extend(ctx context.Context, series []core.PricePoint, symbols []string, start, end string) ([]core.PricePoint, bool, error) {
	first, last := coverage(series)
	grew := false
	if start < first {
		head, err := c.provider.FetchWeekly(ctx, symbols, start, dayBefore(first))
		if err != nil {
			return nil, false, err
		}
		if len(head) > 0 {
			series = append(head, series...)
			grew = true
		}
	}
	if end > last {
		tail, err := c.provider.FetchWeekly(ctx, symbols, dayAfter(last), end)
		if err != nil {
			return nil, false, err
		}
		if len(tail) > 0 {
			series = append(series, tail...)
			grew = true
		}
	}
	return series, grew, nil
}

func coverage(series []core.PricePoint) (first, last string) {
	first, last = series[0].Date, series[0].Date
	for _, p := range series[1:] {
		if p.Date < first {
			first = p.Date
		}
		if p.Date > last {
			last = p.Date
		}
	}
	return first, last
}

func dayBefore(date string) string {
	t, err := core.ParseDate(date)
	if err != nil {
		return date
	}
	return core.FormatDate(t.AddDate(0, 0, -1))
}

func dayAfter(date string) string {
	t, err := core.ParseDate(date)
	if err != nil {
		return date
	}
	return core.FormatDate(t.AddDate(0, 0, 1))
}

func (c *FileCache) write(series []core.PricePoint) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(series)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

func filterRange(series []core.PricePoint, start, end string) []core.PricePoint {
	out := make([]core.PricePoint, 0, len(series))
	for _, p := range series {
		if p.Date >= start && p.Date <= end {
			out = append(out, p)
		}
	}
	return out
}
