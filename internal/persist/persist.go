// Package persist stores simulation states as JSON artifacts with a backup
// generation, corruption recovery and value sanitization. Nothing here is
// fatal: failures come back as errors the caller degrades on, and implausible
// values are corrected with a diagnostic rather than rejected.
package persist

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

const (
	// valueCap bounds any numeric artifact field; larger values are
	// treated as arithmetic errors and clamped.
	valueCap = 1e9

	// jumpFactor is the day-over-day portfolio growth beyond which an
	// entry is considered anomalous.
	jumpFactor = 1.5

	// smoothedGrowth replaces an anomalous jump with modest growth.
	smoothedGrowth = 1.05
)

// BackupSuffix is appended to an artifact path for its previous generation.
const BackupSuffix = ".backup"

// Manager saves and loads simulation artifacts.
type Manager struct {
	log *zap.Logger

	// OnAnomaly, when set, is invoked with a kind label each time a value
	// is corrected during sanitization or smoothing.
	OnAnomaly func(kind string)
}

func (m *Manager) noteAnomaly(kind string) {
	if m.OnAnomaly != nil {
		m.OnAnomaly(kind)
	}
}

// NewManager creates a Manager logging diagnostics to log.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log}
}

// Save sanitizes state and writes it to path, keeping the previous file as a
// .backup sibling. The write goes to a temporary path first, is verified to
// parse, and then atomically replaces the target.
func (m *Manager) Save(path string, state core.SimulationState) error {
	clean := m.Sanitize(state)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return core.WrapError(core.ErrArtifactSave, fmt.Errorf("creating artifact dir: %w", err))
	}

	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+BackupSuffix); err != nil {
			m.log.Warn("failed to create artifact backup", zap.String("path", path), zap.Error(err))
		}
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return core.WrapError(core.ErrArtifactSave, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return core.WrapError(core.ErrArtifactSave, err)
	}

	// Verify the temp file round-trips before it replaces the target.
	if _, err := readState(tmp); err != nil {
		os.Remove(tmp)
		return core.WrapError(core.ErrArtifactSave, fmt.Errorf("verifying temp artifact: %w", err))
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return core.WrapError(core.ErrArtifactSave, err)
	}
	return nil
}

// Load reads the artifact at path. If the primary file is unparsable it
// falls back to the .backup sibling and, on success, restores the backup as
// the primary. Every successful load is validated and repaired.
func (m *Manager) Load(path string) (core.SimulationState, error) {
	state, err := readState(path)
	if err == nil {
		return m.validate(state), nil
	}

	m.log.Warn("artifact unparsable, trying backup", zap.String("path", path), zap.Error(err))

	backup := path + BackupSuffix
	state, backupErr := readState(backup)
	if backupErr != nil {
		return core.SimulationState{}, core.WrapError(core.ErrDataCorruption, err)
	}

	if restoreErr := copyFile(backup, path); restoreErr != nil {
		m.log.Warn("failed to restore backup as primary", zap.String("path", path), zap.Error(restoreErr))
	} else {
		m.log.Info("restored artifact from backup", zap.String("path", path))
	}
	return m.validate(state), nil
}

// Sanitize returns a copy of state with non-finite values zeroed, oversized
// values clamped and anomalous history jumps smoothed. It is applied on both
// save and load so a damaged artifact heals on either path.
func (m *Manager) Sanitize(state core.SimulationState) core.SimulationState {
	out := state.Clone()

	for i := range out.PerformanceHistory {
		e := &out.PerformanceHistory[i]
		e.PortfolioValue = m.sanitizeValue(e.PortfolioValue, "portfolio_value", e.Date)
		e.Cash = m.sanitizeValue(e.Cash, "cash", e.Date)
		e.TotalReturn = m.sanitizeValue(e.TotalReturn, "total_return", e.Date)
	}
	for i := range out.TradeLog {
		tr := &out.TradeLog[i]
		tr.Price = m.sanitizeValue(tr.Price, "price", tr.Date)
		tr.Shares = m.sanitizeValue(tr.Shares, "shares", tr.Date)
		tr.Value = m.sanitizeValue(tr.Value, "value", tr.Date)
		if tr.ProfitLoss != nil {
			pl := m.sanitizeValue(*tr.ProfitLoss, "profit_loss", tr.Date)
			tr.ProfitLoss = &pl
		}
	}

	out.PerformanceHistory = m.SmoothHistory(out.PerformanceHistory, smoothedGrowth)
	return out
}

// SmoothHistory replaces any entry whose portfolio value jumped more than
// 1.5x over the prior entry with the prior value times growth. The input
// slice is not modified.
func (m *Manager) SmoothHistory(history []core.PerformanceSnapshot, growth float64) []core.PerformanceSnapshot {
	out := make([]core.PerformanceSnapshot, len(history))
	copy(out, history)

	for i := 1; i < len(out); i++ {
		prev := out[i-1].PortfolioValue
		curr := out[i].PortfolioValue
		if prev > 0 && curr/prev > jumpFactor {
			corrected := prev * growth
			m.log.Warn("smoothing anomalous portfolio value jump",
				zap.String("date", out[i].Date),
				zap.Float64("from", curr),
				zap.Float64("to", corrected))
			m.noteAnomaly("jump")
			out[i].PortfolioValue = corrected
		}
	}
	return out
}

func (m *Manager) sanitizeValue(v float64, field, date string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		m.log.Warn("zeroing non-finite artifact value",
			zap.String("field", field), zap.String("date", date))
		m.noteAnomaly("nonfinite")
		return 0.0
	}
	if v > valueCap {
		m.log.Warn("clamping oversized artifact value",
			zap.String("field", field), zap.String("date", date), zap.Float64("value", v))
		m.noteAnomaly("clamp")
		return valueCap
	}
	return v
}

// validate repairs a freshly loaded state: the same numeric sanitization and
// smoothing as on save, plus position cleanup (drop empty positions, repair
// non-positive cost bases assuming a nominal $100 reference price).
func (m *Manager) validate(state core.SimulationState) core.SimulationState {
	out := m.Sanitize(state)

	if out.Portfolio == nil {
		out.Portfolio = map[string]core.Position{}
	}
	for sym, pos := range out.Portfolio {
		if pos.Shares <= 0 {
			m.log.Warn("dropping empty portfolio position", zap.String("symbol", sym))
			m.noteAnomaly("position")
			delete(out.Portfolio, sym)
			continue
		}
		if pos.CostBasis <= 0 {
			m.log.Warn("repairing non-positive cost basis", zap.String("symbol", sym))
			m.noteAnomaly("position")
			pos.CostBasis = pos.Shares * 100
			out.Portfolio[sym] = pos
		}
	}
	if out.TradeLog == nil {
		out.TradeLog = []core.Trade{}
	}
	if out.PerformanceHistory == nil {
		out.PerformanceHistory = []core.PerformanceSnapshot{}
	}
	return out
}

func readState(path string) (core.SimulationState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.SimulationState{}, err
	}
	var state core.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return core.SimulationState{}, err
	}
	return state, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
