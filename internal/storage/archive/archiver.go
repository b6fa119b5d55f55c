package archive

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/core"
)

// Archiver snapshots simulation artifacts into a Storage backend under
// dated keys ("2026-08-29/precomputed_simulation.json") and restores the
// most recent snapshot of a given artifact.
type Archiver struct {
	backend Storage
	log     *zap.Logger
}

// NewArchiver creates an Archiver over backend.
func NewArchiver(backend Storage, log *zap.Logger) *Archiver {
	return &Archiver{backend: backend, log: log}
}

// Snapshot stores state under a key derived from name and at, returning the
// key written.
func (a *Archiver) Snapshot(ctx context.Context, name string, state core.SimulationState, at time.Time) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", core.WrapError(core.ErrArtifactSave, err)
	}

	key := at.Format(core.DateLayout) + "/" + name
	if err := a.backend.Write(ctx, key, data); err != nil {
		return "", core.WrapError(core.ErrArtifactSave, err)
	}
	a.log.Info("archived artifact", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// Restore loads the state stored at key.
func (a *Archiver) Restore(ctx context.Context, key string) (core.SimulationState, error) {
	data, err := a.backend.Read(ctx, key)
	if err != nil {
		return core.SimulationState{}, core.WrapError(core.ErrNoData, err)
	}
	var state core.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return core.SimulationState{}, core.WrapError(core.ErrDataCorruption, err)
	}
	return state, nil
}

// Latest returns the newest snapshot key for name. Dated key prefixes sort
// chronologically, so the lexicographic maximum is the most recent.
func (a *Archiver) Latest(ctx context.Context, name string) (string, error) {
	keys, err := a.backend.List(ctx, "")
	if err != nil {
		return "", err
	}

	var matches []string
	for _, k := range keys {
		if strings.HasSuffix(k, "/"+name) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return "", core.ErrNoData
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
