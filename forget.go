package engram

import (
	"context"
	"time"

	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/forgetting"
	"github.com/engramhq/engram/internal/model"
)

// Forget archives a memory (moves it to L4_archive) rather than deleting
// it outright; pinned memories are immune (spec.md §4.4). Use Delete for
// a hard, cascading removal.
func (m *Memory) Forget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.db.Get(ctx, id)
	if err != nil {
		return engramerr.Storage("get", err)
	}
	if e == nil {
		return engramerr.NotFoundErr(id)
	}
	if e.Pinned {
		return nil
	}
	e.Layer = model.LayerArchive
	if err := m.db.Update(ctx, *e); err != nil {
		return engramerr.Storage("update", err)
	}
	m.log.WithField("id", id).Info("memory archived")
	return nil
}

// Prune scans every non-archived memory and archives those whose
// effective strength has fallen below threshold (spec.md §4.4's
// shouldForget predicate), returning the ids it archived. threshold <= 0
// falls back to the configured ForgetThreshold.
func (m *Memory) Prune(ctx context.Context, threshold float64) ([]string, error) {
	if threshold <= 0 {
		threshold = m.cfg.ForgetThreshold
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.db.All(ctx, false)
	if err != nil {
		return nil, engramerr.Storage("all", err)
	}

	now := time.Now()
	var forgotten []string
	for i := range all {
		e := &all[i]
		if e.Pinned {
			continue
		}
		baseDecay := model.BaseDecayRate[e.Type]
		stability := forgetting.Stability(*e, baseDecay)
		retrievability := forgetting.Retrievability(*e, now, stability)
		eff := forgetting.EffectiveStrength(*e, retrievability)
		if !forgetting.ShouldForget(*e, eff, threshold) {
			continue
		}
		e.Layer = model.LayerArchive
		if err := m.db.Update(ctx, *e); err != nil {
			return forgotten, engramerr.Storage("update", err)
		}
		forgotten = append(forgotten, e.ID)
	}
	if len(forgotten) > 0 {
		m.log.WithField("count", len(forgotten)).Info("prune archived entries below threshold")
	}
	return forgotten, nil
}
