package engram

import (
	"context"

	"github.com/engramhq/engram/internal/chunker"
	"github.com/engramhq/engram/internal/consolidation"
	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/model"
)

// Consolidate runs one Memory-Chain consolidation cycle over dtDays days
// (spec.md §4.3): step every working-layer entry, interleave-replay a
// random sample of archived entries, decay core-only entries, then
// rebalance the layer of every working and core entry (archived entries
// keep their layer). It holds the exclusive lock — no recall
// may run concurrently with a consolidation pass.
func (m *Memory) Consolidate(ctx context.Context, dtDays float64) (consolidation.Stats, error) {
	if dtDays <= 0 {
		dtDays = 1.0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.db.All(ctx, true)
	if err != nil {
		return consolidation.Stats{}, engramerr.Storage("all", err)
	}

	params := m.consolidationParams()

	var working, core, archive []*model.Entry
	for i := range all {
		switch all[i].Layer {
		case model.LayerWorking:
			working = append(working, &all[i])
		case model.LayerCore:
			core = append(core, &all[i])
		case model.LayerArchive:
			archive = append(archive, &all[i])
		}
	}

	var stats consolidation.Stats

	for _, e := range working {
		consolidation.Step(e, dtDays, params)
		stats.Stepped++
	}

	replaySet := consolidation.SampleReplaySet(archive, params.InterleaveRatio, m.rng)
	for _, e := range replaySet {
		consolidation.Replay(e, params.ReplayBoost)
		stats.Replayed++
		m.log.WithFields(map[string]interface{}{
			"id":      e.ID,
			"excerpt": chunker.Preview(e.Content, 80),
		}).Debug("replayed archived entry")
	}

	for _, e := range core {
		consolidation.DecayCore(e, dtDays, params.Mu2)
	}

	for _, e := range working {
		before := e.Layer
		after := consolidation.Rebalance(e, params)
		switch {
		case before != after && after == model.LayerCore:
			stats.Promoted++
		case before != after && after == model.LayerArchive:
			stats.Archived++
		}
	}
	for _, e := range core {
		before := e.Layer
		after := consolidation.Rebalance(e, params)
		if before != after && after == model.LayerArchive {
			stats.Demoted++
		}
	}

	for _, e := range all {
		if err := m.db.Update(ctx, e); err != nil {
			return stats, engramerr.Storage("update", err)
		}
	}

	m.log.WithFields(map[string]interface{}{
		"stepped":  stats.Stepped,
		"replayed": stats.Replayed,
		"promoted": stats.Promoted,
		"demoted":  stats.Demoted,
		"archived": stats.Archived,
		"dt_days":  dtDays,
	}).Info("consolidation cycle complete")

	return stats, nil
}

// Downscale multiplies every non-pinned memory's strengths by factor,
// bounding unchecked growth from replay and reward over many cycles
// (spec.md §4.3 "synaptic downscaling").
func (m *Memory) Downscale(ctx context.Context, factor float64) error {
	if factor <= 0 || factor > 1 {
		return engramerr.Config("factor", "must be in (0, 1]")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.db.All(ctx, true)
	if err != nil {
		return engramerr.Storage("all", err)
	}
	for i := range all {
		consolidation.Downscale(&all[i], factor)
	}
	for _, e := range all {
		if err := m.db.Update(ctx, e); err != nil {
			return engramerr.Storage("update", err)
		}
	}
	return nil
}

func (m *Memory) consolidationParams() consolidation.Params {
	return consolidation.Params{
		Mu1:              m.cfg.Mu1,
		Mu2:              m.cfg.Mu2,
		Alpha:            m.cfg.Alpha,
		InterleaveRatio:  m.cfg.InterleaveRatio,
		ReplayBoost:      m.cfg.ReplayBoost,
		PromoteThreshold: m.cfg.PromoteThreshold,
		DemoteThreshold:  m.cfg.DemoteThreshold,
		ArchiveThreshold: m.cfg.ArchiveThreshold,
	}
}
