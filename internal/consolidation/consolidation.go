// Package consolidation implements the Memory-Chain dual-trace dynamics
// (spec.md §4.3): the working/core differential step, interleaved replay of
// archived traces, layer rebalancing, and synaptic downscaling.
package consolidation

import (
	"math"
	"math/rand"
	"time"

	"github.com/engramhq/engram/internal/model"
)

// Params bundles the Memory-Chain constants a cycle needs.
type Params struct {
	Mu1                   float64
	Mu2                   float64
	Alpha                 float64
	InterleaveRatio       float64
	ReplayBoost           float64
	PromoteThreshold      float64
	DemoteThreshold       float64
	ArchiveThreshold      float64
}

// Step applies one discrete Δt-day Memory-Chain update to a single
// working-layer entry: add the core contribution from the working trace,
// then decay both traces. Pinned entries are left untouched.
func Step(e *model.Entry, dt float64, p Params) {
	if e.Pinned {
		return
	}
	alphaEff := p.Alpha * (0.2 + e.Importance*e.Importance)
	e.CoreStrength += alphaEff * e.WorkingStrength * dt
	e.WorkingStrength *= math.Exp(-p.Mu1 * dt)
	e.CoreStrength *= math.Exp(-p.Mu2 * dt)
	e.ConsolidationCount++
	e.LastConsolidated = time.Now()
}

// DecayCore applies core-only decay to an already-consolidated entry
// (L2_core entries skip the working-trace step).
func DecayCore(e *model.Entry, dt float64, mu2 float64) {
	if e.Pinned {
		return
	}
	e.CoreStrength *= math.Exp(-mu2 * dt)
	e.ConsolidationCount++
	e.LastConsolidated = time.Now()
}

// Replay adds a boost to an archived entry's core strength, simulating
// interleaved reactivation (spec.md §4.3 step 2). Pinned entries (which
// never reach the archive layer) are a no-op here regardless.
func Replay(e *model.Entry, replayBoost float64) {
	if e.Pinned {
		return
	}
	e.CoreStrength += replayBoost * (0.5 + e.Importance)
	e.ConsolidationCount++
}

// SampleReplaySet picks a random subset of archived entries of size
// round(ratio * len(archived)), floored to 1 whenever the archive is
// non-empty so a low ratio against a small archive still replays
// something, using rng so callers can seed deterministically for tests.
func SampleReplaySet(archived []*model.Entry, ratio float64, rng *rand.Rand) []*model.Entry {
	if len(archived) == 0 {
		return nil
	}
	n := int(math.Round(ratio * float64(len(archived))))
	if n <= 0 {
		n = 1
	}
	if n > len(archived) {
		n = len(archived)
	}
	idx := rng.Perm(len(archived))[:n]
	out := make([]*model.Entry, n)
	for i, j := range idx {
		out[i] = archived[j]
	}
	return out
}

// Rebalance applies the layer-transition rules (spec.md §4.3 step 4) to a
// single entry after it has been stepped, returning the entry's new layer.
func Rebalance(e *model.Entry, p Params) model.Layer {
	if e.Pinned {
		e.Layer = model.LayerCore
		return e.Layer
	}

	switch e.Layer {
	case model.LayerWorking:
		if e.CoreStrength >= p.PromoteThreshold {
			e.Layer = model.LayerCore
		} else if e.WorkingStrength < p.ArchiveThreshold && e.CoreStrength < p.ArchiveThreshold {
			e.Layer = model.LayerArchive
		}
	case model.LayerCore:
		if e.WorkingStrength+e.CoreStrength < p.DemoteThreshold {
			e.Layer = model.LayerArchive
		}
	}
	return e.Layer
}

// Downscale multiplies a non-pinned entry's strengths by factor, bounding
// unchecked growth from replay and reward (spec.md §4.3, "synaptic
// downscaling").
func Downscale(e *model.Entry, factor float64) {
	if e.Pinned {
		return
	}
	e.WorkingStrength *= factor
	e.CoreStrength *= factor
}

// Stats summarizes the outcome of one consolidation cycle.
type Stats struct {
	Stepped   int
	Replayed  int
	Promoted  int
	Demoted   int
	Archived  int
}
