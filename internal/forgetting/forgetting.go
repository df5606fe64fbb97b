// Package forgetting implements Engram's Ebbinghaus-derived decay model
// (spec.md §4.4): stability, retrievability, effective strength, the
// forget predicate, and retrieval-induced forgetting of overlapping
// same-type competitors.
package forgetting

import (
	"math"
	"time"

	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/query"
)

// Stability returns S, the retrievability time-constant (spec.md §4.4).
func Stability(e model.Entry, baseDecayRate float64) float64 {
	if baseDecayRate <= 0 {
		baseDecayRate = 0.01
	}
	return (1 / baseDecayRate) *
		(1 + 0.5*math.Log(1+float64(e.AccessCount))) *
		(0.5 + e.Importance) *
		(1 + 0.2*float64(e.ConsolidationCount))
}

// Retrievability returns R(t) = exp(-t_days/S); R=1 when t_days <= 0.
func Retrievability(e model.Entry, now time.Time, stability float64) float64 {
	last := e.LastAccessed
	if last.Before(e.CreatedAt) {
		last = e.CreatedAt
	}
	tDays := now.Sub(last).Hours() / 24
	if tDays <= 0 {
		return 1
	}
	if stability <= 0 {
		return 0
	}
	return math.Exp(-tDays / stability)
}

// EffectiveStrength returns E = (working + core) * R.
func EffectiveStrength(e model.Entry, retrievability float64) float64 {
	return (e.WorkingStrength + e.CoreStrength) * retrievability
}

// ShouldForget reports whether a non-pinned entry's effective strength has
// fallen below threshold.
func ShouldForget(e model.Entry, effectiveStrength, threshold float64) bool {
	if e.Pinned {
		return false
	}
	return effectiveStrength < threshold
}

// Suppress applies retrieval-induced forgetting (spec.md §4.4) to a slice
// of same-type candidate competitors of the retrieved memory r. Candidates
// are mutated in place; pinned entries and entries of a different type
// than r are left untouched.
func Suppress(r model.Entry, candidates []*model.Entry, suppressionFactor, overlapThreshold float64) {
	rTokens := query.Tokenize(r.Content)
	for _, c := range candidates {
		if c.ID == r.ID || c.Pinned || c.Type != r.Type {
			continue
		}
		cTokens := query.Tokenize(c.Content)
		if len(cTokens) == 0 {
			continue
		}
		overlap := query.Overlap(cTokens, rTokens)
		if overlap > overlapThreshold {
			c.WorkingStrength *= 1 - suppressionFactor*overlap
			if c.WorkingStrength < 0 {
				c.WorkingStrength = 0
			}
		}
	}
}
