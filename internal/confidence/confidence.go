// Package confidence implements Engram's two-dimensional confidence score
// (spec.md §4.5.2): reliability from memory type and contradiction state,
// salience from normalized effective strength, combined into a label.
package confidence

import (
	"fmt"
	"math"

	"github.com/engramhq/engram/internal/model"
)

// Reliability computes rel ∈ [0,1] (spec.md §4.5.2).
func Reliability(e model.Entry, baseReliability map[string]float64) float64 {
	base := baseReliability[string(e.Type)]
	if base == 0 {
		base = 0.5
	}
	rel := base
	if e.ContradictedBy != "" {
		rel *= 0.3
	}
	if e.Pinned {
		rel = math.Max(rel, 0.95)
	}
	rel += 0.1 * e.Importance
	if rel > 1 {
		rel = 1
	}
	return rel
}

// Salience computes sal ∈ [0,1]. When maxEffectiveStrength is known (the
// store handle is available), it normalizes effectiveStrength against it;
// otherwise it falls back to a sigmoid transform of effectiveStrength
// alone.
func Salience(effectiveStrength float64, maxEffectiveStrength float64, haveMax bool, sigmoidK float64) float64 {
	if haveMax && maxEffectiveStrength > 0 {
		sal := effectiveStrength / maxEffectiveStrength
		if sal > 1 {
			sal = 1
		}
		if sal < 0 {
			sal = 0
		}
		return sal
	}
	sig := 1 / (1 + math.Exp(-sigmoidK*effectiveStrength))
	return 2*sig - 1
}

// Label applies the labeling ladder (spec.md §4.5.2).
func Label(combined float64) string {
	switch {
	case combined >= 0.8:
		return "certain"
	case combined >= 0.6:
		return "likely"
	case combined >= 0.4:
		return "uncertain"
	default:
		return "vague"
	}
}

func describe(label string, rel, sal float64) string {
	switch label {
	case "certain":
		return "high reliability and strong retrieval signal"
	case "likely":
		return "reasonably reliable with a moderate retrieval signal"
	case "uncertain":
		return fmt.Sprintf("reliability %.2f with weak retrieval signal %.2f", rel, sal)
	default:
		return fmt.Sprintf("low reliability (%.2f) or faint trace (%.2f)", rel, sal)
	}
}

// Score computes the full confidence detail for an entry given its
// effective strength and the reliability/salience weighting.
func Score(e model.Entry, effectiveStrength, maxEffectiveStrength float64, haveMax bool, cfg Weights) model.ConfidenceDetail {
	rel := Reliability(e, cfg.BaseReliability)
	sal := Salience(effectiveStrength, maxEffectiveStrength, haveMax, cfg.SalienceSigmoidK)
	combined := cfg.ReliabilityWeight*rel + cfg.SalienceWeight*sal
	label := Label(combined)
	return model.ConfidenceDetail{
		Reliability: rel,
		Salience:    sal,
		Combined:    combined,
		Label:       label,
		Description: describe(label, rel, sal),
	}
}

// Weights bundles the tunables Score needs without depending on the
// config package (avoids an import cycle; config.Config supplies these).
type Weights struct {
	BaseReliability   map[string]float64
	ReliabilityWeight float64
	SalienceWeight    float64
	SalienceSigmoidK  float64
}
