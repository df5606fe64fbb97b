// Package activation implements Engram's ACT-R-derived retrieval ranking
// (spec.md §4.2): base-level activation from access history, spreading
// activation from context keywords, and an importance boost, combined into
// a single retrieval score used to rank recall candidates.
package activation

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/query"
)

// NegInf stands in for "no access history" — such an entry never outranks
// one with any recorded access.
var NegInf = math.Inf(-1)

// BaseLevel computes B_i = ln(Σ_k (now−t_k)^(−d)) over access times, with
// ages in raw seconds — forgetting.Retrievability is what converts to
// days, not this. Ages at or below zero are clamped to a small positive
// value so the term stays finite. Returns NegInf for an entry with no
// access history.
func BaseLevel(accessTimes []time.Time, now time.Time, d float64) float64 {
	if len(accessTimes) == 0 {
		return NegInf
	}
	var sum float64
	for _, t := range accessTimes {
		ageSeconds := now.Sub(t).Seconds()
		if ageSeconds <= 0 {
			ageSeconds = 0.001
		}
		sum += math.Pow(ageSeconds, -d)
	}
	if sum <= 0 {
		return NegInf
	}
	return math.Log(sum)
}

// Spreading computes the context-keyword contribution, scaled by weight.
func Spreading(content string, keywords []string, weight float64) float64 {
	if len(keywords) == 0 {
		return 0
	}
	frac := query.KeywordFraction(strings.ToLower(content), keywords)
	return frac * weight
}

// Retrieval combines base-level, spreading, and importance into the final
// score A_i used for ranking (spec.md §4.2).
func Retrieval(base, spreading, importance, importanceWeight float64) float64 {
	if base == NegInf {
		return NegInf
	}
	return base + spreading + importanceWeight*importance
}

// Scored pairs an entry with its computed retrieval activation.
type Scored struct {
	Entry      model.Entry
	Activation float64
}

// Rank sorts scored candidates descending by activation, ties broken by
// importance then by more-recent last_accessed (spec.md §4.2 step 5), and
// truncates to limit (limit ≤ 0 means unbounded).
func Rank(scored []Scored, limit int) []Scored {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Activation != b.Activation {
			return a.Activation > b.Activation
		}
		if a.Entry.Importance != b.Entry.Importance {
			return a.Entry.Importance > b.Entry.Importance
		}
		return a.Entry.LastAccessed.After(b.Entry.LastAccessed)
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
