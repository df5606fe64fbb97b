package engram

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/engramhq/engram/internal/activation"
	"github.com/engramhq/engram/internal/assoc"
	"github.com/engramhq/engram/internal/confidence"
	"github.com/engramhq/engram/internal/embedding"
	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/forgetting"
	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/query"
)

// RecallOptions configures Recall. Start from DefaultRecallOptions and
// override only what the caller needs; the zero value of GraphExpand
// would otherwise disagree with spec.md's default of true.
type RecallOptions struct {
	Limit             int
	MinConfidence     float64
	GraphExpand       bool
	IncludeArchive    bool
	AllowContradicted bool
	ContextKeywords   []string
	QueryEntities     []string
}

// DefaultRecallOptions returns spec.md §4.2's defaults: Limit 0, which Recall
// resolves to the configured RecallDefaultLimit (5 unless changed), graph
// expansion on, archived and contradicted entries excluded.
func DefaultRecallOptions() RecallOptions {
	return RecallOptions{Limit: 0, GraphExpand: true}
}

// Recall runs the full retrieval procedure (spec.md §4.2): candidate
// gathering (FTS or full scan, optionally graph/Hebbian-expanded),
// activation scoring, confidence filtering, ranking, access-log
// recording, Hebbian co-activation strengthening, and retrieval-induced
// forgetting of the top result's same-type competitors. It takes a
// shared lock — concurrent recalls may proceed together, but not while
// an add/consolidate/reward/forget holds the exclusive lock.
//
// Concurrent calls with the same query and options are de-duplicated via
// singleflight: several goroutines racing the same prompt pay for one
// retrieval instead of one each.
func (m *Memory) Recall(ctx context.Context, q string, opts RecallOptions) ([]model.Result, error) {
	key := recallKey(q, opts)
	v, err, _ := m.recallSF.Do(key, func() (interface{}, error) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.recallLocked(ctx, q, opts, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Result), nil
}

func recallKey(q string, opts RecallOptions) string {
	return fmt.Sprintf("%s|%d|%.4f|%v|%v|%v|%v|%v",
		q, opts.Limit, opts.MinConfidence, opts.GraphExpand, opts.IncludeArchive,
		opts.AllowContradicted, opts.ContextKeywords, opts.QueryEntities)
}

func (m *Memory) recallLocked(ctx context.Context, q string, opts RecallOptions, now time.Time) ([]model.Result, error) {
	results, err := m.rankCandidates(ctx, q, opts, now)
	if err != nil {
		return nil, err
	}

	if m.embedder != nil {
		m.semanticRerank(ctx, q, results)
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Entry.ID)
	}

	for _, id := range ids {
		if err := m.db.RecordAccess(ctx, id, now); err != nil {
			return nil, engramerr.Storage("recordAccess", err)
		}
	}

	if len(ids) > 1 {
		if err := assoc.StrengthenBatch(ctx, m.db, ids, m.cfg.HebbianCeiling); err != nil {
			return nil, engramerr.Storage("strengthenLink", err)
		}
	}

	if len(results) > 0 {
		if err := m.applyRetrievalInducedForgetting(ctx, results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// rankCandidates runs the read-only half of recall: candidate gathering,
// activation scoring, confidence filtering, and ranking. It touches no
// access log, Hebbian link, or suppression state — callers that only need
// a provisional ranking (the session gate's topic probe) use this instead
// of recallLocked so probing a query never has side effects.
func (m *Memory) rankCandidates(ctx context.Context, q string, opts RecallOptions, now time.Time) ([]model.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = m.cfg.RecallDefaultLimit
	}

	candidates, err := m.gatherCandidates(ctx, q, opts)
	if err != nil {
		return nil, err
	}

	keywords := opts.ContextKeywords
	if len(keywords) == 0 {
		keywords = query.Tokenize(q)
	}

	type pooled struct {
		entry     model.Entry
		act       float64
		effective float64
	}

	var maxEffective float64
	pool := make([]pooled, 0, len(candidates))
	for _, e := range candidates {
		if e.Layer == model.LayerArchive && !opts.IncludeArchive {
			continue
		}
		if e.ContradictedBy != "" && !opts.AllowContradicted {
			continue
		}

		times, err := m.db.GetAccessTimes(ctx, e.ID)
		if err != nil {
			return nil, engramerr.Storage("getAccessTimes", err)
		}
		base := activation.BaseLevel(times, now, m.cfg.ActRDecay)
		spreading := activation.Spreading(e.Content, keywords, m.cfg.ContextWeight)
		act := activation.Retrieval(base, spreading, e.Importance, m.cfg.ImportanceWeight)
		if act < m.cfg.MinActivation {
			continue
		}

		baseDecay := model.BaseDecayRate[e.Type]
		stability := forgetting.Stability(e, baseDecay)
		retrievability := forgetting.Retrievability(e, now, stability)
		eff := forgetting.EffectiveStrength(e, retrievability)
		if eff > maxEffective {
			maxEffective = eff
		}
		pool = append(pool, pooled{entry: e, act: act, effective: eff})
	}

	weights := m.confidenceWeights()

	type decorated struct {
		entry model.Entry
		act   float64
		conf  model.ConfidenceDetail
	}
	filtered := make([]decorated, 0, len(pool))
	for _, p := range pool {
		conf := confidence.Score(p.entry, p.effective, maxEffective, maxEffective > 0, weights)
		if conf.Combined < opts.MinConfidence {
			continue
		}
		filtered = append(filtered, decorated{entry: p.entry, act: p.act, conf: conf})
	}

	scoredForRank := make([]activation.Scored, len(filtered))
	for i, d := range filtered {
		scoredForRank[i] = activation.Scored{Entry: d.entry, Activation: d.act}
	}
	ranked := activation.Rank(scoredForRank, limit)

	confByID := make(map[string]model.ConfidenceDetail, len(filtered))
	for _, d := range filtered {
		confByID[d.entry.ID] = d.conf
	}

	results := make([]model.Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, model.Result{
			Entry:      r.Entry,
			Activation: r.Activation,
			Confidence: confByID[r.Entry.ID],
		})
	}

	return results, nil
}

func (m *Memory) gatherCandidates(ctx context.Context, q string, opts RecallOptions) (map[string]model.Entry, error) {
	candidates := map[string]model.Entry{}

	ftsQuery := query.SanitizeFTS(q)
	if ftsQuery != "" {
		hits, err := m.db.SearchFTS(ctx, ftsQuery, m.cfg.FTSCandidateLimit)
		if err != nil {
			return nil, engramerr.Storage("searchFTS", err)
		}
		for _, e := range hits {
			candidates[e.ID] = e
		}
	} else {
		all, err := m.db.All(ctx, opts.IncludeArchive)
		if err != nil {
			return nil, engramerr.Storage("all", err)
		}
		for _, e := range all {
			candidates[e.ID] = e
		}
	}

	if opts.GraphExpand {
		seedIDs := make([]string, 0, len(candidates))
		for id := range candidates {
			seedIDs = append(seedIDs, id)
		}
		exp, err := assoc.ExpandCandidates(ctx, m.db, seedIDs, opts.QueryEntities, m.cfg.GraphExpandHops)
		if err != nil {
			return nil, engramerr.Storage("expandCandidates", err)
		}
		for id, e := range exp.EntityEntries {
			candidates[id] = e
		}
		for _, id := range exp.HebbianIDs {
			if _, ok := candidates[id]; ok {
				continue
			}
			e, err := m.db.Get(ctx, id)
			if err != nil {
				return nil, engramerr.Storage("get", err)
			}
			if e != nil {
				candidates[id] = *e
			}
		}
	}

	return candidates, nil
}

// applyRetrievalInducedForgetting suppresses same-type overlapping
// competitors of the top result (or of every returned result, under the
// SuppressAllReturned config — spec.md §9 open question).
func (m *Memory) applyRetrievalInducedForgetting(ctx context.Context, results []model.Result) error {
	targets := results[:1]
	if m.cfg.SuppressAllReturned {
		targets = results
	}

	all, err := m.db.All(ctx, false)
	if err != nil {
		return engramerr.Storage("all", err)
	}
	byID := make(map[string]*model.Entry, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	touched := map[string]bool{}
	for _, top := range targets {
		var competitors []*model.Entry
		for id, c := range byID {
			if id == top.Entry.ID {
				continue
			}
			competitors = append(competitors, c)
		}
		forgetting.Suppress(top.Entry, competitors, m.cfg.SuppressionFactor, m.cfg.OverlapThreshold)
		for _, c := range competitors {
			touched[c.ID] = true
		}
	}

	for id := range touched {
		if err := m.db.Update(ctx, *byID[id]); err != nil {
			return engramerr.Storage("update", err)
		}
	}
	return nil
}

// semanticRerank reorders an already activation-ranked result set in place,
// blending in cosine similarity against an optional embedder (spec.md §1's
// embedding non-goal: off by default, additive when configured). A failed
// query embedding leaves the existing order, and a failed per-result
// embedding keeps that result's plain activation, rather than failing the
// whole recall. Embedding calls are not given a timeout of their own.
func (m *Memory) semanticRerank(ctx context.Context, q string, results []model.Result) {
	queryVec, err := m.embedder.Embed(ctx, q)
	if err != nil {
		m.log.WithError(err).Warn("semantic rerank: query embedding failed, skipping")
		return
	}

	type scored struct {
		result model.Result
		blend  float64
	}
	scoredResults := make([]scored, len(results))
	for i, r := range results {
		blend := r.Activation
		vec, err := m.embedder.Embed(ctx, r.Entry.Content)
		if err == nil {
			blend = r.Activation * (1 + embedding.CosineSimilarity(queryVec, vec))
		}
		scoredResults[i] = scored{result: r, blend: blend}
	}
	sort.SliceStable(scoredResults, func(i, j int) bool {
		return scoredResults[i].blend > scoredResults[j].blend
	})
	for i, s := range scoredResults {
		results[i] = s.result
	}
}

func (m *Memory) confidenceWeights() confidence.Weights {
	return confidence.Weights{
		BaseReliability:   m.cfg.DefaultReliability,
		ReliabilityWeight: m.cfg.ConfidenceReliabilityWeight,
		SalienceWeight:    m.cfg.ConfidenceSalienceWeight,
		SalienceSigmoidK:  m.cfg.SalienceSigmoidK,
	}
}
