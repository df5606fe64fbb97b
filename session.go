package engram

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/engramhq/engram/internal/confidence"
	"github.com/engramhq/engram/internal/forgetting"
	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/session"
)

// NewSessionID mints a fresh session identifier for SessionRecall. Sessions
// have no natural lexicographic ordering requirement the way memory ids do,
// so they use a random uuid rather than the store's ulid sequence.
func NewSessionID() string {
	return uuid.NewString()
}

// SessionResult is the outcome of a gated session recall: either a fresh
// Recall (GateReason != TopicContinuous) or a projection of the session's
// current working-memory set with freshly computed confidence.
type SessionResult struct {
	Results []model.Result
	Reason  session.GateReason
}

// SessionRecall wraps Recall with the per-conversation working-memory gate
// (spec.md §4.8): it only goes to the store when the session's active set
// is empty or the query's topic has drifted away from what's active. On a
// continuing topic it returns the current working-memory entries' fresh
// confidence without appending access-log rows.
func (m *Memory) SessionRecall(ctx context.Context, sessionID, q string, opts RecallOptions) (SessionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	wm := m.sessions.Get(sessionID)

	probe := func(query string) ([]string, error) {
		probeOpts := RecallOptions{Limit: 3, GraphExpand: false}
		res, err := m.rankCandidates(ctx, query, probeOpts, now)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(res))
		for i, r := range res {
			ids[i] = r.Entry.ID
		}
		return ids, nil
	}
	neighborsOf := func(id string) []string {
		neighbors, err := m.db.GetHebbianNeighbors(ctx, id, 0)
		if err != nil {
			return nil
		}
		out := make([]string, len(neighbors))
		for i, n := range neighbors {
			out[i] = n.TargetID
		}
		return out
	}

	needs, reason, _, err := session.NeedsRecall(wm, now, q, probe, neighborsOf, m.cfg.SessionOverlapMin)
	if err != nil {
		return SessionResult{}, err
	}

	if needs {
		results, err := m.recallLocked(ctx, q, opts, now)
		if err != nil {
			return SessionResult{}, err
		}
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.Entry.ID
		}
		wm.Activate(ids, now)
		return SessionResult{Results: results, Reason: reason}, nil
	}

	return SessionResult{Results: m.projectWM(ctx, wm, now), Reason: reason}, nil
}

// projectWM scores the session's current working-memory set without
// touching access logs, for the topic-continuous path.
func (m *Memory) projectWM(ctx context.Context, wm *session.WM, now time.Time) []model.Result {
	ids := wm.IDs(now)

	type loaded struct {
		entry     model.Entry
		effective float64
	}
	var maxEffective float64
	entries := make([]loaded, 0, len(ids))
	for _, id := range ids {
		e, err := m.db.Get(ctx, id)
		if err != nil || e == nil {
			continue
		}
		baseDecay := model.BaseDecayRate[e.Type]
		stability := forgetting.Stability(*e, baseDecay)
		retrievability := forgetting.Retrievability(*e, now, stability)
		eff := forgetting.EffectiveStrength(*e, retrievability)
		if eff > maxEffective {
			maxEffective = eff
		}
		entries = append(entries, loaded{entry: *e, effective: eff})
	}

	weights := m.confidenceWeights()
	results := make([]model.Result, 0, len(entries))
	for _, l := range entries {
		conf := confidence.Score(l.entry, l.effective, maxEffective, maxEffective > 0, weights)
		results = append(results, model.Result{Entry: l.entry, Confidence: conf})
	}
	return results
}

// ClearSession drops a conversation's working-memory set.
func (m *Memory) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.ClearSession(sessionID)
}
