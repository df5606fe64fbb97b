package engram

import (
	"context"
	"sort"

	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/reward"
)

// Reward detects the polarity of free-text feedback and, for positive or
// negative polarity, nudges the recentN most-recently-accessed memories'
// importance and working_strength with a recency discount (spec.md
// §4.6). recentN <= 0 falls back to the configured RewardRecentN;
// magnitude <= 0 falls back to RewardMagnitude. Neutral feedback is a
// no-op and never touches the store.
func (m *Memory) Reward(ctx context.Context, text string, recentN int, magnitude float64) (reward.Polarity, error) {
	if recentN <= 0 {
		recentN = m.cfg.RewardRecentN
	}
	if magnitude <= 0 {
		magnitude = m.cfg.RewardMagnitude
	}

	polarity, _ := reward.DetectFeedback(text, reward.DefaultWordlists())
	if polarity == reward.Neutral {
		return polarity, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.db.All(ctx, false)
	if err != nil {
		return polarity, engramerr.Storage("all", err)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastAccessed.After(all[j].LastAccessed)
	})
	if len(all) > recentN {
		all = all[:recentN]
	}

	ptrs := make([]*model.Entry, len(all))
	for i := range all {
		ptrs[i] = &all[i]
	}
	reward.Apply(ptrs, polarity, magnitude)

	for _, e := range all {
		if err := m.db.Update(ctx, e); err != nil {
			return polarity, engramerr.Storage("update", err)
		}
	}
	return polarity, nil
}
