package engram

import (
	"context"
	"testing"

	"github.com/engramhq/engram/internal/reward"
)

func TestRewardPositiveBoostsMostRecentlyAccessed(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "the deploy script now retries on failure", AddOptions{})

	before, _ := m.Get(ctx, e.ID)

	polarity, err := m.Reward(ctx, "That's exactly right, thanks!", 1, 0.15)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if polarity != reward.Positive {
		t.Fatalf("expected positive polarity, got %v", polarity)
	}

	after, _ := m.Get(ctx, e.ID)
	if after.Importance <= before.Importance {
		t.Errorf("expected importance to increase, before=%v after=%v", before.Importance, after.Importance)
	}
	if after.CoreStrength != before.CoreStrength {
		t.Error("expected core_strength untouched by reward")
	}
}

func TestRewardNegativeReducesImportance(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "the deploy script now retries on failure", AddOptions{})
	before, _ := m.Get(ctx, e.ID)

	polarity, err := m.Reward(ctx, "No, that's wrong", 1, 0.15)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if polarity != reward.Negative {
		t.Fatalf("expected negative polarity, got %v", polarity)
	}

	after, _ := m.Get(ctx, e.ID)
	if after.Importance >= before.Importance {
		t.Errorf("expected importance to decrease, before=%v after=%v", before.Importance, after.Importance)
	}
}

func TestRewardNeutralTouchesNothing(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "the weather today is overcast", AddOptions{})
	before, _ := m.Get(ctx, e.ID)

	polarity, err := m.Reward(ctx, "the sky looks grey", 1, 0.15)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if polarity != reward.Neutral {
		t.Fatalf("expected neutral polarity, got %v", polarity)
	}

	after, _ := m.Get(ctx, e.ID)
	if after.Importance != before.Importance {
		t.Error("expected neutral feedback to be a no-op")
	}
}
