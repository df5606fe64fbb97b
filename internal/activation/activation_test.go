package activation

import (
	"math"
	"testing"
	"time"
)

func TestBaseLevelNoHistory(t *testing.T) {
	if got := BaseLevel(nil, time.Now(), 0.5); got != NegInf {
		t.Errorf("expected NegInf, got %v", got)
	}
}

func TestBaseLevelMonotoneInAccessCount(t *testing.T) {
	now := time.Now()
	one := []time.Time{now.Add(-time.Hour)}
	three := []time.Time{now.Add(-time.Hour), now.Add(-2 * time.Hour), now.Add(-3 * time.Hour)}

	b1 := BaseLevel(one, now, 0.5)
	b3 := BaseLevel(three, now, 0.5)
	if !(b3 > b1) {
		t.Errorf("expected activation to grow with access count: b1=%v b3=%v", b1, b3)
	}
}

func TestBaseLevelClampsNonPositiveAge(t *testing.T) {
	now := time.Now()
	got := BaseLevel([]time.Time{now.Add(time.Hour)}, now, 0.5)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("expected a finite clamped value, got %v", got)
	}
}

func TestSpreadingNoKeywords(t *testing.T) {
	if got := Spreading("some content", nil, 1.5); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestSpreadingPartialMatch(t *testing.T) {
	got := Spreading("the coffee machine broke", []string{"coffee", "printer"}, 1.5)
	want := 0.5 * 1.5
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRetrievalPropagatesNegInf(t *testing.T) {
	if got := Retrieval(NegInf, 1.0, 0.5, 0.5); got != NegInf {
		t.Errorf("expected NegInf, got %v", got)
	}
}

func TestRankOrdersByActivationThenImportanceThenRecency(t *testing.T) {
	now := time.Now()
	mk := func(id string, act, imp float64, last time.Time) Scored {
		e := Scored{Activation: act}
		e.Entry.ID = id
		e.Entry.Importance = imp
		e.Entry.LastAccessed = last
		return e
	}

	scored := []Scored{
		mk("low", 1.0, 0.5, now),
		mk("high", 3.0, 0.1, now),
		mk("tie-older", 2.0, 0.5, now.Add(-time.Hour)),
		mk("tie-newer", 2.0, 0.5, now),
	}

	ranked := Rank(scored, 0)
	order := []string{ranked[0].Entry.ID, ranked[1].Entry.ID, ranked[2].Entry.ID, ranked[3].Entry.ID}
	want := []string{"high", "tie-newer", "tie-older", "low"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestRankTruncatesToLimit(t *testing.T) {
	scored := []Scored{{Activation: 1}, {Activation: 2}, {Activation: 3}}
	ranked := Rank(scored, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2, got %d", len(ranked))
	}
}
