package forgetting

import (
	"testing"
	"time"

	"github.com/engramhq/engram/internal/model"
)

func TestStabilityGrowsWithAccessImportanceConsolidation(t *testing.T) {
	base := model.Entry{Importance: 0.3}
	boosted := model.Entry{Importance: 0.3, AccessCount: 10, ConsolidationCount: 3}

	s0 := Stability(base, 0.03)
	s1 := Stability(boosted, 0.03)
	if !(s1 > s0) {
		t.Errorf("expected stability to grow, got s0=%v s1=%v", s0, s1)
	}
}

func TestRetrievabilityAtZeroAge(t *testing.T) {
	now := time.Now()
	e := model.Entry{CreatedAt: now, LastAccessed: now}
	if got := Retrievability(e, now, 10); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestRetrievabilityDecaysOverTime(t *testing.T) {
	now := time.Now()
	e := model.Entry{CreatedAt: now.Add(-40 * 24 * time.Hour), LastAccessed: now.Add(-30 * 24 * time.Hour)}
	r := Retrievability(e, now, 10)
	if !(r > 0 && r < 1) {
		t.Errorf("expected 0 < r < 1, got %v", r)
	}
}

func TestShouldForgetRespectsPinned(t *testing.T) {
	e := model.Entry{Pinned: true}
	if ShouldForget(e, 0.0, 0.01) {
		t.Error("expected pinned entry to never be forgotten")
	}
}

func TestShouldForgetThreshold(t *testing.T) {
	e := model.Entry{}
	if !ShouldForget(e, 0.005, 0.01) {
		t.Error("expected forget below threshold")
	}
	if ShouldForget(e, 0.02, 0.01) {
		t.Error("expected no forget above threshold")
	}
}

func TestSuppressOnlySameTypeOverlapping(t *testing.T) {
	r := model.Entry{ID: "r", Type: model.Factual, Content: "the office coffee machine is broken today"}
	same := &model.Entry{ID: "c1", Type: model.Factual, Content: "office coffee machine needs repair", WorkingStrength: 1.0}
	otherType := &model.Entry{ID: "c2", Type: model.Episodic, Content: "office coffee machine needs repair", WorkingStrength: 1.0}
	noOverlap := &model.Entry{ID: "c3", Type: model.Factual, Content: "unrelated text about kayaking", WorkingStrength: 1.0}

	Suppress(r, []*model.Entry{same, otherType, noOverlap}, 0.05, 0.3)

	if same.WorkingStrength >= 1.0 {
		t.Errorf("expected same-type overlapping entry to be suppressed, got %v", same.WorkingStrength)
	}
	if otherType.WorkingStrength != 1.0 {
		t.Errorf("expected other-type entry untouched, got %v", otherType.WorkingStrength)
	}
	if noOverlap.WorkingStrength != 1.0 {
		t.Errorf("expected non-overlapping entry untouched, got %v", noOverlap.WorkingStrength)
	}
}

func TestSuppressSkipsPinned(t *testing.T) {
	r := model.Entry{ID: "r", Type: model.Factual, Content: "office coffee machine broken"}
	pinned := &model.Entry{ID: "c1", Type: model.Factual, Content: "office coffee machine broken again", WorkingStrength: 1.0, Pinned: true}

	Suppress(r, []*model.Entry{pinned}, 0.5, 0.1)

	if pinned.WorkingStrength != 1.0 {
		t.Errorf("expected pinned entry untouched, got %v", pinned.WorkingStrength)
	}
}
