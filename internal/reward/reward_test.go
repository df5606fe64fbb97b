package reward

import (
	"testing"

	"github.com/engramhq/engram/internal/model"
)

func TestDetectFeedbackPositive(t *testing.T) {
	p, conf := DetectFeedback("That's great, thanks!", DefaultWordlists())
	if p != Positive {
		t.Errorf("expected positive, got %v", p)
	}
	if conf <= 0.3 {
		t.Errorf("expected confidence above base, got %v", conf)
	}
}

func TestDetectFeedbackNegative(t *testing.T) {
	p, _ := DetectFeedback("No, that's wrong", DefaultWordlists())
	if p != Negative {
		t.Errorf("expected negative, got %v", p)
	}
}

func TestDetectFeedbackNeutral(t *testing.T) {
	p, conf := DetectFeedback("The weather is cloudy today", DefaultWordlists())
	if p != Neutral {
		t.Errorf("expected neutral, got %v", p)
	}
	if conf != 0 {
		t.Errorf("expected 0 confidence for neutral, got %v", conf)
	}
}

func TestDetectFeedbackTieIsAmbiguousNeutral(t *testing.T) {
	// "yes" (positive) and "bad" (negative) each match exactly once, so
	// neither side outweighs the other — an equal tie resolves to
	// neutral rather than breaking toward positive.
	p, conf := DetectFeedback("yes but bad", DefaultWordlists())
	if p != Neutral {
		t.Errorf("expected a tied match count to resolve to neutral, got %v", p)
	}
	if conf != 0.1 {
		t.Errorf("expected the ambiguous-tie confidence of 0.1, got %v", conf)
	}
}

func TestApplyPositiveDecaysWithRecency(t *testing.T) {
	a := &model.Entry{Importance: 0.5, WorkingStrength: 1.0}
	b := &model.Entry{Importance: 0.5, WorkingStrength: 1.0}
	c := &model.Entry{Importance: 0.5, WorkingStrength: 1.0}

	Apply([]*model.Entry{a, b, c}, Positive, 0.15)

	deltaA := a.Importance - 0.5
	deltaB := b.Importance - 0.5
	deltaC := c.Importance - 0.5

	if !approxEqual(deltaA, 0.15, 1e-9) {
		t.Errorf("expected delta a = magnitude (0.15), got %v", deltaA)
	}
	if !approxEqual(deltaB, 0.15/1.5, 0.001) {
		t.Errorf("expected delta b ≈ magnitude/1.5, got %v", deltaB)
	}
	if !approxEqual(deltaC, 0.15/2.0, 0.001) {
		t.Errorf("expected delta c ≈ magnitude/2, got %v", deltaC)
	}
}

func TestApplyNegativeNeverExceedsBounds(t *testing.T) {
	e := &model.Entry{Importance: 0.05, WorkingStrength: 1.0}
	Apply([]*model.Entry{e}, Negative, 0.5)
	if e.Importance < 0 {
		t.Errorf("expected importance clamped at 0, got %v", e.Importance)
	}
}

func TestApplyNeutralNoOp(t *testing.T) {
	e := &model.Entry{Importance: 0.5, WorkingStrength: 1.0, CoreStrength: 0.3}
	Apply([]*model.Entry{e}, Neutral, 0.15)
	if e.Importance != 0.5 || e.WorkingStrength != 1.0 {
		t.Error("expected neutral polarity to be a no-op")
	}
}

func TestApplyNeverTouchesCoreStrength(t *testing.T) {
	e := &model.Entry{Importance: 0.5, WorkingStrength: 1.0, CoreStrength: 0.42}
	Apply([]*model.Entry{e}, Positive, 0.15)
	if e.CoreStrength != 0.42 {
		t.Errorf("expected core_strength untouched, got %v", e.CoreStrength)
	}
}

func approxEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
