package engram

import (
	"context"
	"testing"

	"github.com/engramhq/engram/internal/embedding"
	"github.com/engramhq/engram/internal/model"
)

func TestRecallMatchesContent(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	m.Add(ctx, "the quarterly report covers revenue growth", AddOptions{})
	m.Add(ctx, "the cat sat on the mat", AddOptions{})

	results, err := m.Recall(ctx, "quarterly revenue", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].Entry.Content != "the quarterly report covers revenue growth" {
		t.Errorf("unexpected match: %q", results[0].Entry.Content)
	}
}

func TestRecallRecordsAccess(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "launch checklist for the new feature", AddOptions{})

	if _, err := m.Recall(ctx, "launch checklist", DefaultRecallOptions()); err != nil {
		t.Fatalf("recall: %v", err)
	}

	got, _ := m.Get(ctx, e.ID)
	if got.AccessCount != 2 { // one at add, one at recall
		t.Errorf("expected access_count 2, got %d", got.AccessCount)
	}
}

func TestRecallRespectsLimit(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	for i := 0; i < 5; i++ {
		m.Add(ctx, "budget planning notes for next quarter", AddOptions{})
	}

	opts := DefaultRecallOptions()
	opts.Limit = 2
	results, err := m.Recall(ctx, "budget planning", opts)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit of 2, got %d", len(results))
	}
}

func TestRecallExcludesArchivedByDefault(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "an old deprecated process document", AddOptions{})
	if err := m.Forget(ctx, e.ID); err != nil {
		t.Fatalf("forget: %v", err)
	}

	results, err := m.Recall(ctx, "deprecated process", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected archived entry excluded, got %d results", len(results))
	}
}

func TestRecallIncludeArchiveOverride(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	e, _ := m.Add(ctx, "an old deprecated process document", AddOptions{})
	m.Forget(ctx, e.ID)

	opts := DefaultRecallOptions()
	opts.IncludeArchive = true
	results, err := m.Recall(ctx, "deprecated process", opts)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected archived entry included, got %d results", len(results))
	}
}

func TestRecallExcludesContradictedByDefault(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	a, _ := m.Add(ctx, "the office closes at five", AddOptions{})
	m.Add(ctx, "the office closes at six", AddOptions{Contradicts: a.ID})

	results, err := m.Recall(ctx, "office closes", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	for _, r := range results {
		if r.Entry.ID == a.ID {
			t.Error("expected contradicted entry excluded by default")
		}
	}
}

func TestRecallStrengthensHebbianLinkAcrossResults(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	a, _ := m.Add(ctx, "project atlas kickoff meeting notes", AddOptions{})
	b, _ := m.Add(ctx, "project atlas budget approval notes", AddOptions{})

	opts := DefaultRecallOptions()
	opts.GraphExpand = false
	if _, err := m.Recall(ctx, "project atlas notes", opts); err != nil {
		t.Fatalf("recall: %v", err)
	}

	neighbors, err := m.db.GetHebbianNeighbors(ctx, a.ID, 0)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	found := false
	for _, n := range neighbors {
		if n.TargetID == b.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected a Hebbian link between co-recalled results")
	}
}

func TestRecallFallsBackToFullScanOnAllStopwordQuery(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	m.Add(ctx, "a fact about the world", AddOptions{})

	// "the a" sanitizes to an empty FTS query (all stop words), so Recall
	// must fall back to a full scan instead of returning zero candidates.
	results, err := m.Recall(ctx, "the a", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected full-scan fallback to surface the entry, got %d", len(results))
	}
}

func TestRecallDecoratesConfidence(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	m.Add(ctx, "my favorite color is teal", AddOptions{Type: model.Emotional, Pinned: true})

	results, err := m.Recall(ctx, "favorite color teal", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Confidence.Label == "" {
		t.Error("expected a confidence label")
	}
	if results[0].Confidence.Reliability < 0.95 {
		t.Errorf("expected pinned entry to floor reliability at 0.95, got %v", results[0].Confidence.Reliability)
	}
}

// fakeEmbedder assigns each distinct piece of text a vector from a fixed
// table, so tests can control similarity without a real embedding model.
type fakeEmbedder struct {
	vectors map[string]embedding.Vector
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return embedding.Vector{0, 0}, nil
}

func (f *fakeEmbedder) Dims() int { return 2 }

func TestSetEmbedderRerankFavorsClosestVector(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	m.Add(ctx, "quarterly notes about the launch timeline", AddOptions{})
	b, _ := m.Add(ctx, "quarterly notes about the budget forecast", AddOptions{})

	m.SetEmbedder(&fakeEmbedder{vectors: map[string]embedding.Vector{
		"quarterly notes":                           {1, 0},
		"quarterly notes about the launch timeline": {0, 1},
		"quarterly notes about the budget forecast": {1, 0},
	}})

	results, err := m.Recall(ctx, "quarterly notes", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Entry.ID != b.ID {
		t.Errorf("expected %q (closer embedding) ranked first, got %q", b.ID, results[0].Entry.ID)
	}
}

func TestNilEmbedderSkipsRerank(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	m.Add(ctx, "a fact that should still recall fine", AddOptions{})

	results, err := m.Recall(ctx, "fact recall fine", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result without an embedder set, got %d", len(results))
	}
}
