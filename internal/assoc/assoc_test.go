package assoc

import (
	"context"
	"testing"

	"github.com/engramhq/engram/internal/model"
)

type fakeLinker struct {
	calls [][2]string
}

func (f *fakeLinker) StrengthenLink(ctx context.Context, a, b string, ceiling float64) error {
	f.calls = append(f.calls, [2]string{a, b})
	return nil
}

func TestStrengthenBatchCoversAllUnorderedPairs(t *testing.T) {
	f := &fakeLinker{}
	err := StrengthenBatch(context.Background(), f, []string{"a", "b", "c"}, 10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.calls) != 3 {
		t.Fatalf("expected 3 pair calls for 3 ids, got %d", len(f.calls))
	}
}

func TestStrengthenBatchSingleID(t *testing.T) {
	f := &fakeLinker{}
	StrengthenBatch(context.Background(), f, []string{"a"}, 10.0)
	if len(f.calls) != 0 {
		t.Errorf("expected no calls for a single id, got %d", len(f.calls))
	}
}

type fakeExpander struct {
	neighbors map[string][]model.HebbianLink
	related   map[string][]string
	byEntity  map[string][]model.Entry
}

func (f *fakeExpander) GetHebbianNeighbors(ctx context.Context, id string, k int) ([]model.HebbianLink, error) {
	return f.neighbors[id], nil
}

func (f *fakeExpander) SearchByEntity(ctx context.Context, entity string) ([]model.Entry, error) {
	return f.byEntity[entity], nil
}

func (f *fakeExpander) GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error) {
	return f.related[entity], nil
}

func TestExpandCandidatesUnionsHebbianAndEntity(t *testing.T) {
	f := &fakeExpander{
		neighbors: map[string][]model.HebbianLink{
			"seed1": {{TargetID: "n1"}, {TargetID: "n2"}},
		},
		related: map[string][]string{
			"coffee": {"espresso"},
		},
		byEntity: map[string][]model.Entry{
			"coffee":   {{ID: "e1"}},
			"espresso": {{ID: "e2"}},
		},
	}

	exp, err := ExpandCandidates(context.Background(), f, []string{"seed1"}, []string{"coffee"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.HebbianIDs) != 2 {
		t.Errorf("expected 2 hebbian neighbors, got %d", len(exp.HebbianIDs))
	}
	if len(exp.EntityEntries) != 2 {
		t.Errorf("expected 2 entity-linked entries, got %d", len(exp.EntityEntries))
	}
}
