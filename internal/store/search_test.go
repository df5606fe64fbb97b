package store

import (
	"context"
	"testing"

	"github.com/engramhq/engram/internal/model"
)

func TestSearchFTS_Basic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Add(ctx, model.Entry{Content: "Go is a compiled language with goroutines", Type: model.Factual})
	s.Add(ctx, model.Entry{Content: "Python is an interpreted language", Type: model.Factual})
	s.Add(ctx, model.Entry{Content: "Rust has a borrow checker", Type: model.Factual})

	results, err := s.SearchFTS(ctx, "language", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	results, err = s.SearchFTS(ctx, "goroutines", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	results, err = s.SearchFTS(ctx, "javascript", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearchFTS_EmptyQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Add(ctx, model.Entry{Content: "something", Type: model.Factual})

	results, err := s.SearchFTS(ctx, "", 50)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty query, got %v", results)
	}
}

func TestSearchFTS_ExcludesDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, _ := s.Add(ctx, model.Entry{Content: "this should not appear after delete", Type: model.Factual})
	s.Delete(ctx, e.ID)

	results, err := s.SearchFTS(ctx, "appear", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0, got %d", len(results))
	}
}

func TestGraphLinksAndEntitySearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Add(ctx, model.Entry{Content: "Alice met Bob at the conference", Type: model.Episodic})
	b, _ := s.Add(ctx, model.Entry{Content: "Bob gave a talk on databases", Type: model.Factual})

	s.AddGraphLink(ctx, a.ID, "Alice", "mentions")
	s.AddGraphLink(ctx, a.ID, "Bob", "mentions")
	s.AddGraphLink(ctx, b.ID, "Bob", "mentions")

	results, err := s.SearchByEntity(ctx, "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 memories mentioning Bob, got %d", len(results))
	}

	entities, err := s.GetEntities(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities for memory a, got %d", len(entities))
	}
}

func TestGetRelatedEntities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m1, _ := s.Add(ctx, model.Entry{Content: "m1", Type: model.Factual})
	m2, _ := s.Add(ctx, model.Entry{Content: "m2", Type: model.Factual})

	// Alice and Bob co-occur in m1; Bob and Carol co-occur in m2.
	s.AddGraphLink(ctx, m1.ID, "Alice", "")
	s.AddGraphLink(ctx, m1.ID, "Bob", "")
	s.AddGraphLink(ctx, m2.ID, "Bob", "")
	s.AddGraphLink(ctx, m2.ID, "Carol", "")

	oneHop, err := s.GetRelatedEntities(ctx, "Alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !containsStr(oneHop, "Bob") || containsStr(oneHop, "Carol") {
		t.Errorf("expected 1-hop from Alice to reach only Bob, got %v", oneHop)
	}

	twoHop, err := s.GetRelatedEntities(ctx, "Alice", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !containsStr(twoHop, "Carol") {
		t.Errorf("expected 2-hop from Alice to reach Carol, got %v", twoHop)
	}
}

func containsStr(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}
