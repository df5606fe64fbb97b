// Package assoc orchestrates Hebbian co-activation updates and entity-graph
// neighbor expansion (spec.md §4.5) on top of the store's link primitives.
// The store owns the persisted link rows; this package owns the "which
// pairs get strengthened" and "how expansion folds into a candidate set"
// policy.
package assoc

import (
	"context"

	"github.com/engramhq/engram/internal/model"
)

// LinkStrengthener is the subset of store.Store assoc needs to strengthen
// co-activation links, kept narrow to avoid an import cycle with store.
type LinkStrengthener interface {
	StrengthenLink(ctx context.Context, a, b string, ceiling float64) error
}

// StrengthenBatch writes a Hebbian link for every unordered pair among ids
// (spec.md §4.5: "for each unordered pair (i,j)..."), each update atomic
// per pair as required by §5's ordering guarantees.
func StrengthenBatch(ctx context.Context, s LinkStrengthener, ids []string, ceiling float64) error {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if err := s.StrengthenLink(ctx, ids[i], ids[j], ceiling); err != nil {
				return err
			}
		}
	}
	return nil
}

// NeighborExpander is the subset of store.Store needed for graph/Hebbian
// recall expansion.
type NeighborExpander interface {
	GetHebbianNeighbors(ctx context.Context, id string, k int) ([]model.HebbianLink, error)
	SearchByEntity(ctx context.Context, entity string) ([]model.Entry, error)
	GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error)
}

// Expansion holds the two kinds of candidates graph/Hebbian expansion can
// surface: Hebbian neighbor IDs (the caller must still fetch the entries)
// and entity-linked entries (already fully loaded by SearchByEntity).
type Expansion struct {
	HebbianIDs    []string
	EntityEntries map[string]model.Entry
}

// ExpandCandidates unions in Hebbian neighbors of every seed id and
// memories mentioning entities related to queryEntities, within hops
// (spec.md §4.2 step 2).
func ExpandCandidates(ctx context.Context, s NeighborExpander, seedIDs []string, queryEntities []string, hops int) (Expansion, error) {
	seen := map[string]bool{}
	exp := Expansion{EntityEntries: map[string]model.Entry{}}

	for _, id := range seedIDs {
		neighbors, err := s.GetHebbianNeighbors(ctx, id, 0)
		if err != nil {
			return exp, err
		}
		for _, n := range neighbors {
			if !seen[n.TargetID] {
				seen[n.TargetID] = true
				exp.HebbianIDs = append(exp.HebbianIDs, n.TargetID)
			}
		}
	}

	entitySet := map[string]bool{}
	for _, entity := range queryEntities {
		entitySet[entity] = true
		related, err := s.GetRelatedEntities(ctx, entity, hops)
		if err != nil {
			return exp, err
		}
		for _, r := range related {
			entitySet[r] = true
		}
	}

	for entity := range entitySet {
		mems, err := s.SearchByEntity(ctx, entity)
		if err != nil {
			return exp, err
		}
		for _, m := range mems {
			exp.EntityEntries[m.ID] = m
		}
	}

	return exp, nil
}
