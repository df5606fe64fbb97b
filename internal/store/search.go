package store

import (
	"context"
	"fmt"

	"github.com/engramhq/engram/internal/model"
)

// SearchFTS runs the FTS5 full-text search primitive over a sanitized,
// OR-joined keyword query (spec.md §4.2 step 1a). Sanitization is the
// caller's responsibility (see internal/query); an empty query returns no
// rows rather than matching everything — callers fall back to All instead.
func (s *SQLiteStore) SearchFTS(ctx context.Context, query string, limit int) ([]model.Entry, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.content, m.memory_type, m.layer, m.importance, m.working_strength,
		       m.core_strength, m.access_count, m.consolidation_count, m.created_at,
		       m.last_accessed, m.last_consolidated, m.pinned, m.contradicts,
		       m.contradicted_by, m.context
		FROM memories_fts
		JOIN memories m ON m.rowid = memories_fts.rowid
		WHERE memories_fts.content MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddGraphLink records that a memory mentions an entity node, optionally
// under a named relation. Entities are extracted by the host — core never
// does NLP on content.
func (s *SQLiteStore) AddGraphLink(ctx context.Context, memoryID, nodeID, relation string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO graph_links (memory_id, node_id, relation) VALUES (?, ?, ?)`,
		memoryID, nodeID, relation)
	return err
}

// SearchByEntity returns every memory that mentions the given entity node.
func (s *SQLiteStore) SearchByEntity(ctx context.Context, entity string) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE id IN (SELECT memory_id FROM graph_links WHERE node_id = ?)`, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEntities returns the entity nodes a memory is linked to.
func (s *SQLiteStore) GetEntities(ctx context.Context, memoryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT node_id FROM graph_links WHERE memory_id = ?`, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetRelatedEntities does a BFS over the implicit bipartite entity↔memory↔
// entity graph, capped at hops, and returns the entity nodes reached
// (spec.md §4.5 "getRelatedEntities").
func (s *SQLiteStore) GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error) {
	if hops <= 0 {
		hops = 1
	}

	frontier := map[string]bool{entity: true}
	visited := map[string]bool{entity: true}

	for h := 0; h < hops; h++ {
		if len(frontier) == 0 {
			break
		}
		next := map[string]bool{}
		for node := range frontier {
			memIDs, err := s.memoriesForEntity(ctx, node)
			if err != nil {
				return nil, err
			}
			for _, mid := range memIDs {
				neighbors, err := s.GetEntities(ctx, mid)
				if err != nil {
					return nil, err
				}
				for _, n := range neighbors {
					if !visited[n] {
						visited[n] = true
						next[n] = true
					}
				}
			}
		}
		frontier = next
	}

	delete(visited, entity)
	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	return out, nil
}

func (s *SQLiteStore) memoriesForEntity(ctx context.Context, entity string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT memory_id FROM graph_links WHERE node_id = ?`, entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
