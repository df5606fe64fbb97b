package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/engramhq/engram/internal/model"
)

// StrengthenLink records a Hebbian co-activation between two memories,
// bidirectionally, capped at ceiling (spec.md §4.6 "cells that fire
// together wire together"). A fresh pair starts at strength 1.0.
func (s *SQLiteStore) StrengthenLink(ctx context.Context, a, b string, ceiling float64) error {
	if a == b {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hebbian_links (source_id, target_id, strength, coactivation_count, created_at)
			VALUES (?, ?, 1.0, 1, ?)
			ON CONFLICT(source_id, target_id) DO UPDATE SET
				strength = MIN(?, strength + 1.0),
				coactivation_count = coactivation_count + 1`,
			pair[0], pair[1], now, ceiling); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetHebbianNeighbors returns a memory's top-k co-activated neighbors,
// ordered by link strength descending. k <= 0 means unlimited (spec.md
// §4.5's default).
func (s *SQLiteStore) GetHebbianNeighbors(ctx context.Context, id string, k int) ([]model.HebbianLink, error) {
	var rows *sql.Rows
	var err error
	if k > 0 {
		rows, err = s.db.QueryContext(ctx, `
			SELECT source_id, target_id, strength, coactivation_count, created_at
			FROM hebbian_links WHERE source_id = ?
			ORDER BY strength DESC LIMIT ?`, id, k)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT source_id, target_id, strength, coactivation_count, created_at
			FROM hebbian_links WHERE source_id = ?
			ORDER BY strength DESC`, id)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HebbianLink
	for rows.Next() {
		var l model.HebbianLink
		var createdAt string
		if err := rows.Scan(&l.SourceID, &l.TargetID, &l.Strength, &l.CoactivationCount, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}
