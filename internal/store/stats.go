package store

import (
	"context"
	"os"
)

// Stats holds aggregate counters over the memory store (spec.md §4.1 "stats").
type Stats struct {
	DBPath           string         `json:"db_path"`
	DBSizeBytes      int64          `json:"db_size_bytes"`
	TotalMemories    int            `json:"total_memories"`
	ByLayer          map[string]int `json:"by_layer"`
	ByType           map[string]int `json:"by_type"`
	PinnedCount      int            `json:"pinned_count"`
	AvgWorkingStr    float64        `json:"avg_working_strength"`
	AvgCoreStr       float64        `json:"avg_core_strength"`
	HebbianLinkCount int            `json:"hebbian_link_count"`
	GraphLinkCount   int            `json:"graph_link_count"`
}

// Stats returns aggregate counters for the store backing dbPath. Layer and
// type breakdowns cover every memory, including archived ones.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{
		DBPath:  dbPath,
		ByLayer: map[string]int{},
		ByType:  map[string]int{},
	}

	if dbPath != "" && dbPath != ":memory:" {
		if info, err := os.Stat(dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.TotalMemories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE pinned = 1`).Scan(&st.PinnedCount)
	s.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(working_strength), 0) FROM memories`).Scan(&st.AvgWorkingStr)
	s.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(core_strength), 0) FROM memories`).Scan(&st.AvgCoreStr)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hebbian_links`).Scan(&st.HebbianLinkCount)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graph_links`).Scan(&st.GraphLinkCount)

	if rows, err := s.db.QueryContext(ctx, `SELECT layer, COUNT(*) FROM memories GROUP BY layer`); err == nil {
		for rows.Next() {
			var layer string
			var n int
			if rows.Scan(&layer, &n) == nil {
				st.ByLayer[layer] = n
			}
		}
		rows.Close()
	}

	if rows, err := s.db.QueryContext(ctx, `SELECT memory_type, COUNT(*) FROM memories GROUP BY memory_type`); err == nil {
		for rows.Next() {
			var typ string
			var n int
			if rows.Scan(&typ, &n) == nil {
				st.ByType[typ] = n
			}
		}
		rows.Close()
	}

	return st, nil
}
