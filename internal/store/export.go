package store

import (
	"context"

	"github.com/engramhq/engram/internal/model"
)

// ExportAll returns every memory as structured data, independent of the
// backing file format. Where SQLiteStore.Export copies the database
// byte-for-byte (spec.md §6), ExportAll/ImportAll round-trip through
// model.Entry so a JSON snapshot can move between backends or schema
// versions.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Entry, error) {
	return s.All(ctx, true)
}

// ImportAll re-adds a batch of previously exported entries, preserving
// their original IDs. It does not replay access logs or graph/Hebbian
// links — those are derived state that regenerates through normal use.
func (s *SQLiteStore) ImportAll(ctx context.Context, entries []model.Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		if _, err := s.Add(ctx, e); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
