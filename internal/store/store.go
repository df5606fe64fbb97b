// Package store provides Engram's persistence contract (spec.md §6) and a
// modernc.org/sqlite-backed implementation. Core logic never depends on
// anything beyond the Store interface, so a host may swap in another
// backing (embedded file or hosted relational) without touching the
// dynamics components.
package store

import (
	"context"
	"time"

	"github.com/engramhq/engram/internal/model"
)

// Store is the persistence contract every Engram backend must satisfy.
type Store interface {
	Add(ctx context.Context, e model.Entry) (model.Entry, error)
	Get(ctx context.Context, id string) (*model.Entry, error)
	Update(ctx context.Context, e model.Entry) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context, includeArchive bool) ([]model.Entry, error)

	// SearchFTS runs the store's full-text-search primitive over a
	// sanitized, OR-joined keyword query.
	SearchFTS(ctx context.Context, query string, limit int) ([]model.Entry, error)

	RecordAccess(ctx context.Context, id string, at time.Time) error
	GetAccessTimes(ctx context.Context, id string) ([]time.Time, error)

	AddGraphLink(ctx context.Context, memoryID, nodeID, relation string) error
	SearchByEntity(ctx context.Context, entity string) ([]model.Entry, error)
	GetEntities(ctx context.Context, memoryID string) ([]string, error)
	GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error)

	StrengthenLink(ctx context.Context, a, b string, ceiling float64) error
	GetHebbianNeighbors(ctx context.Context, id string, k int) ([]model.HebbianLink, error)

	Stats(ctx context.Context, dbPath string) (*Stats, error)
	ExportAll(ctx context.Context) ([]model.Entry, error)
	ImportAll(ctx context.Context, entries []model.Entry) (int, error)

	Close() error
	Export(ctx context.Context, path string) error
}
