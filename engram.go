// Package engram is Engram's embeddable memory engine: the Memory façade
// that wires the persistence layer (internal/store) together with the
// dynamics components (activation, forgetting, consolidation, assoc,
// confidence, reward, anomaly, session) into the operations spec.md §4
// names. It is the only package that imports store, config, and every
// dynamics component together — the components themselves stay ignorant
// of each other and of the façade.
package engram

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/engramhq/engram/internal/anomaly"
	"github.com/engramhq/engram/internal/config"
	"github.com/engramhq/engram/internal/embedding"
	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/model"
	"github.com/engramhq/engram/internal/session"
	"github.com/engramhq/engram/internal/store"
)

// Memory is an embeddable memory engine instance. It holds the §5 lock
// discipline: an exclusive lock for add/consolidate/reward/forget/delete,
// a shared lock for recall.
type Memory struct {
	mu  sync.RWMutex
	db  store.Store
	cfg config.Config

	sessions  *session.Registry
	anomalies *anomaly.Registry
	rng       *rand.Rand
	recallSF  singleflight.Group
	log       *logrus.Logger
	embedder  embedding.Embedder

	dbPath string
}

// Open creates a Memory backed by a SQLite file at dbPath (":memory:" for
// an in-process store) using cfg's tunables.
func Open(dbPath string, cfg config.Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, engramerr.Storage("open", err)
	}
	return New(s, cfg, dbPath), nil
}

// New wraps an existing Store, so a host can swap in any backend
// satisfying the store.Store contract.
func New(s store.Store, cfg config.Config, dbPath string) *Memory {
	return &Memory{
		db:        s,
		cfg:       cfg,
		sessions:  session.NewRegistry(cfg.SessionCapacity, time.Duration(cfg.SessionDecaySecs*float64(time.Second))),
		anomalies: anomaly.NewRegistry(cfg.AnomalyWindowSize),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       logrus.StandardLogger(),
		dbPath:    dbPath,
	}
}

// SetLogger replaces the façade's logger (structured consolidation
// summaries, forget transitions, anomaly flags). Defaults to logrus's
// standard logger.
func (m *Memory) SetLogger(l *logrus.Logger) {
	m.log = l
}

// SetEmbedder attaches an optional semantic-similarity provider (spec.md §1
// non-goal: "embedding-based semantic search, optional, not required for
// core correctness"). Recall's keyword-driven activation ranking runs
// unconditionally; when an embedder is set, Recall additionally blends
// cosine similarity into the final ranking. A nil embedder (the default)
// skips this step entirely.
func (m *Memory) SetEmbedder(e embedding.Embedder) {
	m.embedder = e
}

// Close releases the underlying store.
func (m *Memory) Close() error {
	return m.db.Close()
}

// AddOptions configures Add. A zero Importance means "use the type's
// default importance" (model.DefaultImportance) — Engram never asks a
// caller to add a memory at exactly zero importance, so the zero value
// doubles as "unset" without needing a pointer field.
type AddOptions struct {
	Type        model.Type
	Importance  float64
	Context     []string
	Pinned      bool
	Contradicts string
}

// Add stores a new memory, validating type and any contradicts reference,
// and records its first access so base-level activation has a history
// point from the moment it enters recall (spec.md §4.1, §4.2).
func (m *Memory) Add(ctx context.Context, content string, opts AddOptions) (model.Entry, error) {
	if content == "" {
		return model.Entry{}, engramerr.Invalid("content", "must not be empty")
	}

	typ := opts.Type
	if typ == "" {
		typ = model.Factual
	}
	if !model.ValidTypes[typ] {
		return model.Entry{}, engramerr.Invalid("type", "unrecognized memory type")
	}

	importance := opts.Importance
	if importance == 0 {
		importance = model.DefaultImportance[typ]
	}
	if importance < 0 || importance > 1 {
		return model.Entry{}, engramerr.Invalid("importance", "must be in [0, 1]")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.Contradicts != "" {
		existing, err := m.db.Get(ctx, opts.Contradicts)
		if err != nil {
			return model.Entry{}, engramerr.Storage("get", err)
		}
		if existing == nil {
			return model.Entry{}, engramerr.Invalid("contradicts", "unknown memory id")
		}
	}

	now := time.Now()
	layer := model.LayerWorking
	if opts.Pinned {
		layer = model.LayerCore
	}

	e := model.Entry{
		Content:         content,
		Type:            typ,
		Layer:           layer,
		Importance:      importance,
		WorkingStrength: 1.0,
		CreatedAt:       now,
		LastAccessed:    now,
		Pinned:          opts.Pinned,
		Contradicts:     opts.Contradicts,
		Context:         opts.Context,
	}

	added, err := m.db.Add(ctx, e)
	if err != nil {
		return model.Entry{}, engramerr.Storage("add", err)
	}

	if opts.Contradicts != "" {
		if err := m.markContradicted(ctx, opts.Contradicts, added.ID); err != nil {
			return model.Entry{}, err
		}
	}

	if err := m.db.RecordAccess(ctx, added.ID, now); err != nil {
		return model.Entry{}, engramerr.Storage("recordAccess", err)
	}
	return added, nil
}

func (m *Memory) markContradicted(ctx context.Context, contradictedID, by string) error {
	target, err := m.db.Get(ctx, contradictedID)
	if err != nil {
		return engramerr.Storage("get", err)
	}
	if target == nil {
		return nil
	}
	target.ContradictedBy = by
	if err := m.db.Update(ctx, *target); err != nil {
		return engramerr.Storage("update", err)
	}
	return nil
}

// Get fetches a single memory by id without touching its access history.
func (m *Memory) Get(ctx context.Context, id string) (*model.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.db.Get(ctx, id)
	if err != nil {
		return nil, engramerr.Storage("get", err)
	}
	return e, nil
}

// Pin marks a memory as pinned and immediately promotes it to the core
// layer (spec.md §4.3 invariant: a pinned entry is always core after any
// rebalance — Pin applies that invariant eagerly instead of waiting for
// the next consolidation cycle).
func (m *Memory) Pin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.db.Get(ctx, id)
	if err != nil {
		return engramerr.Storage("get", err)
	}
	if e == nil {
		return engramerr.NotFoundErr(id)
	}
	e.Pinned = true
	e.Layer = model.LayerCore
	return engramerr.Storage("update", m.db.Update(ctx, *e))
}

// Unpin clears a memory's pinned flag. Its layer is left as-is; the next
// consolidation cycle's rebalance step will move it according to its
// strengths like any other entry.
func (m *Memory) Unpin(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.db.Get(ctx, id)
	if err != nil {
		return engramerr.Storage("get", err)
	}
	if e == nil {
		return engramerr.NotFoundErr(id)
	}
	e.Pinned = false
	return engramerr.Storage("update", m.db.Update(ctx, *e))
}

// Delete hard-removes a memory and cascades to its access log, graph
// links, and Hebbian links (spec.md §4.4: "explicit delete(id) removes
// the row and cascades" — distinct from Forget, which archives).
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return engramerr.Storage("delete", m.db.Delete(ctx, id))
}

// Export snapshots the backing database to path (byte-for-byte, via the
// store's VACUUM INTO).
func (m *Memory) Export(ctx context.Context, path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return engramerr.Storage("export", m.db.Export(ctx, path))
}

// ExportEntries returns every memory as structured data, for hosts that
// want a JSON snapshot instead of a raw database copy.
func (m *Memory) ExportEntries(ctx context.Context) ([]model.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := m.db.ExportAll(ctx)
	if err != nil {
		return nil, engramerr.Storage("exportAll", err)
	}
	return entries, nil
}

// ImportEntries re-adds a batch of previously exported entries, preserving
// their original ids.
func (m *Memory) ImportEntries(ctx context.Context, entries []model.Entry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.db.ImportAll(ctx, entries)
	if err != nil {
		return n, engramerr.Storage("importAll", err)
	}
	return n, nil
}

// AddGraphLink records that a memory mentions an entity node, under an
// optional relation label. Entity extraction is the host's job; Engram
// only stores and traverses the resulting graph (spec.md §4.5).
func (m *Memory) AddGraphLink(ctx context.Context, memoryID, nodeID, relation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return engramerr.Storage("addGraphLink", m.db.AddGraphLink(ctx, memoryID, nodeID, relation))
}
