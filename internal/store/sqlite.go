package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/engramhq/engram/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite — pure Go, no CGO,
// matching the teacher's embedded-file deployment model.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// Use ":memory:" for a non-persistent store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id                  TEXT PRIMARY KEY,
		content             TEXT NOT NULL,
		memory_type         TEXT NOT NULL,
		layer               TEXT NOT NULL DEFAULT 'working',
		importance          REAL NOT NULL DEFAULT 0.3,
		working_strength    REAL NOT NULL DEFAULT 1.0,
		core_strength       REAL NOT NULL DEFAULT 0.0,
		access_count        INTEGER NOT NULL DEFAULT 0,
		consolidation_count INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL,
		last_accessed       TEXT,
		last_consolidated   TEXT,
		pinned              INTEGER NOT NULL DEFAULT 0,
		contradicts         TEXT,
		contradicted_by     TEXT,
		context             TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_layer ON memories(layer);
	CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(memory_type);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE TABLE IF NOT EXISTS access_log (
		memory_id   TEXT NOT NULL REFERENCES memories(id),
		accessed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_access_log_memory ON access_log(memory_id);

	CREATE TABLE IF NOT EXISTS graph_links (
		memory_id TEXT NOT NULL REFERENCES memories(id),
		node_id   TEXT NOT NULL,
		relation  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (memory_id, node_id, relation)
	);
	CREATE INDEX IF NOT EXISTS idx_graph_links_node ON graph_links(node_id);

	CREATE TABLE IF NOT EXISTS hebbian_links (
		source_id          TEXT NOT NULL REFERENCES memories(id),
		target_id          TEXT NOT NULL REFERENCES memories(id),
		strength           REAL NOT NULL DEFAULT 1.0,
		coactivation_count INTEGER NOT NULL DEFAULT 1,
		created_at         TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id)
	);
	CREATE INDEX IF NOT EXISTS idx_hebbian_source ON hebbian_links(source_id, strength DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		content,
		content=memories,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)

	s.db.Exec(`INSERT OR IGNORE INTO memories_fts(rowid, content) SELECT rowid, content FROM memories`)

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, ns.String)
	return t
}

func (s *SQLiteStore) Add(ctx context.Context, e model.Entry) (model.Entry, error) {
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Layer == "" {
		e.Layer = model.LayerWorking
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var ctxJSON *string
	if len(e.Context) > 0 {
		b, _ := json.Marshal(e.Context)
		v := string(b)
		ctxJSON = &v
	}

	var contradicts *string
	if e.Contradicts != "" {
		contradicts = &e.Contradicts
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Entry{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memories (id, content, memory_type, layer, importance, working_strength,
			core_strength, access_count, consolidation_count, created_at, last_accessed,
			last_consolidated, pinned, contradicts, contradicted_by, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Content, string(e.Type), string(e.Layer), e.Importance, e.WorkingStrength,
		e.CoreStrength, e.AccessCount, e.ConsolidationCount, formatTime(e.CreatedAt), formatTime(e.LastAccessed),
		formatTime(e.LastConsolidated), boolToInt(e.Pinned), contradicts, nil, ctxJSON)
	if err != nil {
		return model.Entry{}, fmt.Errorf("insert memory: %w", err)
	}

	if contradicts != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE memories SET contradicted_by = ? WHERE id = ?`, e.ID, *contradicts); err != nil {
			return model.Entry{}, fmt.Errorf("link contradiction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Entry{}, err
	}

	return e, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) Update(ctx context.Context, e model.Entry) error {
	var ctxJSON *string
	if len(e.Context) > 0 {
		b, _ := json.Marshal(e.Context)
		v := string(b)
		ctxJSON = &v
	}
	var contradicts, contradictedBy *string
	if e.Contradicts != "" {
		contradicts = &e.Contradicts
	}
	if e.ContradictedBy != "" {
		contradictedBy = &e.ContradictedBy
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE memories SET content = ?, memory_type = ?, layer = ?, importance = ?,
			working_strength = ?, core_strength = ?, access_count = ?, consolidation_count = ?,
			last_accessed = ?, last_consolidated = ?, pinned = ?, contradicts = ?,
			contradicted_by = ?, context = ?, created_at = COALESCE(?, created_at)
		WHERE id = ?`,
		e.Content, string(e.Type), string(e.Layer), e.Importance,
		e.WorkingStrength, e.CoreStrength, e.AccessCount, e.ConsolidationCount,
		formatTime(e.LastAccessed), formatTime(e.LastConsolidated), boolToInt(e.Pinned), contradicts,
		contradictedBy, ctxJSON, formatTime(e.CreatedAt), e.ID)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE memories SET contradicted_by = NULL WHERE contradicted_by = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE memories SET contradicts = NULL WHERE contradicts = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM access_log WHERE memory_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM graph_links WHERE memory_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM hebbian_links WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

const selectColumns = `
	SELECT id, content, memory_type, layer, importance, working_strength, core_strength,
	       access_count, consolidation_count, created_at, last_accessed, last_consolidated,
	       pinned, contradicts, contradicted_by, context
	FROM memories`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var memType, layer string
	var createdAt, lastAccessed, lastConsolidated sql.NullString
	var pinnedInt int
	var contradicts, contradictedBy, ctxJSON sql.NullString

	err := row.Scan(&e.ID, &e.Content, &memType, &layer, &e.Importance, &e.WorkingStrength,
		&e.CoreStrength, &e.AccessCount, &e.ConsolidationCount, &createdAt, &lastAccessed,
		&lastConsolidated, &pinnedInt, &contradicts, &contradictedBy, &ctxJSON)
	if err != nil {
		return e, err
	}

	e.Type = model.Type(memType)
	e.Layer = model.Layer(layer)
	e.CreatedAt = parseTime(createdAt)
	e.LastAccessed = parseTime(lastAccessed)
	e.LastConsolidated = parseTime(lastConsolidated)
	e.Pinned = pinnedInt != 0
	if contradicts.Valid {
		e.Contradicts = contradicts.String
	}
	if contradictedBy.Valid {
		e.ContradictedBy = contradictedBy.String
	}
	if ctxJSON.Valid && ctxJSON.String != "" {
		json.Unmarshal([]byte(ctxJSON.String), &e.Context)
	}

	return e, nil
}

func (s *SQLiteStore) All(ctx context.Context, includeArchive bool) ([]model.Entry, error) {
	query := selectColumns
	if !includeArchive {
		query += ` WHERE layer != 'archive'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
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

func (s *SQLiteStore) RecordAccess(ctx context.Context, id string, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO access_log (memory_id, accessed_at) VALUES (?, ?)`,
		id, formatTime(at)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		formatTime(at), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetAccessTimes(ctx context.Context, id string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT accessed_at FROM access_log WHERE memory_id = ? ORDER BY accessed_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ns sql.NullString
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, parseTime(ns))
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Export(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path)
	return err
}
