package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS saved_states (
		id         TEXT PRIMARY KEY,
		vis_id     TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		state      BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_states_vis ON saved_states(vis_id, created_at DESC)`,
}

// SQLiteStore keeps states in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at path. Use [MemoryDSN]
// for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryDSN {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, visID string, doc graph.StateDocument) (string, error) {
	if err := validateIDs(visID); err != nil {
		return "", err
	}
	now := s.now()
	data, err := encode(doc, now)
	if err != nil {
		return "", err
	}
	id := newStateID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_states (id, vis_id, created_at, state) VALUES (?, ?, ?, ?)`,
		id, visID, now.UnixMilli(), data)
	if err != nil {
		return "", fmt.Errorf("insert state: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Load(ctx context.Context, visID, stateID string) (graph.StateDocument, error) {
	if err := validateIDs(visID, stateID); err != nil {
		return graph.StateDocument{}, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM saved_states WHERE id = ? AND vis_id = ?`, stateID, visID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return graph.StateDocument{}, notFound(visID, stateID)
	}
	if err != nil {
		return graph.StateDocument{}, fmt.Errorf("query state: %w", err)
	}
	return decode(data)
}

func (s *SQLiteStore) List(ctx context.Context, visID string) ([]Summary, error) {
	if err := validateIDs(visID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, length(state) FROM saved_states WHERE vis_id = ? ORDER BY created_at DESC, id`, visID)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			created int64
		)
		if err := rows.Scan(&sum.ID, &created, &sum.Size); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		sum.VisualizationID = visID
		sum.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
