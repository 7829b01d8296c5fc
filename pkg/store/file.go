package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// FileStore keeps each state in <dir>/<visID>/<stateID>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

type fileRecord struct {
	ID              string          `json:"id"`
	VisualizationID string          `json:"visualization_id"`
	CreatedAt       time.Time       `json:"created_at"`
	State           json.RawMessage `json:"state"`
}

// NewFileStore creates dir if needed. An empty dir uses
// ~/.local/share/budgetbubbles/states.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "budgetbubbles", "states")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) statePath(visID, stateID string) string {
	return filepath.Join(s.dir, visID, stateID+".json")
}

func (s *FileStore) Save(ctx context.Context, visID string, doc graph.StateDocument) (string, error) {
	if err := validateIDs(visID); err != nil {
		return "", err
	}
	now := s.now()
	data, err := encode(doc, now)
	if err != nil {
		return "", err
	}
	rec := fileRecord{ID: newStateID(), VisualizationID: visID, CreatedAt: now.UTC(), State: data}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.statePath(visID, rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("write state file: %w", err)
	}
	return rec.ID, nil
}

func (s *FileStore) Load(ctx context.Context, visID, stateID string) (graph.StateDocument, error) {
	if err := validateIDs(visID, stateID); err != nil {
		return graph.StateDocument{}, err
	}
	s.mu.RLock()
	rec, err := s.read(s.statePath(visID, stateID))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return graph.StateDocument{}, notFound(visID, stateID)
	}
	if err != nil {
		return graph.StateDocument{}, err
	}
	return decode(rec.State)
}

func (s *FileStore) List(ctx context.Context, visID string) ([]Summary, error) {
	if err := validateIDs(visID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, visID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}

	var out []Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.read(filepath.Join(s.dir, visID, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, Summary{
			ID:              rec.ID,
			VisualizationID: rec.VisualizationID,
			CreatedAt:       rec.CreatedAt,
			Size:            len(rec.State),
		})
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) read(path string) (fileRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileRecord{}, err
	}
	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("parse state file: %w", err)
	}
	return rec, nil
}

func (s *FileStore) Close() error { return nil }

func sortNewestFirst(states []Summary) {
	slices.SortFunc(states, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*FileStore)(nil)
