// Package store persists saved visualization states.
//
// A saved state is a [graph.StateDocument] filed under the id of the
// visualization it belongs to and addressed by a generated UUID. The
// front-end's "save" button produces one; "?s=<id>" reloads it.
//
// Three backends implement [Store]:
//
//   - [FileStore] keeps one JSON file per state, for the CLI.
//   - [SQLiteStore] keeps states in a single SQLite database.
//   - [MongoStore] keeps states in a MongoDB collection.
//
// [Open] picks a backend from configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/budgetbubbles/pkg/config"
	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// ErrNotFound is returned when a state does not exist.
var ErrNotFound = errors.New("state not found")

// Summary describes a saved state without its payload.
type Summary struct {
	ID              string    `json:"id"`
	VisualizationID string    `json:"visualization_id"`
	CreatedAt       time.Time `json:"created_at"`
	Size            int       `json:"size"`
}

// Store saves and loads state documents.
type Store interface {
	// Save stores doc under visID and returns the new state id.
	Save(ctx context.Context, visID string, doc graph.StateDocument) (string, error)
	// Load returns a saved state. A missing state wraps ErrNotFound.
	Load(ctx context.Context, visID, stateID string) (graph.StateDocument, error)
	// List returns the states of a visualization, newest first.
	List(ctx context.Context, visID string) ([]Summary, error)
	Close() error
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreFile, "":
		return NewFileStore(cfg.Path)
	case config.StoreSQLite:
		return OpenSQLite(cfg.Path)
	case config.StoreMongo:
		return ConnectMongo(ctx, cfg.URI, cfg.Database)
	}
	return nil, bberrors.New(bberrors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
}

func newStateID() string { return uuid.NewString() }

func notFound(visID, stateID string) error {
	return bberrors.Wrap(bberrors.ErrCodeStateNotFound, ErrNotFound, "state %s of %s", stateID, visID)
}

func validateIDs(ids ...string) error {
	for _, id := range ids {
		if err := bberrors.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

// encode stamps the document type and timestamp before marshaling.
func encode(doc graph.StateDocument, now time.Time) ([]byte, error) {
	doc.Type = graph.DocumentTypeState
	if doc.Timestamp == 0 {
		doc.Timestamp = now.UnixMilli()
	}
	data, err := graph.MarshalState(doc)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (graph.StateDocument, error) {
	doc, err := graph.UnmarshalState(data)
	if err != nil {
		return graph.StateDocument{}, fmt.Errorf("decode state: %w", err)
	}
	return doc, nil
}
