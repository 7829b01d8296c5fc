package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/budgetbubbles/pkg/config"
	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

func sampleState() graph.StateDocument {
	return graph.StateDocument{
		Timestamp: 1700000000000,
		Left: graph.PanelState{
			Nodes:      []graph.NodeState{{ID: "rev", Expanded: true, X: 300, Y: 300}, {ID: "tax", Fixed: true, X: 120.5, Y: 80}},
			Links:      []graph.LinkState{},
			DataMapper: graph.MapperState{Lang: "et", Revision: 1, SizeScaleFactor: 0.3},
		},
		Zoom: graph.ZoomStates{Budget: graph.ZoomState{Scale: 2, Translate: [2]float64{-10, 4}}, Comparison: graph.IdentityZoom()},
	}
}

// clock returns a time source that advances one second per call.
func clock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("SaveLoad", func(t *testing.T) {
		id, err := s.Save(ctx, "budget-2024", sampleState())
		require.NoError(t, err)
		assert.Len(t, id, 36)

		doc, err := s.Load(ctx, "budget-2024", id)
		require.NoError(t, err)
		assert.Equal(t, graph.DocumentTypeState, doc.Type)
		assert.Equal(t, int64(1700000000000), doc.Timestamp)
		assert.Equal(t, sampleState().Left.Nodes, doc.Left.Nodes)
		assert.Equal(t, sampleState().Zoom, doc.Zoom)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "budget-2024", "6f1c2a4e-8a4b-4a51-9f55-0c7f0f4c0e11")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, bberrors.Is(err, bberrors.ErrCodeStateNotFound))
	})

	t.Run("LoadOtherVisualization", func(t *testing.T) {
		id, err := s.Save(ctx, "first", sampleState())
		require.NoError(t, err)
		_, err = s.Load(ctx, "second", id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		var ids []string
		for range 3 {
			id, err := s.Save(ctx, "listed", sampleState())
			require.NoError(t, err)
			ids = append(ids, id)
		}
		list, err := s.List(ctx, "listed")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
		for _, sum := range list {
			assert.Equal(t, "listed", sum.VisualizationID)
			assert.Positive(t, sum.Size)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		list, err := s.List(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("RejectsUnsafeIDs", func(t *testing.T) {
		_, err := s.Save(ctx, "../escape", sampleState())
		assert.True(t, bberrors.Is(err, bberrors.ErrCodeInvalidID))
		_, err = s.Load(ctx, "ok", "../../etc/passwd")
		assert.True(t, bberrors.Is(err, bberrors.ErrCodeInvalidID))
	})
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	s.now = clock()
	defer s.Close()
	runStoreSuite(t, s)
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	id, err := s.Save(context.Background(), "vis", sampleState())
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "vis", id+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(MemoryDSN)
	require.NoError(t, err)
	s.now = clock()
	defer s.Close()
	runStoreSuite(t, s)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "states.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	id, err := s.Save(ctx, "vis", sampleState())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.Load(ctx, "vis", id)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Left.DataMapper.Revision)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BUDGETBUBBLES_MONGO_URI")
	if uri == "" {
		t.Skip("BUDGETBUBBLES_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := ConnectMongo(ctx, uri, "budgetbubbles_test_"+time.Now().Format("150405"))
	require.NoError(t, err)
	s.now = clock()
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		s.Close()
	}()
	runStoreSuite(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Backend: config.StoreFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, config.StoreConfig{Backend: config.StoreSQLite, Path: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open(ctx, config.StoreConfig{Backend: "postgres"})
	assert.True(t, bberrors.Is(err, bberrors.ErrCodeUnsupported))
}
