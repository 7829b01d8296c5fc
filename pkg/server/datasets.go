package server

import (
	"context"
	"errors"
	"io/fs"
	"os"

	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
)

// Datasets resolves a visualization id to its raw dataset document.
type Datasets interface {
	Dataset(ctx context.Context, id string) ([]byte, error)
}

// FSDatasets reads "<id>.json" from a file system.
type FSDatasets struct {
	fsys fs.FS
}

// NewFSDatasets serves datasets from fsys.
func NewFSDatasets(fsys fs.FS) *FSDatasets {
	return &FSDatasets{fsys: fsys}
}

// NewDirDatasets serves datasets from a directory.
func NewDirDatasets(dir string) *FSDatasets {
	return NewFSDatasets(os.DirFS(dir))
}

// Dataset implements Datasets. Missing files are DATASET_NOT_FOUND.
func (d *FSDatasets) Dataset(_ context.Context, id string) ([]byte, error) {
	if err := bberrors.ValidateID(id); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(d.fsys, id+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, bberrors.Wrap(bberrors.ErrCodeDatasetNotFound, err, "visualization %s", id)
	}
	if err != nil {
		return nil, bberrors.Wrap(bberrors.ErrCodeInternal, err, "read dataset %s", id)
	}
	return data, nil
}
