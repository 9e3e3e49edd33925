package sources

import (
	"context"
)

// Source yields a batch of documents on demand
type Source interface {
	Name() string
	Load(ctx context.Context) (Batch, error)
}

// DirSource reads the statements found in a local directory
type DirSource struct {
	dir    string
	loader *Loader
}

// NewDirSource creates a source over dir
func NewDirSource(dir string, loader *Loader) *DirSource {
	return &DirSource{dir: dir, loader: loader}
}

// Name returns the directory path
func (s *DirSource) Name() string {
	return s.dir
}

// Load reads the directory's .xml and .zip entries
func (s *DirSource) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	return s.loader.FromPaths(s.dir)
}
