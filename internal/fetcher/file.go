package fetcher

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
)

// FileSource reads an export snapshot from a local file, for offline syncs
// and fixtures.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: read file %s", s.path)
	}
	return string(data), nil
}
