package csvrows

import (
	"context"

	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/logging"
	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
)

// FileSource is a network.Source backed by one CSV file.
type FileSource struct {
	kind model.Kind
	path string
}

// NewFileSource returns a source decoding the file at path as kind.
func NewFileSource(kind model.Kind, path string) *FileSource {
	return &FileSource{kind: kind, path: path}
}

func (s *FileSource) Kind() model.Kind { return s.kind }

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) Rows(ctx context.Context) ([]decode.Row, error) {
	rows, err := ReadFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "read csv", "kind", s.kind, "path", s.path, "rows", len(rows))
	return rows, nil
}

// Sources returns one FileSource per path, kinds in decode order and paths
// in the given order within a kind.
func Sources(files map[model.Kind][]string) []network.Source {
	var out []network.Source
	for _, kind := range model.DecodeOrder {
		for _, path := range files[kind] {
			out = append(out, NewFileSource(kind, path))
		}
	}
	return out
}
