// Package network assembles a case from per-kind row sources, validates it
// and drives rebuilds in watch and web mode.
package network

import (
	"context"

	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/model"
)

// Source supplies the rows of one component kind.
// Implementations should encapsulate the logic for reading the rows (e.g. a
// CSV file) and respect the context for cancellation.
type Source interface {
	// Kind returns the component kind the rows decode as.
	Kind() model.Kind

	// Name identifies the source in logs and stats, e.g. a file path.
	Name() string

	// Rows returns every row in source order. An error skips the whole source.
	Rows(ctx context.Context) ([]decode.Row, error)
}

// StaticSource is an in-memory Source.
type StaticSource struct {
	SourceKind model.Kind
	SourceName string
	Records    []decode.Row
}

func (s StaticSource) Kind() model.Kind { return s.SourceKind }

func (s StaticSource) Name() string {
	if s.SourceName == "" {
		return string(s.SourceKind)
	}
	return s.SourceName
}

func (s StaticSource) Rows(context.Context) ([]decode.Row, error) {
	return s.Records, nil
}
