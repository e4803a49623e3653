// Package decode turns source rows into typed network components.
package decode

import (
	"fmt"

	"github.com/gridcase/csv2mgc/pkg/geo"
	"github.com/gridcase/csv2mgc/pkg/model"
)

// Func decodes one row. It returns a nil entity and nil error when the row
// belongs to another kind sharing the same table.
type Func func(row Row, c *model.Case) (model.Entity, error)

// Registry maps each decode kind to its decoder.
type Registry struct {
	decoders map[model.Kind]Func
}

// NewRegistry builds the decoder table. distance measures pipe lengths.
func NewRegistry(distance geo.DistanceFunc) *Registry {
	if distance == nil {
		distance = geo.Distance
	}
	return &Registry{
		decoders: map[model.Kind]Func{
			model.KindJunction:   decodeJunction,
			model.KindPipe:       pipeDecoder(distance),
			model.KindCompressor: compressorDecoder(model.KindCompressor),
			model.KindRegulator:  compressorDecoder(model.KindRegulator),
			model.KindResistor:   decodeResistor,
			model.KindProducer:   decodeProducer,
			model.KindConsumer:   decodeConsumer,
			model.KindGenerator:  decodeGenerator,
			model.KindStorage:    decodeStorage,
		},
	}
}

// Lookup returns the decoder for kind.
func (r *Registry) Lookup(kind model.Kind) (Func, bool) {
	fn, ok := r.decoders[kind]
	return fn, ok
}

// Decode decodes row as kind against the case built so far.
func (r *Registry) Decode(kind model.Kind, row Row, c *model.Case) (model.Entity, error) {
	fn, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("no decoder for kind %q", kind)
	}
	if row == nil {
		return nil, ErrMalformedRecord
	}
	return fn(row, c)
}
