package model

import (
	"fmt"
	"strings"
)

// Kind tags a component category.
type Kind string

const (
	KindJunction   Kind = "junction"
	KindPipe       Kind = "pipe"
	KindCompressor Kind = "compressor"
	KindRegulator  Kind = "regulator" // decoded into the compressor collection
	KindResistor   Kind = "resistor"
	KindProducer   Kind = "producer"
	KindConsumer   Kind = "consumer"
	KindGenerator  Kind = "generator"
	KindStorage    Kind = "storage"
)

// DecodeOrder is the order in which row sources are processed. Junctions and
// pipes must be complete before compressors and regulators are spliced in, and
// generators are numbered after every consumer.
var DecodeOrder = []Kind{
	KindJunction,
	KindPipe,
	KindProducer,
	KindConsumer,
	KindGenerator,
	KindStorage,
	KindCompressor,
	KindRegulator,
	KindResistor,
}

// CollectionKinds lists the kinds that own a collection in a Case.
var CollectionKinds = []Kind{
	KindJunction,
	KindPipe,
	KindCompressor,
	KindResistor,
	KindProducer,
	KindConsumer,
	KindGenerator,
	KindStorage,
}

// Collection returns the kind whose collection holds components of k.
func (k Kind) Collection() Kind {
	if k == KindRegulator {
		return KindCompressor
	}
	return k
}

// IsEdge reports whether components of k connect two junctions.
func (k Kind) IsEdge() bool {
	switch k.Collection() {
	case KindPipe, KindCompressor, KindResistor:
		return true
	}
	return false
}

// Plural returns the collection name used in flags and file names.
func (k Kind) Plural() string {
	if k == KindStorage {
		return "storage"
	}
	return string(k) + "s"
}

// ParseKind accepts singular or plural kind names in any case.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range DecodeOrder {
		if s == string(k) || s == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown component kind %q", s)
}
