package model

import "fmt"

// Meta holds the scalar case properties written ahead of the component
// tables.
type Meta struct {
	Version               int     `json:"version"`
	Name                  string  `json:"name"`
	Temperature           float64 `json:"temperature"` // K
	Multinetwork          int     `json:"multinetwork"`
	GasMolarMass          float64 `json:"gasMolarMass"`    // kg/mol
	StandardDensity       float64 `json:"standardDensity"` // kg/m^3
	PerUnit               int     `json:"perUnit"`
	CompressibilityFactor float64 `json:"compressibilityFactor"`
	BaseFlow              float64 `json:"baseFlow"`     // m^3/s
	BasePressure          float64 `json:"basePressure"` // Pa

	// Kept for output compatibility with older solvers.
	GasSpecificGravity        float64 `json:"gasSpecificGravity"`
	SpecificHeatCapacityRatio float64 `json:"specificHeatCapacityRatio"`
	SoundSpeed                float64 `json:"soundSpeed"`
	R                         float64 `json:"R"`
}

// Case is the aggregate root of a gas network: every component collection in
// decode order plus the scalar metadata. Collections are append-only.
type Case struct {
	Meta Meta `json:"meta"`

	Junctions   []*Junction   `json:"junctions"`
	Pipes       []*Pipe       `json:"pipes"`
	Compressors []*Compressor `json:"compressors"`
	Resistors   []*Resistor   `json:"resistors"`
	Producers   []*Producer   `json:"producers"`
	Consumers   []*Consumer   `json:"consumers"`
	Generators  []*Generator  `json:"generators"`
	Storage     []*Storage    `json:"storage"`

	// Discarded counts rows per decode kind that failed to decode.
	Discarded map[Kind]int `json:"discarded"`
}

// NewCase creates an empty case whose metadata is resolved from overrides over
// the case defaults.
func NewCase(overrides Attrs) (*Case, error) {
	r := newResolver(kindCase, overrides)
	meta := Meta{
		Version:                   r.int("version"),
		Name:                      r.string("name"),
		Temperature:               r.float("temperature"),
		Multinetwork:              r.int("multinetwork"),
		GasMolarMass:              r.float("gasMolarMass"),
		StandardDensity:           r.float("standardDensity"),
		PerUnit:                   r.int("perUnit"),
		CompressibilityFactor:     r.float("compressibilityFactor"),
		BaseFlow:                  r.float("baseFlow"),
		BasePressure:              r.float("basePressure"),
		GasSpecificGravity:        r.float("gasSpecificGravity"),
		SpecificHeatCapacityRatio: r.float("specificHeatCapacityRatio"),
		SoundSpeed:                r.float("soundSpeed"),
		R:                         r.float("R"),
	}
	if err := r.err(); err != nil {
		return nil, fmt.Errorf("resolving case metadata: %w", err)
	}
	return &Case{Meta: meta, Discarded: make(map[Kind]int)}, nil
}

// Add appends e to the collection of its kind.
func (c *Case) Add(e Entity) error {
	switch v := e.(type) {
	case *Junction:
		c.Junctions = append(c.Junctions, v)
	case *Pipe:
		c.Pipes = append(c.Pipes, v)
	case *Compressor:
		c.Compressors = append(c.Compressors, v)
	case *Resistor:
		c.Resistors = append(c.Resistors, v)
	case *Producer:
		c.Producers = append(c.Producers, v)
	case *Consumer:
		c.Consumers = append(c.Consumers, v)
	case *Generator:
		c.Generators = append(c.Generators, v)
	case *Storage:
		c.Storage = append(c.Storage, v)
	default:
		return fmt.Errorf("unsupported component type %T", e)
	}
	return nil
}

// Junction returns the first junction with id.
func (c *Case) Junction(id int64) (*Junction, bool) {
	for _, j := range c.Junctions {
		if j.ID == id {
			return j, true
		}
	}
	return nil, false
}

// Pipe returns the first pipe with id.
func (c *Case) Pipe(id int64) (*Pipe, bool) {
	for _, p := range c.Pipes {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// MaxJunctionID returns the largest junction id, or 0 without junctions.
func (c *Case) MaxJunctionID() int64 {
	var maxID int64
	for i, j := range c.Junctions {
		if i == 0 || j.ID > maxID {
			maxID = j.ID
		}
	}
	return maxID
}

// MaxConsumerID returns the largest consumer id, or 0 without consumers.
// Generators are not included.
func (c *Case) MaxConsumerID() int64 {
	var maxID int64
	for i, cons := range c.Consumers {
		if i == 0 || cons.ID > maxID {
			maxID = cons.ID
		}
	}
	return maxID
}

// Entities returns the collection of kind in insertion order.
func (c *Case) Entities(kind Kind) []Entity {
	var out []Entity
	switch kind.Collection() {
	case KindJunction:
		for _, v := range c.Junctions {
			out = append(out, v)
		}
	case KindPipe:
		for _, v := range c.Pipes {
			out = append(out, v)
		}
	case KindCompressor:
		for _, v := range c.Compressors {
			out = append(out, v)
		}
	case KindResistor:
		for _, v := range c.Resistors {
			out = append(out, v)
		}
	case KindProducer:
		for _, v := range c.Producers {
			out = append(out, v)
		}
	case KindConsumer:
		for _, v := range c.Consumers {
			out = append(out, v)
		}
	case KindGenerator:
		for _, v := range c.Generators {
			out = append(out, v)
		}
	case KindStorage:
		for _, v := range c.Storage {
			out = append(out, v)
		}
	}
	return out
}

// IDs returns the ids of the collection of kind in insertion order.
func (c *Case) IDs(kind Kind) []int64 {
	entities := c.Entities(kind)
	ids := make([]int64, len(entities))
	for i, e := range entities {
		ids[i] = e.Identity().ID
	}
	return ids
}

// Count returns the size of the collection of kind.
func (c *Case) Count(kind Kind) int {
	switch kind.Collection() {
	case KindJunction:
		return len(c.Junctions)
	case KindPipe:
		return len(c.Pipes)
	case KindCompressor:
		return len(c.Compressors)
	case KindResistor:
		return len(c.Resistors)
	case KindProducer:
		return len(c.Producers)
	case KindConsumer:
		return len(c.Consumers)
	case KindGenerator:
		return len(c.Generators)
	case KindStorage:
		return len(c.Storage)
	}
	return 0
}

// EdgeList returns every pipe, compressor and resistor edge with its kind.
func (c *Case) EdgeList() []KindEdge {
	var out []KindEdge
	for _, p := range c.Pipes {
		out = append(out, KindEdge{Kind: KindPipe, Edge: &p.Edge})
	}
	for _, cmp := range c.Compressors {
		out = append(out, KindEdge{Kind: KindCompressor, Edge: &cmp.Edge})
	}
	for _, r := range c.Resistors {
		out = append(out, KindEdge{Kind: KindResistor, Edge: &r.Edge})
	}
	return out
}

// KindEdge pairs an edge with the collection it came from.
type KindEdge struct {
	Kind Kind
	Edge *Edge
}
