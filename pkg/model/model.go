package model

// Entity is implemented by every concrete component kind.
type Entity interface {
	Kind() Kind
	Identity() *Component
}

// Location is a projected (x, y) coordinate pair, as exported by ArcGIS
// (POINT_X is longitude, POINT_Y is latitude).
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Component carries the identity and status shared by every kind.
type Component struct {
	ID     int64 `json:"id"`
	Status int   `json:"status"` // 1 active, 0 inactive
}

// Identity returns the component itself so embedding types satisfy Entity.
func (c *Component) Identity() *Component { return c }

// Active reports whether the component is in service.
func (c *Component) Active() bool { return c.Status == 1 }

// Node is a component with an optional location.
type Node struct {
	Component
	Location *Location `json:"location,omitempty"`
}

// Edge is a component connecting two junctions.
type Edge struct {
	Component
	FromJunction int64 `json:"fromJunction"`
	ToJunction   int64 `json:"toJunction"`
	Directed     int   `json:"directed"` // -1, 0 (undirected) or 1
}

// Endpoints returns the from and to junction ids.
func (e *Edge) Endpoints() (int64, int64) { return e.FromJunction, e.ToJunction }

// Dispatch is a component whose flow is operable within bounds when
// Dispatchable is 1, or fixed at its setpoint when 0.
type Dispatch struct {
	Component
	Dispatchable int `json:"dispatchable"`
}

// Junction is a network node with pressure bounds in pascal. pmin <= p <= pmax
// is left to the solver.
type Junction struct {
	Node
	Type int     `json:"type"`
	PMin float64 `json:"pmin"`
	PMax float64 `json:"pmax"`
	P    float64 `json:"p"`
}

func (*Junction) Kind() Kind { return KindJunction }

// Pipe is a passive edge. Diameter and Length are in metres.
type Pipe struct {
	Edge
	Diameter       float64 `json:"diameter"`
	Length         float64 `json:"length"`
	FrictionFactor float64 `json:"frictionFactor"`
}

func (*Pipe) Kind() Kind { return KindPipe }

// Compressor is an active edge spliced into a pipe. Regulators are compressors
// built from the regulator default table.
type Compressor struct {
	Edge
	Regulator           bool    `json:"regulator,omitempty"`
	CompressionRatioMin float64 `json:"compressionRatioMin"`
	CompressionRatioMax float64 `json:"compressionRatioMax"`
	PowerMax            float64 `json:"powerMax"` // watts
	FlowMin             float64 `json:"flowMin"`  // m^3/s
	FlowMax             float64 `json:"flowMax"`  // m^3/s
}

func (*Compressor) Kind() Kind { return KindCompressor }

// Resistor is an edge with a dimensionless drag factor.
type Resistor struct {
	Edge
	Drag float64 `json:"drag"`
}

func (*Resistor) Kind() Kind { return KindResistor }

// Producer injects gas at its supply junction. Flows are m^3/s.
type Producer struct {
	Dispatch
	SupplyJunction int64   `json:"supplyJunction"`
	FlowMin        float64 `json:"flowMin"`
	FlowMax        float64 `json:"flowMax"`
	Flow           float64 `json:"flow"`
}

func (*Producer) Kind() Kind { return KindProducer }

// Consumer withdraws gas at its load junction. Flows are m^3/s.
type Consumer struct {
	Dispatch
	LoadJunction int64   `json:"loadJunction"`
	FlowMin      float64 `json:"flowMin"`
	FlowMax      float64 `json:"flowMax"`
	Flow         float64 `json:"flow"`
	Priority     int     `json:"priority"`
}

func (*Consumer) Kind() Kind { return KindConsumer }

// Generator is a gas-fired power plant consuming gas. Its ids share the
// consumer id space.
type Generator struct {
	Consumer
	EIACode int64 `json:"eiaCode"`
}

func (*Generator) Kind() Kind { return KindGenerator }

// Storage reuses the consumer flow fields as volumes in m^3: FlowMax is the
// total capacity and Flow the working capacity.
type Storage struct {
	Consumer
}

func (*Storage) Kind() Kind { return KindStorage }

func resolveEdge(r *resolver) Edge {
	return Edge{
		Component:    Component{ID: r.id(AttrID), Status: r.int(AttrStatus)},
		FromJunction: r.id(AttrFromJunction),
		ToJunction:   r.id(AttrToJunction),
		Directed:     r.int(AttrDirected),
	}
}

func resolveDispatch(r *resolver) Dispatch {
	return Dispatch{
		Component:    Component{ID: r.id(AttrID), Status: r.int(AttrStatus)},
		Dispatchable: r.int(AttrDispatchable),
	}
}

func resolveConsumer(r *resolver) Consumer {
	return Consumer{
		Dispatch:     resolveDispatch(r),
		LoadJunction: r.id(AttrLoadJunction),
		FlowMin:      r.float(AttrFlowMin),
		FlowMax:      r.float(AttrFlowMax),
		Flow:         r.float(AttrFlow),
		Priority:     r.int(AttrPriority),
	}
}

// NewJunction builds a junction from attrs, falling back to the junction
// defaults for every attribute not supplied.
func NewJunction(attrs Attrs) (*Junction, error) {
	r := newResolver(KindJunction, attrs)
	j := &Junction{
		Node: Node{
			Component: Component{ID: r.id(AttrID), Status: r.int(AttrStatus)},
			Location:  r.location(AttrLocation),
		},
		Type: r.int(AttrType),
		PMin: r.float(AttrPMin),
		PMax: r.float(AttrPMax),
		P:    r.float(AttrP),
	}
	return j, r.err()
}

// NewPipe builds a pipe from attrs.
func NewPipe(attrs Attrs) (*Pipe, error) {
	r := newResolver(KindPipe, attrs)
	p := &Pipe{
		Edge:           resolveEdge(r),
		Diameter:       r.float(AttrDiameter),
		Length:         r.float(AttrLength),
		FrictionFactor: r.float(AttrFrictionFactor),
	}
	return p, r.err()
}

// NewCompressor builds a compressor from attrs.
func NewCompressor(attrs Attrs) (*Compressor, error) {
	return newCompressor(KindCompressor, attrs)
}

// NewRegulator builds a regulator, a compressor with the tighter regulator
// compression-ratio defaults.
func NewRegulator(attrs Attrs) (*Compressor, error) {
	return newCompressor(KindRegulator, attrs)
}

func newCompressor(kind Kind, attrs Attrs) (*Compressor, error) {
	r := newResolver(kind, attrs)
	c := &Compressor{
		Edge:                resolveEdge(r),
		Regulator:           kind == KindRegulator,
		CompressionRatioMin: r.float(AttrCompressionRatioMin),
		CompressionRatioMax: r.float(AttrCompressionRatioMax),
		PowerMax:            r.float(AttrPowerMax),
		FlowMin:             r.float(AttrFlowMin),
		FlowMax:             r.float(AttrFlowMax),
	}
	return c, r.err()
}

// NewResistor builds a resistor from attrs.
func NewResistor(attrs Attrs) (*Resistor, error) {
	r := newResolver(KindResistor, attrs)
	res := &Resistor{
		Edge: resolveEdge(r),
		Drag: r.float(AttrDrag),
	}
	return res, r.err()
}

// NewProducer builds a producer from attrs.
func NewProducer(attrs Attrs) (*Producer, error) {
	r := newResolver(KindProducer, attrs)
	p := &Producer{
		Dispatch:       resolveDispatch(r),
		SupplyJunction: r.id(AttrSupplyJunction),
		FlowMin:        r.float(AttrFlowMin),
		FlowMax:        r.float(AttrFlowMax),
		Flow:           r.float(AttrFlow),
	}
	return p, r.err()
}

// NewConsumer builds a consumer from attrs.
func NewConsumer(attrs Attrs) (*Consumer, error) {
	r := newResolver(KindConsumer, attrs)
	c := resolveConsumer(r)
	return &c, r.err()
}

// NewGenerator builds a generator from attrs.
func NewGenerator(attrs Attrs) (*Generator, error) {
	r := newResolver(KindGenerator, attrs)
	g := &Generator{
		Consumer: resolveConsumer(r),
		EIACode:  r.id(AttrEIACode),
	}
	return g, r.err()
}

// NewStorage builds a storage facility from attrs.
func NewStorage(attrs Attrs) (*Storage, error) {
	r := newResolver(KindStorage, attrs)
	s := &Storage{Consumer: resolveConsumer(r)}
	return s, r.err()
}
