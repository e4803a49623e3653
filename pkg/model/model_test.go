package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsUseDefaults(t *testing.T) {
	j, err := NewJunction(nil)
	require.NoError(t, err)
	d := Defaults(KindJunction)
	assert.Equal(t, d[AttrID], j.ID)
	assert.Equal(t, d[AttrStatus], j.Status)
	assert.Nil(t, j.Location)
	assert.Equal(t, d[AttrType], j.Type)
	assert.Equal(t, d[AttrPMin], j.PMin)
	assert.Equal(t, d[AttrPMax], j.PMax)
	assert.Equal(t, d[AttrP], j.P)

	p, err := NewPipe(Attrs{})
	require.NoError(t, err)
	d = Defaults(KindPipe)
	assert.Equal(t, d[AttrFromJunction], p.FromJunction)
	assert.Equal(t, d[AttrToJunction], p.ToJunction)
	assert.Equal(t, d[AttrDirected], p.Directed)
	assert.Equal(t, d[AttrDiameter], p.Diameter)
	assert.Equal(t, d[AttrLength], p.Length)
	assert.Equal(t, 0.01, p.FrictionFactor)
	assert.Equal(t, 1, p.Status)

	c, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.False(t, c.Regulator)
	assert.Equal(t, 1.0, c.CompressionRatioMin)
	assert.Equal(t, 1.4, c.CompressionRatioMax)
	assert.Equal(t, 0.0, c.FlowMin)
	assert.Equal(t, 700.0, c.FlowMax)
	assert.Equal(t, 0.0, c.PowerMax)

	reg, err := NewRegulator(nil)
	require.NoError(t, err)
	assert.True(t, reg.Regulator)
	assert.Equal(t, 0.9, reg.CompressionRatioMin)
	assert.Equal(t, 1.0, reg.CompressionRatioMax)
	assert.Equal(t, KindCompressor, reg.Kind())

	r, err := NewResistor(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Drag)

	prod, err := NewProducer(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, prod.Dispatchable)
	assert.Equal(t, int64(0), prod.SupplyJunction)

	cons, err := NewConsumer(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cons.Dispatchable)
	assert.Equal(t, Defaults(KindConsumer)[AttrPriority], cons.Priority)

	g, err := NewGenerator(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), g.EIACode)
	assert.Equal(t, KindGenerator, g.Kind())

	s, err := NewStorage(nil)
	require.NoError(t, err)
	assert.Equal(t, KindStorage, s.Kind())
	assert.Equal(t, 1, s.Status)
}

func TestConstructorsOverrideAndIgnoreUnknown(t *testing.T) {
	j, err := NewJunction(Attrs{
		AttrID:       int64(7),
		AttrLocation: Location{X: 10, Y: 20},
		AttrPMax:     "6000000",
		"color":      "blue",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), j.ID)
	require.NotNil(t, j.Location)
	assert.Equal(t, Location{X: 10, Y: 20}, *j.Location)
	assert.Equal(t, 6000000.0, j.PMax)
	assert.Equal(t, 3447380.0, j.PMin)
}

func TestConstructorRejectsUncoercibleValue(t *testing.T) {
	_, err := NewPipe(Attrs{AttrDiameter: "wide"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe.diameter")

	_, err = NewJunction(Attrs{AttrLocation: "north"})
	require.Error(t, err)
}

func TestDefaultsReturnsCopy(t *testing.T) {
	d := Defaults(KindPipe)
	d[AttrFrictionFactor] = 1.0
	assert.Equal(t, 0.01, Defaults(KindPipe)[AttrFrictionFactor])
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"junctions", KindJunction},
		{"Pipe", KindPipe},
		{"STORAGE", KindStorage},
		{"regulators", KindRegulator},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseKind("valves")
	assert.Error(t, err)
}

func TestKindCollection(t *testing.T) {
	assert.Equal(t, KindCompressor, KindRegulator.Collection())
	assert.True(t, KindRegulator.IsEdge())
	assert.True(t, KindResistor.IsEdge())
	assert.False(t, KindGenerator.IsEdge())
}
