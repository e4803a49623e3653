package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCaseDefaults(t *testing.T) {
	c, err := NewCase(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Meta.Version)
	assert.Equal(t, "unnamed", c.Meta.Name)
	assert.Equal(t, 273.15, c.Meta.Temperature)
	assert.Equal(t, 0, c.Meta.Multinetwork)
	assert.Equal(t, 0.0185674, c.Meta.GasMolarMass)
	assert.Equal(t, 1.0, c.Meta.StandardDensity)
	assert.Equal(t, 0, c.Meta.PerUnit)
	assert.Equal(t, 0.8, c.Meta.CompressibilityFactor)
	assert.Equal(t, 604.167, c.Meta.BaseFlow)
	assert.Equal(t, 8101325.0, c.Meta.BasePressure)
	assert.Equal(t, 0.6, c.Meta.GasSpecificGravity)
	assert.Equal(t, 1.4, c.Meta.SpecificHeatCapacityRatio)
	assert.Equal(t, 312.805, c.Meta.SoundSpeed)
	assert.Equal(t, 8.314, c.Meta.R)
	assert.NotNil(t, c.Discarded)
}

func TestNewCaseOverrides(t *testing.T) {
	c, err := NewCase(Attrs{
		"name":           "gaslib",
		"gas_molar_mass": 0.018,
		"PERUNIT":        int64(1),
		"unrelated":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "gaslib", c.Meta.Name)
	assert.Equal(t, 0.018, c.Meta.GasMolarMass)
	assert.Equal(t, 1, c.Meta.PerUnit)

	_, err = NewCase(Attrs{"temperature": "warm"})
	assert.Error(t, err)
}

func TestCaseAddAndLookup(t *testing.T) {
	c, err := NewCase(nil)
	require.NoError(t, err)

	for _, id := range []int64{4, 9, 2} {
		j, err := NewJunction(Attrs{AttrID: id})
		require.NoError(t, err)
		require.NoError(t, c.Add(j))
	}
	p, err := NewPipe(Attrs{AttrID: int64(1), AttrFromJunction: int64(4), AttrToJunction: int64(9)})
	require.NoError(t, err)
	require.NoError(t, c.Add(p))
	g, err := NewGenerator(Attrs{AttrID: int64(5)})
	require.NoError(t, err)
	require.NoError(t, c.Add(g))

	assert.Equal(t, int64(9), c.MaxJunctionID())
	assert.Equal(t, int64(0), c.MaxConsumerID())
	assert.Equal(t, []int64{4, 9, 2}, c.IDs(KindJunction))
	assert.Equal(t, 1, c.Count(KindGenerator))
	assert.Equal(t, 0, c.Count(KindConsumer))

	got, ok := c.Pipe(1)
	require.True(t, ok)
	assert.Same(t, p, got)
	_, ok = c.Junction(3)
	assert.False(t, ok)

	edges := c.EdgeList()
	require.Len(t, edges, 1)
	assert.Equal(t, KindPipe, edges[0].Kind)
	assert.Same(t, &p.Edge, edges[0].Edge)
}

func TestMaxJunctionIDNegativeIDs(t *testing.T) {
	c, err := NewCase(nil)
	require.NoError(t, err)
	j, err := NewJunction(Attrs{AttrID: int64(-3)})
	require.NoError(t, err)
	require.NoError(t, c.Add(j))
	assert.Equal(t, int64(-3), c.MaxJunctionID())
}
