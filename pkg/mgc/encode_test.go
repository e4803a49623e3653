package mgc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gridcase/csv2mgc/pkg/decode"
	"github.com/gridcase/csv2mgc/pkg/geo"
	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, overrides model.Attrs, sources ...network.Source) *model.Case {
	t.Helper()
	b := network.NewBuilder(decode.NewRegistry(geo.Distance))
	res, err := b.Build(context.Background(), overrides, sources)
	require.NoError(t, err)
	return res.Case
}

func TestDocumentRoundTrip(t *testing.T) {
	c := build(t, nil,
		network.StaticSource{SourceKind: model.KindJunction, Records: []decode.Row{
			{"NODEID": "1", "POINT_X": "10", "POINT_Y": "20"},
		}},
		network.StaticSource{SourceKind: model.KindPipe, Records: []decode.Row{{
			"LINEID": "1", "FRNODE": "1", "TONODE": "1", "DIAMETER": "10",
			"FRNODE_X": "10", "FRNODE_Y": "20", "TONODE_X": "10", "TONODE_Y": "20",
		}}},
	)

	want := `function mgc = unnamed

mgc.version = 1;
mgc.name = 'unnamed';
mgc.sound_speed = 312.805;
mgc.temperature = 273.15;
mgc.R = 8.314;
mgc.compressibility_factor = 0.8;
mgc.gas_molar_mass = 0.0185674;
mgc.gas_specific_gravity = 0.6;
mgc.specific_heat_capacity_ratio = 1.4;
mgc.standard_density = 1;
mgc.baseP = 8101325;
mgc.baseF = 604.167;
mgc.per_unit = 0;
mgc.multinetwork = 0;

%% junction
%junction_i type pmin pmax status p
mgc.junction = [
1	0	3447380	5515808	1	3447380
];

%% junction data
%column_names%latitude longitude
mgc.junction_data = [
20	10
];

%% pipe
%pipe_i f_junction t_junction diameter length friction_factor status
mgc.pipe = [
1	1	1	0.254	0	0.01	1
];

end
`
	assert.Equal(t, want, Document(c))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c))
	assert.Equal(t, want, buf.String())
}

func TestDocumentConsumersAndGenerators(t *testing.T) {
	c := build(t, model.Attrs{"name": "gen test"},
		network.StaticSource{SourceKind: model.KindConsumer, Records: []decode.Row{
			{"RECDEL": "D", "RDPTID": "1", "NEAR_FID": "5", "MAXCAP": "0", "SCHEDCAP": "0"},
			{"RECDEL": "D", "RDPTID": "2", "NEAR_FID": "6", "MAXCAP": "0", "SCHEDCAP": "0"},
		}},
		network.StaticSource{SourceKind: model.KindGenerator, Records: []decode.Row{
			{"NEAR_FID": "7", "W_CAP_MW": "0", "S_CAP_MW": "0", "EIACODE": "3456"},
			{"NEAR_FID": "8", "W_CAP_MW": "0", "S_CAP_MW": "0"},
		}},
	)
	doc := Document(c)

	assert.True(t, strings.HasPrefix(doc, "function mgc = gen_test\n"))
	assert.Contains(t, doc, "mgc.name = 'gen test';\n")
	assert.Contains(t, doc, `%% consumer
%consumer_i junction fdmin fdmax fd status dispatchable priority
mgc.consumer = [
1	5	0	0	0	1	0	1
2	6	0	0	0	1	0	1
3	7	0	0	0	1	0	1
4	8	0	0	0	1	0	1
];

%% consumer data
%column_names%eiaid
mgc.consumer_data = [
0
0
3456
0
];
`)
	assert.NotContains(t, doc, "generator")
	assert.NotContains(t, doc, "%% junction")
	assert.Len(t, c.Generators, 2)
}

func TestDocumentOmitsEmptyKindsAndConsumerData(t *testing.T) {
	c, err := model.NewCase(nil)
	require.NoError(t, err)
	cons, _ := model.NewConsumer(model.Attrs{model.AttrID: int64(1)})
	require.NoError(t, c.Add(cons))
	j, _ := model.NewJunction(model.Attrs{model.AttrID: int64(1)})
	require.NoError(t, c.Add(j))

	doc := Document(c)
	assert.Contains(t, doc, "%% consumer\n")
	assert.NotContains(t, doc, "consumer data")
	assert.NotContains(t, doc, "junction data")
	for _, kind := range []string{"pipe", "compressor", "resistor", "producer", "storage"} {
		assert.NotContains(t, doc, "%% "+kind)
	}
}

func TestDocumentCanonicalOrder(t *testing.T) {
	c, err := model.NewCase(nil)
	require.NoError(t, err)
	st, _ := model.NewStorage(model.Attrs{model.AttrID: int64(1), model.AttrFlowMax: 1000.5})
	prod, _ := model.NewProducer(model.Attrs{model.AttrID: int64(1)})
	res, _ := model.NewResistor(model.Attrs{model.AttrID: int64(1), model.AttrFromJunction: int64(1), model.AttrToJunction: int64(2)})
	reg, _ := model.NewRegulator(model.Attrs{model.AttrID: int64(1), model.AttrFromJunction: int64(1), model.AttrToJunction: int64(2)})
	pipe, _ := model.NewPipe(model.Attrs{model.AttrID: int64(1)})
	j, _ := model.NewJunction(model.Attrs{model.AttrID: int64(1), model.AttrLocation: model.Location{X: -97.25, Y: 35.5}})
	j2, _ := model.NewJunction(model.Attrs{model.AttrID: int64(2)})
	for _, e := range []model.Entity{st, prod, res, reg, pipe, j, j2} {
		require.NoError(t, c.Add(e))
	}

	doc := Document(c)
	last := -1
	for _, title := range []string{
		"%% junction\n", "%% junction data\n", "%% pipe\n", "%% compressor\n",
		"%% resistor\n", "%% producer\n", "%% storage\n", "end\n",
	} {
		i := strings.Index(doc, title)
		require.GreaterOrEqual(t, i, 0, title)
		assert.Greater(t, i, last, title)
		last = i
	}

	assert.Contains(t, doc, "35.5\t-97.25\nNaN\tNaN\n")
	assert.Contains(t, doc, "1\t1\t2\t0.9\t1\t0\t0\t700\t1\n")
	assert.Contains(t, doc, "1\t1\t2\t1\t1\n")
	assert.Contains(t, doc, "1\t0\t1000.5\t0\t1\t1\n")
}

func TestDocumentDeterministicAndReadOnly(t *testing.T) {
	sources := []network.Source{
		network.StaticSource{SourceKind: model.KindJunction, Records: []decode.Row{
			{"NODEID": "10", "POINT_X": "-97.5", "POINT_Y": "35.2"},
			{"NODEID": "20", "POINT_X": "-97.1", "POINT_Y": "35.6"},
		}},
		network.StaticSource{SourceKind: model.KindPipe, Records: []decode.Row{{
			"LINEID": "1", "FRNODE": "10", "TONODE": "20", "DIAMETER": "24",
			"FRNODE_X": "-97.5", "FRNODE_Y": "35.2", "TONODE_X": "-97.1", "TONODE_Y": "35.6",
		}}},
		network.StaticSource{SourceKind: model.KindCompressor, Records: []decode.Row{
			{"HP": "5000", "NEARLINEID": "1", "NEARNODEID": "20"},
		}},
	}

	c := build(t, nil, sources...)
	first := Document(c)
	assert.Equal(t, first, Document(c))
	assert.Equal(t, first, Document(build(t, nil, sources...)))
	assert.Len(t, c.Junctions, 3)
	assert.Equal(t, int64(21), c.Pipes[0].ToJunction)
}

func TestNumber(t *testing.T) {
	tests := map[float64]string{
		0:         "0",
		3447380:   "3447380",
		0.254:     "0.254",
		-1.5:      "-1.5",
		1e21:      "1000000000000000000000",
		0.0000001: "0.0000001",
	}
	for in, want := range tests {
		assert.Equal(t, want, number(in))
	}
}

func TestFunctionName(t *testing.T) {
	tests := map[string]string{
		"unnamed":    "unnamed",
		"gas lib-40": "gas_lib_40",
		"40 nodes":   "mgc_40_nodes",
		"_x":         "mgc__x",
		"":           "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, functionName(in), in)
	}
	assert.Equal(t, "'it''s'", quote("it's"))
}
