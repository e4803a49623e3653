package decode

import (
	"fmt"

	"github.com/gridcase/csv2mgc/pkg/geo"
	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/topology"
)

// Unit conversions applied to source columns.
const (
	metresPerInch = 0.0254
	wattsPerHP    = 745.7

	cubicFeetPerCubicMetre = 35.3147
	secondsPerDay          = 86400

	// Gas burned per MWh generated.
	cubicMetresPerMWh = 94.28
	secondsPerHour    = 3600
)

// thousandCubicFeetPerDay converts Mcf/d to m^3/s.
func thousandCubicFeetPerDay(v float64) float64 {
	return v * 1000 / (cubicFeetPerCubicMetre * secondsPerDay)
}

// thousandCubicFeet converts Mcf to m^3.
func thousandCubicFeet(v float64) float64 {
	return v * 1000 / cubicFeetPerCubicMetre
}

// megawatts converts generator capacity in MW to gas flow in m^3/s.
func megawatts(v float64) float64 {
	return v * cubicMetresPerMWh / secondsPerHour
}

func dispatchableFor(flowMax float64) int {
	if flowMax == 0 {
		return 0
	}
	return 1
}

func decodeJunction(row Row, _ *model.Case) (model.Entity, error) {
	id, err := row.ID("NODEID")
	if err != nil {
		return nil, err
	}
	x, err := row.Float("POINT_X")
	if err != nil {
		return nil, err
	}
	y, err := row.Float("POINT_Y")
	if err != nil {
		return nil, err
	}
	return model.NewJunction(model.Attrs{
		model.AttrID:       id,
		model.AttrLocation: model.Location{X: x, Y: y},
	})
}

func pipeDecoder(distance geo.DistanceFunc) Func {
	return func(row Row, _ *model.Case) (model.Entity, error) {
		id, err := row.ID("LINEID")
		if err != nil {
			return nil, err
		}
		from, to, err := endpoints(row)
		if err != nil {
			return nil, err
		}
		diameter, err := row.Float("DIAMETER")
		if err != nil {
			return nil, err
		}
		fromPoint, err := point(row, "FRNODE_Y", "FRNODE_X")
		if err != nil {
			return nil, err
		}
		toPoint, err := point(row, "TONODE_Y", "TONODE_X")
		if err != nil {
			return nil, err
		}
		return model.NewPipe(model.Attrs{
			model.AttrID:           id,
			model.AttrFromJunction: from,
			model.AttrToJunction:   to,
			model.AttrDiameter:     diameter * metresPerInch,
			model.AttrLength:       distance(fromPoint, toPoint),
		})
	}
}

func decodeResistor(row Row, _ *model.Case) (model.Entity, error) {
	id, err := row.ID("LINEID")
	if err != nil {
		return nil, err
	}
	from, to, err := endpoints(row)
	if err != nil {
		return nil, err
	}
	drag, err := row.FloatOr("DRAG", model.Defaults(model.KindResistor)[model.AttrDrag].(float64))
	if err != nil {
		return nil, err
	}
	return model.NewResistor(model.Attrs{
		model.AttrID:           id,
		model.AttrFromJunction: from,
		model.AttrToJunction:   to,
		model.AttrDrag:         drag,
	})
}

// receiptDelivery decodes the shared receipt/delivery point table. Rows whose
// RECDEL flag differs from want belong to the other kind and are skipped.
type receiptDelivery struct {
	id, junction  int64
	flowMax, flow float64
	dispatchable  int
}

func decodeReceiptDelivery(row Row, want string) (*receiptDelivery, error) {
	flag, err := row.Text("RECDEL")
	if err != nil {
		return nil, err
	}
	if flag != want {
		return nil, nil
	}
	id, err := row.ID("RDPTID")
	if err != nil {
		return nil, err
	}
	junction, err := row.ID("NEAR_FID")
	if err != nil {
		return nil, err
	}
	maxCap, err := row.Float("MAXCAP")
	if err != nil {
		return nil, err
	}
	schedCap, err := row.Float("SCHEDCAP")
	if err != nil {
		return nil, err
	}
	flowMax := thousandCubicFeetPerDay(maxCap)
	return &receiptDelivery{
		id:           id,
		junction:     junction,
		flowMax:      flowMax,
		flow:         thousandCubicFeetPerDay(schedCap),
		dispatchable: dispatchableFor(flowMax),
	}, nil
}

func decodeProducer(row Row, _ *model.Case) (model.Entity, error) {
	rd, err := decodeReceiptDelivery(row, "R")
	if err != nil || rd == nil {
		return nil, err
	}
	return model.NewProducer(model.Attrs{
		model.AttrID:             rd.id,
		model.AttrSupplyJunction: rd.junction,
		model.AttrFlowMax:        rd.flowMax,
		model.AttrFlow:           rd.flow,
		model.AttrDispatchable:   rd.dispatchable,
	})
}

func decodeConsumer(row Row, _ *model.Case) (model.Entity, error) {
	rd, err := decodeReceiptDelivery(row, "D")
	if err != nil || rd == nil {
		return nil, err
	}
	return model.NewConsumer(model.Attrs{
		model.AttrID:           rd.id,
		model.AttrLoadJunction: rd.junction,
		model.AttrFlowMax:      rd.flowMax,
		model.AttrFlow:         rd.flow,
		model.AttrDispatchable: rd.dispatchable,
	})
}

// decodeGenerator numbers generators after every consumer already in the case,
// so it must run once all consumer rows are decoded.
func decodeGenerator(row Row, c *model.Case) (model.Entity, error) {
	junction, err := row.ID("NEAR_FID")
	if err != nil {
		return nil, err
	}
	winter, err := row.Float("W_CAP_MW")
	if err != nil {
		return nil, err
	}
	summer, err := row.Float("S_CAP_MW")
	if err != nil {
		return nil, err
	}
	eia, err := row.IDOr("EIACODE", 0)
	if err != nil {
		return nil, err
	}
	// Generators keep the default dispatchable flag whatever their capacity.
	return model.NewGenerator(model.Attrs{
		model.AttrID:           c.MaxConsumerID() + 1 + int64(len(c.Generators)),
		model.AttrLoadJunction: junction,
		model.AttrFlowMax:      megawatts(winter),
		model.AttrFlow:         megawatts(summer),
		model.AttrEIACode:      eia,
	})
}

func decodeStorage(row Row, _ *model.Case) (model.Entity, error) {
	id, err := row.ID("STFCID")
	if err != nil {
		return nil, err
	}
	junction, err := row.ID("NEAR_FID")
	if err != nil {
		return nil, err
	}
	total, err := row.Float("TOTALCAP")
	if err != nil {
		return nil, err
	}
	working, err := row.Float("WORKCAP")
	if err != nil {
		return nil, err
	}
	capacity := thousandCubicFeet(total)
	return model.NewStorage(model.Attrs{
		model.AttrID:           id,
		model.AttrLoadJunction: junction,
		model.AttrFlowMax:      capacity,
		model.AttrFlow:         thousandCubicFeet(working),
		model.AttrDispatchable: dispatchableFor(capacity),
	})
}

// compressorDecoder decodes compressor and regulator rows. The source places
// them near a pipe and junction rather than between two junctions, so the
// topology editor splices them into the pipe. Every field is parsed before the
// splice so a bad row leaves the case untouched.
func compressorDecoder(kind model.Kind) Func {
	build := model.NewCompressor
	if kind == model.KindRegulator {
		build = model.NewRegulator
	}
	return func(row Row, c *model.Case) (model.Entity, error) {
		hp, err := row.Float("HP")
		if err != nil {
			return nil, err
		}
		nearPipe, err := row.ID("NEARLINEID")
		if err != nil {
			return nil, err
		}
		nearJunction, err := row.ID("NEARNODEID")
		if err != nil {
			return nil, err
		}

		id := int64(len(c.Compressors)) + 1
		cmp, err := build(model.Attrs{
			model.AttrID:       id,
			model.AttrPowerMax: hp * wattsPerHP,
		})
		if err != nil {
			return nil, err
		}

		splice, err := topology.Splice(c, nearPipe, nearJunction)
		if err != nil {
			return nil, fmt.Errorf("splicing %s %d: %w", kind, id, err)
		}
		cmp.FromJunction = splice.From
		cmp.ToJunction = splice.To
		return cmp, nil
	}
}

func endpoints(row Row) (int64, int64, error) {
	from, err := row.ID("FRNODE")
	if err != nil {
		return 0, 0, err
	}
	to, err := row.ID("TONODE")
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func point(row Row, latKey, lonKey string) (geo.Point, error) {
	lat, err := row.Float(latKey)
	if err != nil {
		return geo.Point{}, err
	}
	lon, err := row.Float(lonKey)
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}
