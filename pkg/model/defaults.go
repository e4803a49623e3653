package model

// Attribute names shared by several kinds.
const (
	AttrID                  = "id"
	AttrStatus              = "status"
	AttrLocation            = "location"
	AttrFromJunction        = "fromJunction"
	AttrToJunction          = "toJunction"
	AttrDirected            = "directed"
	AttrDispatchable        = "dispatchable"
	AttrPMin                = "pmin"
	AttrPMax                = "pmax"
	AttrP                   = "p"
	AttrType                = "type"
	AttrDiameter            = "diameter"
	AttrLength              = "length"
	AttrFrictionFactor      = "frictionFactor"
	AttrCompressionRatioMin = "compressionRatioMin"
	AttrCompressionRatioMax = "compressionRatioMax"
	AttrPowerMax            = "powerMax"
	AttrFlowMin             = "flowMin"
	AttrFlowMax             = "flowMax"
	AttrFlow                = "flow"
	AttrDrag                = "drag"
	AttrSupplyJunction      = "supplyJunction"
	AttrLoadJunction        = "loadJunction"
	AttrPriority            = "priority"
	AttrEIACode             = "eiaCode"
)

// kindCase keys the default table of the case metadata.
const kindCase Kind = "case"

var (
	componentDefaults = Attrs{
		AttrID:     int64(0),
		AttrStatus: 1,
	}
	nodeDefaults = merge(componentDefaults, Attrs{
		AttrLocation: nil,
	})
	edgeDefaults = merge(componentDefaults, Attrs{
		AttrFromJunction: int64(0),
		AttrToJunction:   int64(0),
		AttrDirected:     0,
	})
	dispatchDefaults = merge(componentDefaults, Attrs{
		AttrDispatchable: 1,
	})
	consumerDefaults = merge(dispatchDefaults, Attrs{
		AttrLoadJunction: int64(0),
		AttrFlowMin:      0.0,
		AttrFlowMax:      0.0,
		AttrFlow:         0.0,
		AttrPriority:     1,
	})
	compressorDefaults = merge(edgeDefaults, Attrs{
		AttrCompressionRatioMin: 1.0,
		AttrCompressionRatioMax: 1.4,
		AttrPowerMax:            0.0,
		AttrFlowMin:             0.0,
		AttrFlowMax:             700.0,
	})
)

var defaultTables = map[Kind]Attrs{
	KindJunction: merge(nodeDefaults, Attrs{
		AttrPMin: 3447380.0,
		AttrPMax: 5515808.0,
		AttrP:    3447380.0,
		AttrType: 0,
	}),
	KindPipe: merge(edgeDefaults, Attrs{
		AttrDiameter:       0.0,
		AttrLength:         0.0,
		AttrFrictionFactor: 0.01,
	}),
	KindCompressor: compressorDefaults,
	KindRegulator: merge(compressorDefaults, Attrs{
		AttrCompressionRatioMin: 0.9,
		AttrCompressionRatioMax: 1.0,
	}),
	KindResistor: merge(edgeDefaults, Attrs{
		AttrDrag: 1.0,
	}),
	KindProducer: merge(dispatchDefaults, Attrs{
		AttrSupplyJunction: int64(0),
		AttrFlowMin:        0.0,
		AttrFlowMax:        0.0,
		AttrFlow:           0.0,
	}),
	KindConsumer: consumerDefaults,
	KindGenerator: merge(consumerDefaults, Attrs{
		AttrEIACode: int64(0),
	}),
	KindStorage: consumerDefaults,
	kindCase: {
		"version":                   1,
		"name":                      "unnamed",
		"temperature":               273.15,
		"multinetwork":              0,
		"gasMolarMass":              0.0185674,
		"standardDensity":           1.0,
		"perUnit":                   0,
		"compressibilityFactor":     0.8,
		"baseFlow":                  604.167,
		"basePressure":              8101325.0,
		"gasSpecificGravity":        0.6,
		"specificHeatCapacityRatio": 1.4,
		"soundSpeed":                312.805,
		"R":                         8.314,
	},
}

// Defaults returns a copy of the default attribute table for kind. Unknown
// kinds yield an empty table.
func Defaults(kind Kind) Attrs {
	return merge(defaultTables[kind])
}

// CaseDefaults returns a copy of the case metadata default table.
func CaseDefaults() Attrs {
	return Defaults(kindCase)
}

func merge(tables ...Attrs) Attrs {
	out := Attrs{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}
