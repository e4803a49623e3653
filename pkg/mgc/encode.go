// Package mgc renders a case as a MATLAB gas case ("mgc") document.
package mgc

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gridcase/csv2mgc/pkg/model"
)

// block is one component table of the document.
type block struct {
	name    string
	columns []string
	rows    [][]string
	ext     bool
}

// Document renders c. The same case always renders to the same bytes.
func Document(c *model.Case) string {
	var b strings.Builder
	b.WriteString("function mgc = ")
	b.WriteString(functionName(c.Meta.Name))
	b.WriteString("\n\n")

	for _, s := range scalars(c.Meta) {
		b.WriteString("mgc.")
		b.WriteString(s.name)
		b.WriteString(" = ")
		b.WriteString(s.value)
		b.WriteString(";\n")
	}
	b.WriteString("\n")

	for _, blk := range blocks(c) {
		writeBlock(&b, blk)
	}

	b.WriteString("end\n")
	return b.String()
}

// Encode writes the document for c to w.
func Encode(w io.Writer, c *model.Case) error {
	_, err := io.WriteString(w, Document(c))
	return err
}

func writeBlock(b *strings.Builder, blk block) {
	if blk.ext {
		b.WriteString("%% " + blk.name + " data\n")
		b.WriteString("%column_names%" + strings.Join(blk.columns, " ") + "\n")
		b.WriteString("mgc." + blk.name + "_data = [\n")
	} else {
		b.WriteString("%% " + blk.name + "\n")
		b.WriteString("%" + strings.Join(blk.columns, " ") + "\n")
		b.WriteString("mgc." + blk.name + " = [\n")
	}
	for _, row := range blk.rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	b.WriteString("];\n\n")
}

type scalar struct {
	name  string
	value string
}

func scalars(m model.Meta) []scalar {
	return []scalar{
		{"version", integer(m.Version)},
		{"name", quote(m.Name)},
		{"sound_speed", number(m.SoundSpeed)},
		{"temperature", number(m.Temperature)},
		{"R", number(m.R)},
		{"compressibility_factor", number(m.CompressibilityFactor)},
		{"gas_molar_mass", number(m.GasMolarMass)},
		{"gas_specific_gravity", number(m.GasSpecificGravity)},
		{"specific_heat_capacity_ratio", number(m.SpecificHeatCapacityRatio)},
		{"standard_density", number(m.StandardDensity)},
		{"baseP", number(m.BasePressure)},
		{"baseF", number(m.BaseFlow)},
		{"per_unit", integer(m.PerUnit)},
		{"multinetwork", integer(m.Multinetwork)},
	}
}

// blocks returns the non-empty tables in canonical order: junction, pipe,
// compressor, resistor, producer, consumer, storage. Generators are written
// as consumers.
func blocks(c *model.Case) []block {
	var out []block

	if len(c.Junctions) > 0 {
		primary := block{name: "junction", columns: []string{"junction_i", "type", "pmin", "pmax", "status", "p"}}
		ext := block{name: "junction", columns: []string{"latitude", "longitude"}, ext: true}
		located := false
		for _, j := range c.Junctions {
			primary.rows = append(primary.rows, []string{
				id(j.ID), integer(j.Type), number(j.PMin), number(j.PMax), integer(j.Status), number(j.P),
			})
			lat, lon := math.NaN(), math.NaN()
			if j.Location != nil {
				lat, lon = j.Location.Y, j.Location.X
				located = true
			}
			ext.rows = append(ext.rows, []string{number(lat), number(lon)})
		}
		out = append(out, primary)
		if located {
			out = append(out, ext)
		}
	}

	if len(c.Pipes) > 0 {
		blk := block{name: "pipe", columns: []string{"pipe_i", "f_junction", "t_junction", "diameter", "length", "friction_factor", "status"}}
		for _, p := range c.Pipes {
			blk.rows = append(blk.rows, []string{
				id(p.ID), id(p.FromJunction), id(p.ToJunction), number(p.Diameter), number(p.Length), number(p.FrictionFactor), integer(p.Status),
			})
		}
		out = append(out, blk)
	}

	if len(c.Compressors) > 0 {
		blk := block{name: "compressor", columns: []string{"compressor_i", "f_junction", "t_junction", "c_ratio_min", "c_ratio_max", "power_max", "flow_min", "flow_max", "status"}}
		for _, cmp := range c.Compressors {
			blk.rows = append(blk.rows, []string{
				id(cmp.ID), id(cmp.FromJunction), id(cmp.ToJunction),
				number(cmp.CompressionRatioMin), number(cmp.CompressionRatioMax),
				number(cmp.PowerMax), number(cmp.FlowMin), number(cmp.FlowMax), integer(cmp.Status),
			})
		}
		out = append(out, blk)
	}

	if len(c.Resistors) > 0 {
		blk := block{name: "resistor", columns: []string{"resistor_i", "f_junction", "t_junction", "drag", "status"}}
		for _, r := range c.Resistors {
			blk.rows = append(blk.rows, []string{
				id(r.ID), id(r.FromJunction), id(r.ToJunction), number(r.Drag), integer(r.Status),
			})
		}
		out = append(out, blk)
	}

	if len(c.Producers) > 0 {
		blk := block{name: "producer", columns: []string{"producer_i", "junction", "fgmin", "fgmax", "fg", "status", "dispatchable"}}
		for _, p := range c.Producers {
			blk.rows = append(blk.rows, []string{
				id(p.ID), id(p.SupplyJunction), number(p.FlowMin), number(p.FlowMax), number(p.Flow), integer(p.Status), integer(p.Dispatchable),
			})
		}
		out = append(out, blk)
	}

	if len(c.Consumers)+len(c.Generators) > 0 {
		primary := block{name: "consumer", columns: []string{"consumer_i", "junction", "fdmin", "fdmax", "fd", "status", "dispatchable", "priority"}}
		ext := block{name: "consumer", columns: []string{"eiaid"}, ext: true}
		row := func(cons *model.Consumer) []string {
			return []string{
				id(cons.ID), id(cons.LoadJunction), number(cons.FlowMin), number(cons.FlowMax), number(cons.Flow),
				integer(cons.Status), integer(cons.Dispatchable), integer(cons.Priority),
			}
		}
		for _, cons := range c.Consumers {
			primary.rows = append(primary.rows, row(cons))
			ext.rows = append(ext.rows, []string{"0"})
		}
		for _, g := range c.Generators {
			primary.rows = append(primary.rows, row(&g.Consumer))
			ext.rows = append(ext.rows, []string{id(g.EIACode)})
		}
		out = append(out, primary)
		if len(c.Generators) > 0 {
			out = append(out, ext)
		}
	}

	if len(c.Storage) > 0 {
		blk := block{name: "storage", columns: []string{"storage_i", "junction", "fdmax", "fd", "status", "dispatchable"}}
		for _, s := range c.Storage {
			blk.rows = append(blk.rows, []string{
				id(s.ID), id(s.LoadJunction), number(s.FlowMax), number(s.Flow), integer(s.Status), integer(s.Dispatchable),
			})
		}
		out = append(out, blk)
	}

	return out
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func integer(v int) string { return strconv.Itoa(v) }

// number formats v in the shortest fixed-point form that parses back to v.
func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quote returns s as a MATLAB character array literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// functionName turns a case name into a valid MATLAB function name.
func functionName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	switch {
	case out == "":
		return "unnamed"
	case out[0] < 'A' || (out[0] > 'Z' && out[0] < 'a') || out[0] > 'z':
		return "mgc_" + out
	}
	return out
}
