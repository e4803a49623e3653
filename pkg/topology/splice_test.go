package topology

import (
	"errors"
	"testing"

	"github.com/gridcase/csv2mgc/pkg/model"
)

func newJunction(t *testing.T, id int64, x, y float64) *model.Junction {
	t.Helper()
	j, err := model.NewJunction(model.Attrs{
		model.AttrID:       id,
		model.AttrLocation: model.Location{X: x, Y: y},
	})
	if err != nil {
		t.Fatalf("NewJunction(%d): %v", id, err)
	}
	return j
}

func newPipe(t *testing.T, id, from, to int64) *model.Pipe {
	t.Helper()
	p, err := model.NewPipe(model.Attrs{
		model.AttrID:           id,
		model.AttrFromJunction: from,
		model.AttrToJunction:   to,
	})
	if err != nil {
		t.Fatalf("NewPipe(%d): %v", id, err)
	}
	return p
}

// twoJunctionCase returns junctions 10 and 20 joined by pipe 1 (10 -> 20).
func twoJunctionCase(t *testing.T) *model.Case {
	t.Helper()
	c, err := model.NewCase(nil)
	if err != nil {
		t.Fatalf("NewCase: %v", err)
	}
	for _, e := range []model.Entity{
		newJunction(t, 10, -97.5, 35.2),
		newJunction(t, 20, -97.1, 35.6),
		newPipe(t, 1, 10, 20),
	} {
		if err := c.Add(e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return c
}

func TestSpliceAtFromEnd(t *testing.T) {
	c := twoJunctionCase(t)

	res, err := Splice(c, 1, 10)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}

	if res.Synthetic != 21 {
		t.Errorf("Expected synthetic junction 21, got %d", res.Synthetic)
	}
	if res.From != 10 || res.To != 21 {
		t.Errorf("Expected compressor 10->21, got %d->%d", res.From, res.To)
	}

	pipe, _ := c.Pipe(1)
	if pipe.FromJunction != 21 || pipe.ToJunction != 20 {
		t.Errorf("Expected pipe 21->20, got %d->%d", pipe.FromJunction, pipe.ToJunction)
	}

	if len(c.Junctions) != 3 {
		t.Fatalf("Expected 3 junctions, got %d", len(c.Junctions))
	}
	synthetic, ok := c.Junction(21)
	if !ok {
		t.Fatal("Synthetic junction not added to case")
	}
	near, _ := c.Junction(10)
	if synthetic.Location == nil || *synthetic.Location != *near.Location {
		t.Errorf("Expected location %v, got %v", near.Location, synthetic.Location)
	}
	if synthetic.Location == near.Location {
		t.Error("Synthetic junction shares the near junction's location pointer")
	}
	if synthetic.PMin != 3447380 || !synthetic.Active() {
		t.Errorf("Synthetic junction should carry defaults, got %+v", synthetic)
	}
}

func TestSpliceAtToEnd(t *testing.T) {
	c := twoJunctionCase(t)

	res, err := Splice(c, 1, 20)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}

	if res.From != 21 || res.To != 20 {
		t.Errorf("Expected compressor 21->20, got %d->%d", res.From, res.To)
	}
	pipe, _ := c.Pipe(1)
	if pipe.FromJunction != 10 || pipe.ToJunction != 21 {
		t.Errorf("Expected pipe 10->21, got %d->%d", pipe.FromJunction, pipe.ToJunction)
	}
}

func TestSpliceSyntheticIDCountsCompressors(t *testing.T) {
	c := twoJunctionCase(t)
	for i := int64(1); i <= 2; i++ {
		cmp, err := model.NewCompressor(model.Attrs{model.AttrID: i})
		if err != nil {
			t.Fatalf("NewCompressor: %v", err)
		}
		if err := c.Add(cmp); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	res, err := Splice(c, 1, 10)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	// max(10, 20) + 1 + 2 compressors
	if res.Synthetic != 23 {
		t.Errorf("Expected synthetic junction 23, got %d", res.Synthetic)
	}
}

func TestSpliceWithoutLocation(t *testing.T) {
	c, _ := model.NewCase(nil)
	j, _ := model.NewJunction(model.Attrs{model.AttrID: int64(5)})
	_ = c.Add(j)
	_ = c.Add(newPipe(t, 7, 5, 6))

	res, err := Splice(c, 7, 5)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	synthetic, _ := c.Junction(res.Synthetic)
	if synthetic.Location != nil {
		t.Errorf("Expected nil location, got %v", synthetic.Location)
	}
}

func TestSpliceFailuresLeaveCaseUntouched(t *testing.T) {
	tests := []struct {
		name         string
		nearPipe     int64
		nearJunction int64
		want         error
	}{
		{"unknown junction", 1, 99, ErrJunctionNotFound},
		{"unknown pipe", 99, 10, ErrPipeNotFound},
		{"pipe elsewhere", 2, 30, ErrPipeNotAdjacent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := twoJunctionCase(t)
			_ = c.Add(newJunction(t, 30, 0, 0))
			_ = c.Add(newPipe(t, 2, 10, 20))

			_, err := Splice(c, tt.nearPipe, tt.nearJunction)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}

			if len(c.Junctions) != 3 {
				t.Errorf("Expected 3 junctions after failed splice, got %d", len(c.Junctions))
			}
			for _, p := range c.Pipes {
				if p.FromJunction != 10 || p.ToJunction != 20 {
					t.Errorf("Pipe %d rewired to %d->%d", p.ID, p.FromJunction, p.ToJunction)
				}
			}
		})
	}
}
