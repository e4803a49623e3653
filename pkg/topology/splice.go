// Package topology edits and inspects the junction/edge graph of a case.
package topology

import (
	"errors"
	"fmt"

	"github.com/gridcase/csv2mgc/pkg/model"
)

var (
	ErrJunctionNotFound = errors.New("near junction not found")
	ErrPipeNotFound     = errors.New("near pipe not found")
	ErrPipeNotAdjacent  = errors.New("near pipe does not touch near junction")
)

// SpliceResult describes where a compressor was inserted.
type SpliceResult struct {
	From      int64 // compressor from junction
	To        int64 // compressor to junction
	Synthetic int64 // id of the junction created for the splice
	Pipe      int64 // id of the rewired pipe
}

// Splice inserts a compressor between nearJunctionID and the end of pipe
// nearPipeID that touches it. A synthetic junction is created at the near
// junction's location and the pipe end is moved onto it:
//
//	before:  J ---pipe--- K
//	after:   J =cmp= S ---pipe--- K
//
// The synthetic id is max(junction ids) + 1 + count(compressors). The case is
// only modified when every lookup succeeds.
func Splice(c *model.Case, nearPipeID, nearJunctionID int64) (SpliceResult, error) {
	near, ok := c.Junction(nearJunctionID)
	if !ok {
		return SpliceResult{}, fmt.Errorf("%w: %d", ErrJunctionNotFound, nearJunctionID)
	}
	pipe, ok := c.Pipe(nearPipeID)
	if !ok {
		return SpliceResult{}, fmt.Errorf("%w: %d", ErrPipeNotFound, nearPipeID)
	}

	syntheticID := c.MaxJunctionID() + 1 + int64(len(c.Compressors))
	res := SpliceResult{Synthetic: syntheticID, Pipe: pipe.ID}
	switch {
	case pipe.FromJunction == nearJunctionID:
		res.From, res.To = nearJunctionID, syntheticID
	case pipe.ToJunction == nearJunctionID:
		res.From, res.To = syntheticID, nearJunctionID
	default:
		return SpliceResult{}, fmt.Errorf("%w: pipe %d (%d-%d), junction %d",
			ErrPipeNotAdjacent, pipe.ID, pipe.FromJunction, pipe.ToJunction, nearJunctionID)
	}

	synthetic, err := model.NewJunction(model.Attrs{
		model.AttrID:       syntheticID,
		model.AttrLocation: near.Location,
	})
	if err != nil {
		return SpliceResult{}, err
	}
	if err := c.Add(synthetic); err != nil {
		return SpliceResult{}, err
	}

	if res.From == nearJunctionID {
		pipe.FromJunction = syntheticID
	} else {
		pipe.ToJunction = syntheticID
	}
	return res, nil
}
