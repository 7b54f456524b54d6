package shader

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/emfield/field"
)

// Precondition errors. Validate wraps one of these with the offending values.
var (
	ErrCellSize   = errors.New("cell size must be positive and finite")
	ErrViewport   = errors.New("output dimensions must be positive")
	ErrGrid       = errors.New("grid dimensions must be positive")
	ErrFieldShape = errors.New("field shape does not match grid")
)

// Validate checks the preconditions of a render pass. It reports the first
// violation found; a nil error guarantees that no pixel of the frame can
// produce NaN or Inf from division.
func Validate(snap *field.Snapshot, grid Grid, vp Viewport) error {
	cs := float64(grid.CellSize)
	if !(cs > 0) || math.IsInf(cs, 0) {
		return fmt.Errorf("cell size %v: %w", grid.CellSize, ErrCellSize)
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("output %dx%d: %w", vp.Width, vp.Height, ErrViewport)
	}
	if grid.Width <= 0 || grid.Height <= 0 {
		return fmt.Errorf("grid %dx%d: %w", grid.Width, grid.Height, ErrGrid)
	}
	if snap == nil {
		return fmt.Errorf("nil snapshot: %w", ErrFieldShape)
	}
	for _, n := range snap.Fields() {
		if n.Field == nil {
			return fmt.Errorf("%s is nil: %w", n.Name, ErrFieldShape)
		}
		if n.Field.W != grid.Width || n.Field.H != grid.Height {
			return fmt.Errorf("%s is %dx%d, grid is %dx%d: %w",
				n.Name, n.Field.W, n.Field.H, grid.Width, grid.Height, ErrFieldShape)
		}
		if len(n.Field.Data) != n.Field.W*n.Field.H {
			return fmt.Errorf("%s has %d samples, want %d: %w",
				n.Name, len(n.Field.Data), n.Field.W*n.Field.H, ErrFieldShape)
		}
	}
	return nil
}
