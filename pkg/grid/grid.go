package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// DefaultNoData is the sentinel most elevation providers use for cells
// without data. New normalizes it to NaN so downstream code has a single
// missing-data marker to test for.
const DefaultNoData = -9999.0

// ErrShapeMismatch is returned when the coordinate and elevation arrays do
// not share one rectangular shape.
var ErrShapeMismatch = errors.New("grid: shape mismatch")

// ElevationGrid pairs an elevation raster with the planar coordinates of
// each cell center. All three arrays share one shape. Elevations are in
// meters, coordinates in meters of the grid's projected plane, and NaN marks
// a cell with no recorded data. Consumers treat the grid as read-only.
type ElevationGrid struct {
	X [][]float64 // planar easting of each cell center
	Y [][]float64 // planar northing of each cell center
	Z [][]float64 // elevation; NaN where no data exists
}

// New validates the arrays and normalizes the noData sentinel to NaN in the
// elevation raster. Pass NaN as noData when the raster is already normalized.
func New(x, y, z [][]float64, noData float64) (*ElevationGrid, error) {
	if err := checkShape(x, y, z); err != nil {
		return nil, err
	}
	if !math.IsNaN(noData) {
		for i := range z {
			for j := range z[i] {
				if z[i][j] == noData {
					z[i][j] = math.NaN()
				}
			}
		}
	}
	return &ElevationGrid{X: x, Y: y, Z: z}, nil
}

// Dims returns the grid shape as (rows, cols).
func (g *ElevationGrid) Dims() (int, int) {
	if len(g.Z) == 0 {
		return 0, 0
	}
	return len(g.Z), len(g.Z[0])
}

func checkShape(x, y, z [][]float64) error {
	if len(x) != len(z) || len(y) != len(z) {
		return fmt.Errorf("%w: %d/%d/%d rows", ErrShapeMismatch, len(x), len(y), len(z))
	}
	for i := range z {
		if len(x[i]) != len(z[i]) || len(y[i]) != len(z[i]) {
			return fmt.Errorf("%w: row %d has %d/%d/%d cols", ErrShapeMismatch, i, len(x[i]), len(y[i]), len(z[i]))
		}
		if i > 0 && len(z[i]) != len(z[0]) {
			return fmt.Errorf("%w: row %d has %d cols, row 0 has %d", ErrShapeMismatch, i, len(z[i]), len(z[0]))
		}
	}
	return nil
}

// Observer is a viewpoint: a geographic position plus an eye height above
// the local ground in meters.
type Observer struct {
	Position  orb.Point // lon/lat, degrees
	EyeHeight float64
}

// Projector converts geographic coordinates into the planar coordinate
// system of a grid. Implementations belong to whoever produced the grid.
type Projector interface {
	ToPlanar(p orb.Point) (x, y float64)
}

// Source supplies elevation grids from an external provider together with
// the projector matching their coordinate system.
type Source interface {
	Grid() (*ElevationGrid, error)
	Projector() Projector
}
