package grid

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadiusM = 6371000.0
	metersPerDeg = earthRadiusM * math.Pi / 180.0
)

// SyntheticSource generates a deterministic rolling-hills raster centered on
// an origin coordinate. It stands in for a real elevation provider so the
// daemon and tests have a grid to work against without any file parsing.
type SyntheticSource struct {
	Origin     orb.Point // lon/lat of the grid center
	Rows, Cols int
	CellSize   float64 // meters between cell centers
	Amplitude  float64 // meters, peak-to-valley/2
	Wavelength float64 // meters per full terrain swell
	Base       float64 // meters added to every cell
	Holes      bool    // carve a no-data block in the northwest corner
}

// Grid builds the raster. The same source always produces the same grid.
func (s *SyntheticSource) Grid() (*ElevationGrid, error) {
	if s.Rows <= 0 || s.Cols <= 0 {
		return nil, fmt.Errorf("grid: invalid synthetic dimensions %dx%d", s.Rows, s.Cols)
	}
	cell := s.CellSize
	if cell <= 0 {
		cell = 100
	}
	wavelength := s.Wavelength
	if wavelength <= 0 {
		wavelength = 40 * cell
	}

	x := make([][]float64, s.Rows)
	y := make([][]float64, s.Rows)
	z := make([][]float64, s.Rows)

	// Rows run north to south, columns west to east, origin at the center.
	for i := 0; i < s.Rows; i++ {
		x[i] = make([]float64, s.Cols)
		y[i] = make([]float64, s.Cols)
		z[i] = make([]float64, s.Cols)
		cy := (float64(s.Rows)/2 - float64(i) - 0.5) * cell
		for j := 0; j < s.Cols; j++ {
			cx := (float64(j) - float64(s.Cols)/2 + 0.5) * cell
			x[i][j] = cx
			y[i][j] = cy
			z[i][j] = s.Base + s.Amplitude*(math.Sin(2*math.Pi*cx/wavelength)+math.Cos(2*math.Pi*cy/wavelength))/2
			if z[i][j] < 0 {
				z[i][j] = 0
			}
		}
	}

	if s.Holes {
		// Sensor gap in the northwest corner, as edge tiles would have.
		for i := 0; i < s.Rows/8; i++ {
			for j := 0; j < s.Cols/8; j++ {
				z[i][j] = math.NaN()
			}
		}
	}

	return New(x, y, z, math.NaN())
}

// Projector returns a local tangent-plane mapping anchored at the origin,
// matching the planar coordinates Grid produces.
func (s *SyntheticSource) Projector() Projector {
	return &localProjector{origin: s.Origin}
}

type localProjector struct {
	origin orb.Point
}

func (p *localProjector) ToPlanar(pt orb.Point) (float64, float64) {
	cosLat := math.Cos(p.origin.Lat() * math.Pi / 180.0)
	x := (pt.Lon() - p.origin.Lon()) * metersPerDeg * cosLat
	y := (pt.Lat() - p.origin.Lat()) * metersPerDeg
	return x, y
}
