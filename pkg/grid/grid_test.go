package grid

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesNoData(t *testing.T) {
	x := [][]float64{{0, 100}, {0, 100}}
	y := [][]float64{{100, 100}, {0, 0}}
	z := [][]float64{{12, DefaultNoData}, {DefaultNoData, 48}}

	g, err := New(x, y, z, DefaultNoData)
	require.NoError(t, err)

	rows, cols := g.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)

	assert.Equal(t, 12.0, g.Z[0][0])
	assert.True(t, math.IsNaN(g.Z[0][1]))
	assert.True(t, math.IsNaN(g.Z[1][0]))
	assert.Equal(t, 48.0, g.Z[1][1])
}

func TestNewShapeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z [][]float64
	}{
		{
			name: "row count",
			x:    [][]float64{{0}},
			y:    [][]float64{{0}, {0}},
			z:    [][]float64{{0}, {0}},
		},
		{
			name: "col count",
			x:    [][]float64{{0, 1}, {0}},
			y:    [][]float64{{0, 1}, {0, 1}},
			z:    [][]float64{{0, 1}, {0, 1}},
		},
		{
			name: "ragged elevation",
			x:    [][]float64{{0, 1}, {0, 1}},
			y:    [][]float64{{0, 1}, {0, 1}},
			z:    [][]float64{{0, 1}, {0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.x, tt.y, tt.z, DefaultNoData)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	src := &SyntheticSource{
		Origin:    orb.Point{14.42, 51.68},
		Rows:      16,
		Cols:      16,
		CellSize:  50,
		Amplitude: 120,
		Base:      200,
	}

	a, err := src.Grid()
	require.NoError(t, err)
	b, err := src.Grid()
	require.NoError(t, err)

	rows, cols := a.Dims()
	assert.Equal(t, 16, rows)
	assert.Equal(t, 16, cols)
	assert.Equal(t, a.Z, b.Z)

	// Coordinates are centered on the origin: the corners straddle zero.
	assert.Negative(t, a.X[0][0])
	assert.Positive(t, a.X[0][cols-1])
	assert.Positive(t, a.Y[0][0])
	assert.Negative(t, a.Y[rows-1][0])
}

func TestSyntheticSourceHoles(t *testing.T) {
	src := &SyntheticSource{
		Origin:    orb.Point{0, 0},
		Rows:      32,
		Cols:      32,
		CellSize:  100,
		Amplitude: 50,
		Holes:     true,
	}
	g, err := src.Grid()
	require.NoError(t, err)

	assert.True(t, math.IsNaN(g.Z[0][0]))
	assert.False(t, math.IsNaN(g.Z[31][31]))
}

func TestCachedSource(t *testing.T) {
	src := &SyntheticSource{
		Origin:   orb.Point{14.42, 51.68},
		Rows:     8,
		Cols:     8,
		CellSize: 100,
	}
	cached := Cached(src)

	a, err := cached.Grid()
	require.NoError(t, err)
	b, err := cached.Grid()
	require.NoError(t, err)
	assert.Same(t, a, b)

	assert.NotNil(t, cached.Projector())
}

func TestCachedSourceError(t *testing.T) {
	cached := Cached(&SyntheticSource{Rows: 0, Cols: 8})
	_, err := cached.Grid()
	assert.Error(t, err)
}

func TestLocalProjector(t *testing.T) {
	src := &SyntheticSource{Origin: orb.Point{14.42, 51.68}, Rows: 4, Cols: 4}
	proj := src.Projector()

	// The origin maps to the plane's origin.
	x, y := proj.ToPlanar(orb.Point{14.42, 51.68})
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	// A point due north has positive northing and no easting.
	x, y = proj.ToPlanar(orb.Point{14.42, 51.69})
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1112, y, 2)
}
