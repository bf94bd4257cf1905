package horizon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name         string
		mode         Mode
		viewHeight   float64
		objectHeight float64
		want         float64
		tol          float64
	}{
		// Standing person at the beach, the classic ~4.7 km figure.
		{"eye level no refraction", WithoutRefraction, 1.70, 0, 4.70, 0.06},
		{"eye level refraction", WithRefraction, 1.70, 0, 5.11, 0.01},
		{"tower refraction", WithRefraction, 50, 0, 27.75, 0.05},
		{"tower no refraction", WithoutRefraction, 50, 0, 25.24, 0.05},
		{"zero heights", WithRefraction, 0, 0, 0, 0},
		{"both elevated", WithoutRefraction, 100, 100, 71.39, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.mode).Distance(tt.viewHeight, tt.objectHeight)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.tol)
		})
	}
}

func TestDistanceMonotonic(t *testing.T) {
	heights := []float64{0, 0.5, 1.7, 10, 50, 300, 8848}
	for _, mode := range []Mode{WithoutRefraction, WithRefraction} {
		model := New(mode)
		prev := -1.0
		for _, h := range heights {
			d, err := model.Distance(h, 0)
			require.NoError(t, err)
			if d <= prev && h > 0 {
				t.Fatalf("mode %s: Distance(%v) = %v, not greater than previous %v", mode, h, d, prev)
			}
			prev = d
		}
	}
}

func TestRefractionOrdering(t *testing.T) {
	pairs := [][2]float64{{1.7, 0}, {50, 0}, {10, 200}, {1000, 1000}}
	for _, p := range pairs {
		with, err := New(WithRefraction).Distance(p[0], p[1])
		require.NoError(t, err)
		without, err := New(WithoutRefraction).Distance(p[0], p[1])
		require.NoError(t, err)
		if p[0] == 0 && p[1] == 0 {
			continue
		}
		assert.Greater(t, with, without, "heights %v", p)
	}
}

func TestMinVisibleHeightRoundTrip(t *testing.T) {
	for _, mode := range []Mode{WithoutRefraction, WithRefraction} {
		model := New(mode)
		for _, viewHeight := range []float64{0, 1.7, 50, 400} {
			own, err := model.Distance(viewHeight, 0)
			require.NoError(t, err)

			for _, distance := range []float64{own, own + 1, own * 2, own + 500} {
				height, ok, err := model.MinVisibleHeight(viewHeight, distance)
				require.NoError(t, err)
				require.True(t, ok, "distance %v should need a height", distance)

				back, err := model.Distance(viewHeight, height)
				require.NoError(t, err)
				assert.InDelta(t, distance, back, 1e-6, "mode %s view %v dist %v", mode, viewHeight, distance)
			}
		}
	}
}

func TestMinVisibleHeightUnreachableBoundary(t *testing.T) {
	model := New(WithRefraction)
	viewHeight := 50.0
	own, err := model.Distance(viewHeight, 0)
	require.NoError(t, err)

	// Just inside the observer's own horizon: ground is already visible.
	_, ok, err := model.MinVisibleHeight(viewHeight, own*0.99)
	require.NoError(t, err)
	assert.False(t, ok)

	// At or beyond it a height exists (zero at the exact boundary).
	h, ok, err := model.MinVisibleHeight(viewHeight, own)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0, h, 1e-9)

	_, ok, err = model.MinVisibleHeight(viewHeight, own*1.01)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMinVisibleHeightScenario(t *testing.T) {
	// Observer 50 m up, target 200 km away. Verified by feeding the result
	// back into Distance, which is the primary correctness check.
	model := New(WithRefraction)
	height, ok, err := model.MinVisibleHeight(50, 200)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1932.6, height, 1.0)

	back, err := model.Distance(50, height)
	require.NoError(t, err)
	assert.InDelta(t, 200, back, 1e-6)
}

func TestNegativeInputs(t *testing.T) {
	model := New(WithoutRefraction)

	_, err := model.Distance(-1, 0)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = model.Distance(0, -1)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, _, err = model.MinVisibleHeight(-1, 10)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, _, err = model.MinVisibleHeight(10, -1)
	assert.ErrorIs(t, err, ErrNegativeInput)
}

func TestCustomCoefficient(t *testing.T) {
	// A stronger inversion layer bends light further around the curve.
	strong := NewWithCoefficient(WithRefraction, 1.4)
	standard := New(WithRefraction)

	ds, err := strong.Distance(50, 0)
	require.NoError(t, err)
	dd, err := standard.Distance(50, 0)
	require.NoError(t, err)
	assert.Greater(t, ds, dd)

	// Non-positive coefficients fall back to the default.
	fallback := NewWithCoefficient(WithRefraction, -1)
	assert.Equal(t, DefaultCoefficient, fallback.Coefficient())
}

func TestRadius(t *testing.T) {
	assert.Equal(t, EarthRadius, New(WithoutRefraction).Radius())
	assert.InDelta(t, 7.68, New(WithRefraction).Radius(), 0.001)
	assert.False(t, math.IsNaN(Model{}.factor()))
}
