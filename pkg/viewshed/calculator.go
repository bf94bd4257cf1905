package viewshed

import (
	"fmt"
	"math"
	"sync"

	"sightline/pkg/grid"
	"sightline/pkg/horizon"
)

// Calculator masks terrain cells by visibility from a single observer.
// Each cell is independent, so Mask fans rows out across workers.
type Calculator struct {
	model   horizon.Model
	workers int
}

// NewCalculator creates a calculator for the given horizon model. Workers
// below 1 are clamped to 1.
func NewCalculator(model horizon.Model, workers int) *Calculator {
	if workers < 1 {
		workers = 1
	}
	return &Calculator{model: model, workers: workers}
}

// Model returns the horizon model the calculator evaluates with.
func (c *Calculator) Model() horizon.Model {
	return c.model
}

// Result is the visibility mask over a grid's shape, true where a cell is
// line-of-sight visible from the observer. A fresh Result is produced per
// call; the input grid is never mutated.
type Result struct {
	Mask    [][]bool
	Rows    int
	Cols    int
	Visible int
}

// Mask computes the visibility mask for every cell of g as seen from the
// planar observer position (obsX, obsY) with the given eye height in meters.
// A cell is visible when its azimuth falls inside the window, its elevation
// is recorded, and its planar distance does not exceed the horizon distance
// for the observer/cell height pair. Grid distances are meters, horizon
// distances kilometers; units are normalized before the comparison.
func (c *Calculator) Mask(g *grid.ElevationGrid, obsX, obsY, eyeHeight float64, w Window) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("viewshed: nil grid")
	}
	if eyeHeight < 0 {
		return nil, fmt.Errorf("viewshed: %w: eye height %.3f m", horizon.ErrNegativeInput, eyeHeight)
	}

	rows, cols := g.Dims()
	mask := make([][]bool, rows)
	for i := range mask {
		mask[i] = make([]bool, cols)
	}

	counts := make([]int, c.workers)
	var wg sync.WaitGroup
	chunk := (rows + c.workers - 1) / c.workers
	for wkr := 0; wkr < c.workers; wkr++ {
		start := wkr * chunk
		if start >= rows {
			break
		}
		end := start + chunk
		if end > rows {
			end = rows
		}
		wg.Add(1)
		go func(wkr, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				counts[wkr] += c.maskRow(g, mask[i], i, obsX, obsY, eyeHeight, w)
			}
		}(wkr, start, end)
	}
	wg.Wait()

	res := &Result{Mask: mask, Rows: rows, Cols: cols}
	for _, n := range counts {
		res.Visible += n
	}
	return res, nil
}

// MaskRows computes the mask one row at a time in order, invoking fn after
// each row. Meant for callers that stream progress; fn returning an error
// aborts the walk.
func (c *Calculator) MaskRows(g *grid.ElevationGrid, obsX, obsY, eyeHeight float64, w Window, fn func(row int, cells []bool) error) error {
	if g == nil {
		return fmt.Errorf("viewshed: nil grid")
	}
	if eyeHeight < 0 {
		return fmt.Errorf("viewshed: %w: eye height %.3f m", horizon.ErrNegativeInput, eyeHeight)
	}

	rows, cols := g.Dims()
	for i := 0; i < rows; i++ {
		cells := make([]bool, cols)
		c.maskRow(g, cells, i, obsX, obsY, eyeHeight, w)
		if err := fn(i, cells); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) maskRow(g *grid.ElevationGrid, out []bool, i int, obsX, obsY, eyeHeight float64, w Window) int {
	visible := 0
	for j := range out {
		if c.cellVisible(g, i, j, obsX, obsY, eyeHeight, w) {
			out[j] = true
			visible++
		}
	}
	return visible
}

func (c *Calculator) cellVisible(g *grid.ElevationGrid, i, j int, obsX, obsY, eyeHeight float64, w Window) bool {
	dx := g.X[i][j] - obsX
	dy := g.Y[i][j] - obsY

	// The observer's own cell has no bearing; it is visible whenever its
	// elevation is recorded.
	if dx != 0 || dy != 0 {
		if !w.Contains(azimuth(dx, dy)) {
			return false
		}
	}

	elev := g.Z[i][j]
	if math.IsNaN(elev) {
		return false
	}
	// Below-datum cells present no target above their local ground.
	if elev < 0 {
		elev = 0
	}

	horizonKm, err := c.model.Distance(eyeHeight, elev)
	if err != nil {
		return false
	}
	return math.Hypot(dx, dy) <= horizonKm*1000.0
}
