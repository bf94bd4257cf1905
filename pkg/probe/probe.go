// Package probe runs startup checks so the daemon fails fast and loudly when
// a dependency is broken, instead of limping along and erroring per request.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sightline/pkg/db"
	"sightline/pkg/grid"
)

// checkTimeout bounds each individual check.
const checkTimeout = 5 * time.Second

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Critical bool // a critical failure prevents startup
}

// Result holds the outcome of one probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Database verifies the run store answers queries.
func Database(conn *db.DB) Probe {
	return Probe{
		Name:     "Database",
		Critical: true,
		Check: func(ctx context.Context) error {
			return conn.PingContext(ctx)
		},
	}
}

// GridSource verifies the elevation source can produce a grid at all. A
// source that fails here would fail every viewshed request the same way.
func GridSource(source grid.Source) Probe {
	return Probe{
		Name:     "Grid Source",
		Critical: true,
		Check: func(ctx context.Context) error {
			g, err := source.Grid()
			if err != nil {
				return err
			}
			rows, cols := g.Dims()
			if rows == 0 || cols == 0 {
				return fmt.Errorf("source produced an empty %dx%d grid", rows, cols)
			}
			return nil
		},
	}
}

// Run executes the probes in order and returns their results. Each check gets
// its own timeout so one hung dependency cannot stall startup forever.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs every result and returns a combined error if any
// critical probe failed. Non-critical failures are logged and tolerated.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error != nil {
			slog.Error(msg, "error", r.Error)
			if r.Probe.Critical {
				criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
			}
		} else {
			slog.Info(msg)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}
