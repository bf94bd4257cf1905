package store

import (
	"context"

	"sightline/pkg/model"
)

// RunStore handles viewshed run persistence.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRecentRuns(ctx context.Context, limit int) ([]*model.Run, error)
	ListRunsNear(ctx context.Context, lat, lon float64, rings int, limit int) ([]*model.Run, error)
}

// Store composes the persistence interfaces.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	RunStore

	// Close closes the store connection.
	Close() error
}
