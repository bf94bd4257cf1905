package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"sightline/internal/observability"
	"sightline/pkg/grid"
	"sightline/pkg/horizon"
	"sightline/pkg/model"
	"sightline/pkg/store"
	"sightline/pkg/viewshed"
)

// ViewshedHandler handles mask computation requests against the configured
// grid source.
type ViewshedHandler struct {
	source             grid.Source
	store              store.RunStore
	metrics            *observability.Collector
	workers            int
	defaultRefraction  bool
	defaultCoefficient float64
}

// NewViewshedHandler creates a new handler. store and metrics may be nil;
// runs are then not persisted / not measured.
func NewViewshedHandler(source grid.Source, st store.RunStore, metrics *observability.Collector, workers int, defaultRefraction bool, defaultCoefficient float64) *ViewshedHandler {
	return &ViewshedHandler{
		source:             source,
		store:              st,
		metrics:            metrics,
		workers:            workers,
		defaultRefraction:  defaultRefraction,
		defaultCoefficient: defaultCoefficient,
	}
}

// ViewshedRequest is the body of POST /api/viewshed.
type ViewshedRequest struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	EyeHeight   float64  `json:"eye_height"`
	AzimuthMin  float64  `json:"azimuth_min"`
	AzimuthMax  float64  `json:"azimuth_max"`
	Refraction  *bool    `json:"refraction,omitempty"`
	Coefficient *float64 `json:"coefficient,omitempty"`
	IncludeMask bool     `json:"include_mask"`
}

func (req *ViewshedRequest) window() viewshed.Window {
	if req.AzimuthMin == 0 && req.AzimuthMax == 0 {
		return viewshed.FullCircle
	}
	return viewshed.Window{Min: req.AzimuthMin, Max: req.AzimuthMax}
}

func (h *ViewshedHandler) buildModel(refraction *bool, coefficient *float64) horizon.Model {
	useRefraction := h.defaultRefraction
	if refraction != nil {
		useRefraction = *refraction
	}
	mode := horizon.WithoutRefraction
	if useRefraction {
		mode = horizon.WithRefraction
	}
	k := h.defaultCoefficient
	if coefficient != nil && *coefficient > 0 {
		k = *coefficient
	}
	return horizon.NewWithCoefficient(mode, k)
}

// HandleCompute handles POST /api/viewshed.
func (h *ViewshedHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ViewshedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	run, err := h.compute(r.Context(), &req)
	if err != nil {
		if errors.Is(err, horizon.ErrNegativeInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Viewshed computation failed", "error", err)
		http.Error(w, "Failed to compute viewshed", http.StatusInternalServerError)
		return
	}

	if !req.IncludeMask {
		run.Mask = nil
	}
	writeJSON(w, run)
}

// compute runs the mask over the configured source and persists the result.
func (h *ViewshedHandler) compute(ctx context.Context, req *ViewshedRequest) (*model.Run, error) {
	g, err := h.source.Grid()
	if err != nil {
		return nil, err
	}

	obsX, obsY := h.source.Projector().ToPlanar(orb.Point{req.Lon, req.Lat})
	hm := h.buildModel(req.Refraction, req.Coefficient)
	calc := viewshed.NewCalculator(hm, h.workers)

	start := time.Now()
	res, err := calc.Mask(g, obsX, obsY, req.EyeHeight, req.window())
	if err != nil {
		return nil, err
	}
	h.metrics.ObserveMask(time.Since(start), res.Rows*res.Cols, res.Visible)

	run := &model.Run{
		ID:          uuid.NewString(),
		Lat:         req.Lat,
		Lon:         req.Lon,
		EyeHeight:   req.EyeHeight,
		AzimuthMin:  req.window().Min,
		AzimuthMax:  req.window().Max,
		Refraction:  hm.Mode() == horizon.WithRefraction,
		Coefficient: hm.Coefficient(),
		Rows:        res.Rows,
		Cols:        res.Cols,
		Visible:     res.Visible,
		Mask:        res.Mask,
		CreatedAt:   time.Now().UTC(),
	}

	if h.store != nil {
		if err := h.store.SaveRun(ctx, run); err != nil {
			// Persistence is best effort; the computed result is still good.
			slog.Error("Failed to persist viewshed run", "id", run.ID, "error", err)
		}
	}

	return run, nil
}
