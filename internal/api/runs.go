package api

import (
	"net/http"
	"strconv"

	"sightline/pkg/store"
)

// RunsHandler serves persisted viewshed runs.
type RunsHandler struct {
	store store.RunStore
}

// NewRunsHandler creates a new handler.
func NewRunsHandler(st store.RunStore) *RunsHandler {
	return &RunsHandler{store: st}
}

// HandleList handles GET /api/runs.
// Without coordinates it lists the most recent runs; with lat and lon it
// lists runs whose observer falls within `rings` H3 rings of the position.
func (h *RunsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 20
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		runs, err := h.store.ListRecentRuns(r.Context(), limit)
		if err != nil {
			http.Error(w, "Failed to list runs", http.StatusInternalServerError)
			return
		}
		writeJSON(w, runs)
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "Invalid lat/lon", http.StatusBadRequest)
		return
	}

	rings := 1
	if s := q.Get("rings"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 && v <= 10 {
			rings = v
		}
	}

	runs, err := h.store.ListRunsNear(r.Context(), lat, lon, rings, limit)
	if err != nil {
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// HandleGet handles GET /api/runs/{id}, returning the full run including its
// decoded mask.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Missing run id", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, run)
}
