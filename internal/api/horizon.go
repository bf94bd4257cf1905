package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"sightline/pkg/horizon"
)

// HorizonHandler handles the pure horizon math endpoints.
type HorizonHandler struct {
	defaultRefraction  bool
	defaultCoefficient float64
}

// NewHorizonHandler creates a new handler with the configured model defaults.
func NewHorizonHandler(defaultRefraction bool, defaultCoefficient float64) *HorizonHandler {
	return &HorizonHandler{
		defaultRefraction:  defaultRefraction,
		defaultCoefficient: defaultCoefficient,
	}
}

// HandleDistance handles GET /api/horizon.
// Query: view_height (m, required), object_height (m, default 0),
// refraction (bool), coefficient (optional override).
func (h *HorizonHandler) HandleDistance(w http.ResponseWriter, r *http.Request) {
	viewHeight, err := parseFloatParam(r, "view_height", true, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	objectHeight, err := parseFloatParam(r, "object_height", false, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	model := h.model(r)
	distance, err := model.Distance(viewHeight, objectHeight)
	if err != nil {
		if errors.Is(err, horizon.ErrNegativeInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to compute distance", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"distance_km": distance,
		"refraction":  model.Mode() == horizon.WithRefraction,
		"coefficient": model.Coefficient(),
	})
}

// HandleMinHeight handles GET /api/minheight.
// Query: view_height (m, required), distance (km, required), refraction,
// coefficient. Responds with the minimum visible height, or unreachable=true
// when the distance is inside the observer's own horizon.
func (h *HorizonHandler) HandleMinHeight(w http.ResponseWriter, r *http.Request) {
	viewHeight, err := parseFloatParam(r, "view_height", true, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	distance, err := parseFloatParam(r, "distance", true, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	model := h.model(r)
	height, ok, err := model.MinVisibleHeight(viewHeight, distance)
	if err != nil {
		if errors.Is(err, horizon.ErrNegativeInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to compute height", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"unreachable": !ok,
		"refraction":  model.Mode() == horizon.WithRefraction,
		"coefficient": model.Coefficient(),
	}
	if ok {
		resp["height_m"] = height
	}
	writeJSON(w, resp)
}

// model builds the horizon model for a request, honoring the optional
// refraction and coefficient query overrides.
func (h *HorizonHandler) model(r *http.Request) horizon.Model {
	mode := horizon.WithoutRefraction
	refraction := h.defaultRefraction
	if s := r.URL.Query().Get("refraction"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			refraction = v
		}
	}
	if refraction {
		mode = horizon.WithRefraction
	}

	coefficient := h.defaultCoefficient
	if s := r.URL.Query().Get("coefficient"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			coefficient = v
		}
	}
	return horizon.NewWithCoefficient(mode, coefficient)
}

func parseFloatParam(r *http.Request, name string, required bool, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		if required {
			return 0, fmt.Errorf("missing required parameter %q", name)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid parameter %q: %s", name, s)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
