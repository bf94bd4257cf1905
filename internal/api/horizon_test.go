package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleDistance(t *testing.T) {
	h := NewHorizonHandler(true, 1.2055)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantKm     float64
		tol        float64
	}{
		{"refraction default", "view_height=50", http.StatusOK, 27.71, 0.05},
		{"refraction disabled", "view_height=50&refraction=false", http.StatusOK, 25.24, 0.05},
		{"object height", "view_height=50&object_height=2500&refraction=true", http.StatusOK, 223.7, 0.5},
		{"custom coefficient", "view_height=50&coefficient=1.4", http.StatusOK, 29.86, 0.1},
		{"missing view height", "", http.StatusBadRequest, 0, 0},
		{"negative height", "view_height=-1", http.StatusBadRequest, 0, 0},
		{"garbage height", "view_height=tall", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/horizon?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.HandleDistance(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decodeBody(t, rec)
			assert.InDelta(t, tt.wantKm, body["distance_km"].(float64), tt.tol)
		})
	}
}

func TestHandleMinHeight(t *testing.T) {
	h := NewHorizonHandler(true, 1.2055)

	t.Run("reachable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/minheight?view_height=50&distance=200", nil)
		rec := httptest.NewRecorder()
		h.HandleMinHeight(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.False(t, body["unreachable"].(bool))
		assert.InDelta(t, 1932.6, body["height_m"].(float64), 1.0)
	})

	t.Run("unreachable inside own horizon", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/minheight?view_height=50&distance=10", nil)
		rec := httptest.NewRecorder()
		h.HandleMinHeight(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.True(t, body["unreachable"].(bool))
		_, hasHeight := body["height_m"]
		assert.False(t, hasHeight)
	})

	t.Run("negative distance rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/minheight?view_height=50&distance=-5", nil)
		rec := httptest.NewRecorder()
		h.HandleMinHeight(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
