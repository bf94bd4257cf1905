package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sightline/internal/observability"
	"sightline/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, horizonH *HorizonHandler, viewshedH *ViewshedHandler, runsH *RunsHandler, streamH *StreamHandler, metrics *observability.Collector, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Horizon Endpoints
	mux.HandleFunc("GET /api/horizon", horizonH.HandleDistance)
	mux.HandleFunc("GET /api/minheight", horizonH.HandleMinHeight)

	// 4. Viewshed Endpoints
	mux.HandleFunc("POST /api/viewshed", viewshedH.HandleCompute)
	if streamH != nil {
		mux.HandleFunc("GET /api/viewshed/stream", streamH.Handle)
	}

	// 5. Run Endpoints
	if runsH != nil {
		mux.HandleFunc("GET /api/runs", runsH.HandleList)
		mux.HandleFunc("GET /api/runs/{id}", runsH.HandleGet)
	}

	// 6. Metrics Endpoint
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// 7. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	var handler http.Handler = mux
	if metrics != nil {
		handler = metrics.Middleware(handler)
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
