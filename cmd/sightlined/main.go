package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"

	"sightline/internal/api"
	"sightline/internal/observability"
	"sightline/pkg/config"
	"sightline/pkg/db"
	"sightline/pkg/grid"
	"sightline/pkg/logging"
	"sightline/pkg/probe"
	"sightline/pkg/store"
	"sightline/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/sightline.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Local overrides (e.g. SIGHTLINE_ADDRESS for dev setups); missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr := os.Getenv("SIGHTLINE_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Sightline Started", "version", version.Version)

	dbConn, st, err := initDB(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if age := time.Duration(cfg.Retention.RunMaxAge); age > 0 {
		if err := dbConn.PruneRuns(age); err != nil {
			slog.Error("Failed to prune old runs", "error", err)
		} else {
			slog.Debug("Pruned runs", "older_than", age)
		}
	}

	source := grid.Cached(gridSource(cfg))

	results := probe.Run(ctx, []probe.Probe{
		probe.Database(dbConn),
		probe.GridSource(source),
	})
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	return runServer(ctx, cfg, source, st, metrics)
}

func initDB(cfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func gridSource(cfg *config.Config) grid.Source {
	return &grid.SyntheticSource{
		Origin:     orb.Point{cfg.Grid.OriginLon, cfg.Grid.OriginLat},
		Rows:       cfg.Grid.Rows,
		Cols:       cfg.Grid.Cols,
		CellSize:   float64(cfg.Grid.CellSize),
		Amplitude:  cfg.Grid.Amplitude,
		Wavelength: float64(cfg.Grid.Wavelength),
		Base:       cfg.Grid.Base,
		Holes:      cfg.Grid.Holes,
	}
}

func runServer(ctx context.Context, cfg *config.Config, source grid.Source, st store.Store, metrics *observability.Collector) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	refraction := cfg.Horizon.Refraction
	k := cfg.Horizon.Coefficient

	srv := api.NewServer(cfg.Server.Address,
		api.NewHorizonHandler(refraction, k),
		api.NewViewshedHandler(source, st, metrics, cfg.Viewshed.Workers, refraction, k),
		api.NewRunsHandler(st),
		api.NewStreamHandler(source, refraction, k),
		metrics,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
