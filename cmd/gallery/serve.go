package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-gallery/internal/database"
	"wedding-gallery/internal/directory"
	"wedding-gallery/internal/handlers"
	"wedding-gallery/internal/logging"
	"wedding-gallery/internal/memory"
	"wedding-gallery/internal/metrics"
	"wedding-gallery/internal/middleware"
	"wedding-gallery/internal/photocache"
	"wedding-gallery/internal/session"
	"wedding-gallery/internal/startup"
	"wedding-gallery/internal/thumbnail"

	"github.com/urfave/cli/v3"
)

const (
	sessionCleanupInterval = time.Minute
	metricsInterval        = 30 * time.Second
	shutdownTimeout        = 30 * time.Second
)

// server holds everything runServe starts so shutdown can stop it in order.
type server struct {
	http      *http.Server
	metrics   *http.Server
	collector *metrics.Collector
	memory    *memory.Monitor
	sessions  *session.Manager
	db        *database.Database
	cancel    context.CancelFunc
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	startTime := time.Now()
	memory.ConfigureFromEnv()

	if path := cmd.String("config"); path != "" {
		if err := os.Setenv("GALLERY_CONFIG", path); err != nil {
			return fmt.Errorf("failed to set GALLERY_CONFIG: %w", err)
		}
	}

	config, err := startup.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	srv, err := newServer(ctx, config)
	if err != nil {
		return err
	}

	go srv.handleShutdown()

	if srv.metrics != nil {
		go func() {
			if err := srv.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newServer builds the component graph: Directory client, listing store,
// photo cache, sessions, thumbnailer, router and middleware.
func newServer(ctx context.Context, config *startup.Config) (*server, error) {
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	client := directory.New(directory.Config{
		PhotosEndpoint: config.PhotosEndpoint,
		VideosEndpoint: config.VideosEndpoint,
		Timeout:        config.FetchTimeout,
		RateLimit:      config.DirectoryRateLimit,
	})

	cacheStart := time.Now()
	cache := photocache.New(client,
		photocache.WithTTL(config.CacheTTL),
		photocache.WithStore(db),
	)
	photos := cache.GetAll(ctx)
	startup.LogCacheInit(len(photos), time.Since(cacheStart))

	sessions := session.NewManager(cache, client, session.Config{
		BatchSize:      config.BatchSize,
		LazyMargin:     config.LazyMargin,
		SwipeThreshold: config.SwipeThreshold,
		FetchTimeout:   config.FetchTimeout,
		TTL:            config.SessionTTL,
	})
	bgCtx, cancel := context.WithCancel(context.Background())
	sessions.StartCleanup(bgCtx, sessionCleanupInterval)

	thumbGen := thumbnail.NewGenerator(cache, client, config.ThumbnailDir, config.ThumbnailsEnabled)
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	thumbGen.SetGate(monitor)
	startup.LogThumbnailInit(thumbGen.IsEnabled())

	h := handlers.New(client, cache, sessions, thumbGen, db, config)
	router := handlers.NewRouter(h)
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	startup.LogHTTPRoutes(router, config.LogImages, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogImages = config.LogImages
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(
		middleware.Logger(loggingConfig)(router),
	)

	srv := &server{
		http: &http.Server{
			Addr:              ":" + config.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		memory:   monitor,
		sessions: sessions,
		db:       db,
		cancel:   cancel,
	}

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
		srv.collector = metrics.NewCollector(sessions, metricsInterval)
		srv.collector.Start()
		srv.metrics = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           handlers.NewMetricsRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return srv, nil
}

func (s *server) handleShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	s.shutdown()
}

func (s *server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if s.metrics != nil {
		startup.LogShutdownStep("Stopping metrics")
		s.collector.Stop()
		if err := s.metrics.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
		startup.LogShutdownStepComplete("Metrics stopped")
	}

	s.memory.Stop()

	startup.LogShutdownStep("Closing sessions")
	s.cancel()
	s.sessions.Close()
	startup.LogShutdownStepComplete("Sessions closed")

	startup.LogShutdownStep("Closing database")
	if err := s.db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
