package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/di"
	"github.com/mikey/mail-router/internal/ports"
	"github.com/mikey/mail-router/internal/stats"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	emailIngest ports.EmailIngest,
	classifier core.SecondaryClassifier,
	cacheRepo core.CacheRepository,
	collector *stats.Collector,
) error {
	defer logger.Sync()

	// Serve Prometheus metrics if enabled
	if cfg.GetBool("metrics.enabled") {
		metricsAddr := cfg.GetString("metrics.listen_address")
		go func() {
			logger.Info("Metrics server starting", zap.String("address", metricsAddr))
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	// Start the ingest
	if err := emailIngest.Start(); err != nil {
		logger.Fatal("Failed to start ingest", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingest
	if err := emailIngest.Stop(); err != nil {
		logger.Error("Failed to stop ingest", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	snapshot := collector.Snapshot()
	logger.Info("Shutdown complete",
		zap.Uint64("documents_processed", snapshot.TotalProcessed),
		zap.Uint64("processing_errors", snapshot.ProcessingErrors))
	return nil
}
