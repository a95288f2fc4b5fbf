package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pqgate/internal/backend"
	"pqgate/internal/config"
	"pqgate/internal/constants"
	"pqgate/internal/database"
	"pqgate/internal/gateway"
	"pqgate/internal/models"
	"pqgate/internal/monitor"
	"pqgate/internal/retry"
	"pqgate/internal/tracing"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("pqgate %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting pqgate")

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled")
	} else {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
	}

	// Initialize OpenTelemetry tracing
	tracingManager := tracing.NewTracingManager(tracing.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
		UseStdout:      cfg.Tracing.UseStdout,
	}, logger)

	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Open the history store with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: constants.DefaultBackoffInitialMs * time.Millisecond,
		MaxDelay:     constants.DefaultBackoffMaxMs * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})

	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize history store: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize history store after retries: %w", err)
	}
	defer db.Close()

	// The provider is selected exactly once; requests never change it.
	kem, signer, err := backend.Select(cfg.Crypto)
	if err != nil {
		return fmt.Errorf("failed to initialize crypto backend: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Crypto.Provider,
		"kem":      kem.Algorithm(),
		"sig":      signer.Algorithm(),
	}).Info("Crypto backend initialized")

	mon := monitor.New(cfg.Budget)
	gw := gateway.New(kem, signer, mon, newSampleRecorder(db, logger), logger)

	server := NewServer(cfg, gw, mon, db, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// loadConfig reads the config file when present; a missing file falls back to
// defaults plus environment overrides so the demo runs without any setup.
func loadConfig(path string, logger *logrus.Logger) (*models.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.WithField("path", path).Info("Config file not found, using defaults")
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

// sampleRecorder persists gateway performance samples to the history store.
// Persistence failures are logged but never fail the operation that produced
// the sample.
type sampleRecorder struct {
	db     *database.Database
	logger *logrus.Logger
}

func newSampleRecorder(db *database.Database, logger *logrus.Logger) *sampleRecorder {
	return &sampleRecorder{db: db, logger: logger}
}

func (r *sampleRecorder) RecordSample(ctx context.Context, sample models.PerformanceSample) {
	if err := r.db.SavePerformanceMetric(ctx, sample); err != nil {
		r.logger.WithFields(logrus.Fields{
			"operation": sample.Operation,
			"error":     err,
		}).Warn("Failed to persist performance sample")
	}
}
