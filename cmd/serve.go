package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/teemow/docfiler/internal/filing"
	"github.com/teemow/docfiler/internal/instrumentation"
	"github.com/teemow/docfiler/internal/logging"
	"github.com/teemow/docfiler/internal/server"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	opts := &filingOptions{}
	var (
		schedule       string
		httpAddr       string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run filing passes on a schedule and serve the resolve endpoint",
		Long: `Run the filing engine as a long-lived service. Filing passes execute on a
cron schedule; between passes the service answers filename resolution
requests on /resolve and serves health probes on /healthz and /readyz.

Prometheus metrics are exposed on a dedicated port (default :9090).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			if addr := os.Getenv("METRICS_ADDR"); addr != "" && !cmd.Flags().Changed("metrics-addr") {
				metricsConfig.Addr = addr
			}
			return runServe(opts, schedule, httpAddr, metricsConfig)
		},
	}

	opts.registerFlags(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "*/10 * * * *", "Cron schedule for filing passes")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultResolveAddr, "Address for the resolve endpoint")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts *filingOptions, schedule, httpAddr string, metricsConfig MetricsConfig) error {
	logger := logging.New(opts.logLevel)

	// Graceful shutdown on SIGINT/SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	rt, err := newFilingRuntime(shutdownCtx, opts, logger, provider.Metrics())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close state store", logging.Err(err))
		}
	}()

	// Resolve the canonical root once; the resolve endpoint is confined to it
	root, err := rt.files.Folder(shutdownCtx, opts.rootFolderID)
	if err != nil {
		return fmt.Errorf("resolving canonical root: %w", err)
	}

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
				cancel()
			}
		}()
	}

	health := server.NewHealthChecker()
	resolveServer := server.NewResolveServer(server.ResolveServerConfig{
		Addr:    httpAddr,
		Root:    root,
		Health:  health,
		Logger:  logger,
		Metrics: provider.Metrics(),
	})
	go func() {
		if err := resolveServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("resolve server failed", logging.Err(err))
			cancel()
		}
	}()

	// Schedule filing passes
	scheduler := cron.New()
	runPass := func() {
		runScheduledPass(shutdownCtx, rt, provider, logger)
	}
	if _, err := scheduler.AddFunc(schedule, runPass); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	scheduler.Start()

	health.SetReady(true)
	logger.Info("service started",
		"schedule", schedule,
		"resolve_addr", resolveServer.Addr(),
		"metrics_enabled", metricsServer != nil)

	// Run one pass immediately so a restart does not wait for the schedule
	runPass()

	<-shutdownCtx.Done()
	logger.Info("shutdown signal received")
	health.SetShuttingDown()

	// Let a running pass finish before stopping
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(server.DefaultShutdownTimeout):
		logger.Warn("timed out waiting for running pass to finish")
	}

	shutdownTimeout, cancelShutdown := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancelShutdown()

	if err := resolveServer.Shutdown(shutdownTimeout); err != nil {
		logger.Warn("resolve server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownTimeout); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	return nil
}

// runScheduledPass executes one filing pass and records run metrics.
func runScheduledPass(ctx context.Context, rt *filingRuntime, provider *instrumentation.Provider, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}

	metrics := provider.Metrics()
	spanCtx, span := instrumentation.StartRunSpan(ctx)
	defer span.End()

	report, err := rt.coord.Run(spanCtx)
	if err != nil {
		logger.Error("filing run failed",
			logging.Operation("run"),
			logging.Err(err),
			"trace_id", instrumentation.GetTraceID(spanCtx))
		instrumentation.SetSpanError(span, err)
		metrics.RecordRun(spanCtx, instrumentation.StatusError, report.Duration)
		return
	}
	instrumentation.SetSpanSuccess(span)

	switch report.Status {
	case filing.RunSkipped:
		metrics.RecordRun(spanCtx, instrumentation.StatusSkipped, report.Duration)
		metrics.RecordLockBusy(spanCtx)
	default:
		metrics.RecordRun(spanCtx, instrumentation.StatusCompleted, report.Duration)
		for docType, count := range report.Documents {
			metrics.RecordDocumentsFiled(spanCtx, docType, count)
		}
		if report.SweepRan {
			metrics.RecordArchiveSweep(spanCtx)
		}
	}
}
