package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ppiankov/entrawatch/internal/agent"
	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/history"
	"github.com/ppiankov/entrawatch/internal/metrics"
	"github.com/ppiankov/entrawatch/internal/notify"
	"github.com/ppiankov/entrawatch/internal/telemetry"
	"github.com/ppiankov/entrawatch/internal/web"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
	defaultConfigPath = "/etc/entrawatch/config.yaml"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived service with /metrics and a JSON API",
	Long: `Start entrawatch as a long-running service.

Runs a background collect-and-evaluate loop against the tenant and
serves results over HTTP.

Endpoints:
  /metrics          Prometheus scrape endpoint
  /healthz          Liveness probe (returns 503 if evaluation is stale)
  /api/v1/snapshot  JSON snapshot of all service outcomes
  /api/v1/history   Past runs (requires --history-db)
  /api/v1/trend     One service over time (requires --history-db)`,
	Example: `  # Run with a config file
  export ENTRAWATCH_APP_SECRET=...
  entrawatch serve --config /etc/entrawatch/config.yaml

  # Override listen address
  entrawatch serve --config config.yaml --listen :9090

  # Run with JSON logging for log aggregation
  entrawatch serve --config config.yaml --log-format json --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	registerTenantFlags(serveCmd)
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
	serveCmd.Flags().String("history-db", "", "Path to SQLite history database (enables /api/v1/history and /api/v1/trend)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if cfgPath == "" {
		// Pick up the default path only when the file exists.
		if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
			if setErr := cmd.Flags().Set("config", defaultConfigPath); setErr != nil {
				return setErr
			}
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireTenant(cfg); err != nil {
		return err
	}

	listenFlag, _ := cmd.Flags().GetString("listen") //nolint:errcheck // flag registered above
	if listenFlag != "" {
		cfg.ListenAddr = listenFlag
	}
	historyDB, _ := cmd.Flags().GetString("history-db") //nolint:errcheck // flag registered above
	if historyDB != "" {
		cfg.HistoryDB = historyDB
	}

	// Open history store if configured
	var histStore *history.Store
	if cfg.HistoryDB != "" {
		var histErr error
		histStore, histErr = history.Open(cfg.HistoryDB)
		if histErr != nil {
			return fmt.Errorf("opening history database: %w", histErr)
		}
		defer histStore.Close() //nolint:errcheck // best-effort cleanup on shutdown
		slog.Info("history storage enabled", "path", cfg.HistoryDB)
	}

	// Initialize tracing
	otelEndpoint, _ := cmd.Flags().GetString("otel-endpoint") //nolint:errcheck // persistent flag on root
	tracer, tracerShutdown, tracerErr := telemetry.InitTracer(context.Background(), otelEndpoint, "entrawatch", version)
	if tracerErr != nil {
		slog.Warn("initializing tracer", "err", tracerErr)
	} else {
		defer tracerShutdown(context.Background()) //nolint:errcheck // best-effort flush
	}

	var agentOpts []agent.Option
	if tracer != nil {
		agentOpts = append(agentOpts, agent.WithTracer(tracer))
	}
	client, err := agent.New(cfg, agentOpts...)
	if err != nil {
		return err
	}

	// Notifications (nil if not configured)
	notifier := notify.New(cfg.Notifications)

	// Shared state: mutex-protected snapshot
	var mu sync.RWMutex
	var currentSnap check.Snapshot

	getSnapshot := func() check.Snapshot {
		mu.RLock()
		defer mu.RUnlock()
		return currentSnap
	}

	// Prometheus metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", web.HealthzHandler(getSnapshot, 2*cfg.RefreshEvery))
	mux.HandleFunc("/api/v1/snapshot", web.SnapshotHandler(getSnapshot))
	if histStore != nil {
		mux.HandleFunc("/api/v1/history", web.HistoryHandler(histStore))
		mux.HandleFunc("/api/v1/trend", web.TrendHandler(histStore))
	}
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background collect-and-evaluate loop
	run := func() {
		start := time.Now()
		env := client.Collect(ctx, cfg.EnabledServices())
		snap := evaluateEnvelope(env, cfg)
		duration := time.Since(start)

		mu.Lock()
		prev := currentSnap
		currentSnap = snap
		mu.Unlock()

		collector.Update(snap, duration)

		if histStore != nil {
			if saveErr := histStore.Save(snap); saveErr != nil {
				slog.Error("saving history run", "err", saveErr)
			}
		}

		if notifier != nil {
			notifier.Notify(prev, snap)
		}

		counts := snap.Counts()
		slog.Info("evaluation complete", "services", len(snap.Outcomes),
			"crit", counts[check.StateCrit], "warn", counts[check.StateWarn],
			"unknown", counts[check.StateUnknown], "errors", len(snap.Errors),
			"duration", duration.Round(time.Millisecond))
	}

	// Run initial evaluation
	run()

	// Start periodic loop
	go func() {
		ticker := time.NewTicker(cfg.RefreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("evaluation panic recovered", "panic", r)
						}
					}()
					run()
				}()
			}
		}
	}()

	// Start HTTP server
	srvErr := make(chan error, 1)
	go func() {
		slog.Info("entrawatch serve listening", "version", version, "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}
