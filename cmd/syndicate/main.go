// Package main implements the entry point for the syndicate daemon.
// The daemon consumes syndication tasks from NATS JetStream, reconciles
// local datasets against remote catalogs, and exposes an HTTP surface for
// change notifications, metrics, and health.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/syndicate/audit"
	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/config"
	"github.com/c360/syndicate/dispatch"
	"github.com/c360/syndicate/health"
	"github.com/c360/syndicate/metric"
	"github.com/c360/syndicate/natsclient"
	"github.com/c360/syndicate/profile"
	"github.com/c360/syndicate/queue"
	"github.com/c360/syndicate/remote"
	"github.com/c360/syndicate/syndicate"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "syndicate"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid",
			"profiles", len(cfg.Profiles))
		return nil
	}

	ctx := context.Background()

	monitor := health.NewMonitor()
	natsClient, registry, err := setupInfrastructure(ctx, cfg, logger, monitor)
	if err != nil {
		return err
	}
	defer func() { _ = natsClient.Close(ctx) }()

	deps, err := buildPipeline(ctx, cfg, natsClient, registry, logger)
	if err != nil {
		return err
	}

	return runWithSignalHandling(ctx, cfg, cliCfg, deps, registry, monitor, logger)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting syndicate (dataset syndication daemon)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupInfrastructure connects NATS and creates the metrics registry.
func setupInfrastructure(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	monitor *health.Monitor,
) (*natsclient.Client, *metric.Registry, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithLogger(logger),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	} else if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}

	natsClient, err := natsclient.NewClient(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.NATS.URL)
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := natsClient.Connect(connCtx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	registry := metric.NewRegistry()
	natsClient.OnHealthChange(func(healthy bool) {
		if healthy {
			registry.Metrics.NATSConnected.Set(1)
			monitor.Update("nats", true, "connected")
		} else {
			registry.Metrics.NATSConnected.Set(0)
			registry.Metrics.NATSReconnects.Inc()
			monitor.Update("nats", false, "disconnected")
		}
	})
	registry.Metrics.NATSConnected.Set(1)
	monitor.Update("nats", true, "connected")

	return natsClient, registry, nil
}

// pipeline holds the wired processing components.
type pipeline struct {
	profiles   *profile.Store
	trigger    *dispatch.Trigger
	worker     *queue.Worker
	localStore catalog.Catalog
}

// buildPipeline wires profiles, the local catalog adapter, the remote client
// factory, the reconciler, and the queue endpoints.
func buildPipeline(
	ctx context.Context,
	cfg *config.Config,
	natsClient *natsclient.Client,
	registry *metric.Registry,
	logger *slog.Logger,
) (*pipeline, error) {
	profiles, err := profile.NewStore(cfg.Profiles)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	slog.Info("Profiles loaded", "count", profiles.Len())

	localClient, err := remote.NewClient(cfg.Catalog.URL, cfg.Catalog.APIKey,
		remote.WithTimeout(cfg.Remote.Timeout))
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	localStore := remote.NewCatalogAdapter(localClient, logger)

	remoteOpts := []remote.Option{remote.WithTimeout(cfg.Remote.Timeout)}
	if cfg.Remote.RateLimit > 0 {
		remoteOpts = append(remoteOpts, remote.WithRateLimit(cfg.Remote.RateLimit, cfg.Remote.Burst))
	}
	factory := remote.NewFactory(remoteOpts...)

	extensions := syndicate.NewRegistry()
	transformer := syndicate.NewTransformer(extensions, logger)
	recorder := syndicate.NewRecorder(localStore, logger)
	notifier := syndicate.NewNotifier(logger)
	reconciler := syndicate.NewReconciler(localStore, factory, transformer, recorder, notifier, logger)

	auditStore, err := audit.NewStore(ctx, natsClient, logger)
	if err != nil {
		return nil, fmt.Errorf("create audit store: %w", err)
	}

	publisher, err := queue.NewPublisher(ctx, natsClient, registry.Metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create task publisher: %w", err)
	}

	worker := queue.NewWorker(natsClient, profiles, reconciler, auditStore, registry.Metrics, logger)
	worker.SetMaxDeliver(cfg.Worker.MaxDeliver)

	trigger := dispatch.NewTrigger(profiles, extensions, publisher, registry.Metrics, logger)

	return &pipeline{
		profiles:   profiles,
		trigger:    trigger,
		worker:     worker,
		localStore: localStore,
	}, nil
}

// runWithSignalHandling starts the worker and HTTP listener and blocks until
// a shutdown signal arrives or either fails.
func runWithSignalHandling(
	ctx context.Context,
	cfg *config.Config,
	cliCfg *CLIConfig,
	deps *pipeline,
	registry *metric.Registry,
	monitor *health.Monitor,
	logger *slog.Logger,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := deps.worker.Start(signalCtx); err != nil {
		monitor.Update("worker", false, err.Error())
		return fmt.Errorf("start worker: %w", err)
	}
	monitor.Update("worker", true, "consuming")
	slog.Info("Task worker started", "stream", queue.StreamName)

	srv := newHTTPServer(cfg.HTTP.Listen, deps, registry, monitor, logger)

	g, gCtx := errgroup.WithContext(signalCtx)
	g.Go(func() error {
		slog.Info("HTTP listener started", "addr", cfg.HTTP.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("Syndicate started successfully",
		"profiles", deps.profiles.Len(),
		"listen", cfg.HTTP.Listen)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	slog.Info("Syndicate shutdown complete")
	return nil
}

// notifyRequest is the change-notification payload accepted on /v1/notify.
type notifyRequest struct {
	Operation string           `json:"operation"`
	Dataset   *catalog.Dataset `json:"dataset"`
}

// newHTTPServer builds the daemon's HTTP surface: change notifications,
// Prometheus metrics, and health.
func newHTTPServer(addr string, deps *pipeline, registry *metric.Registry, monitor *health.Monitor, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.Handle("/healthz", monitor.Handler())
	mux.HandleFunc("/v1/notify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Dataset == nil || req.Dataset.ID == "" {
			http.Error(w, "dataset.id is required", http.StatusBadRequest)
			return
		}
		topic := syndicate.TopicForOperation(req.Operation)
		if !topic.Valid() {
			http.Error(w, "unknown operation", http.StatusBadRequest)
			return
		}

		deps.trigger.OnChange(r.Context(), req.Dataset, req.Operation)
		logger.Debug("change notification accepted",
			"dataset", req.Dataset.ID, "operation", req.Operation)
		w.WriteHeader(http.StatusAccepted)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
