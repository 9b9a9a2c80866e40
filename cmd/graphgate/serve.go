package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360/graphgate/config"
	"github.com/c360/graphgate/format"
	"github.com/c360/graphgate/gateway"
	"github.com/c360/graphgate/graph"
	"github.com/c360/graphgate/health"
	"github.com/c360/graphgate/llm"
	"github.com/c360/graphgate/metric"
	"github.com/c360/graphgate/pattern"
	"github.com/c360/graphgate/pkg/retry"
	"github.com/c360/graphgate/session"
)

const (
	// searchLimit caps rows returned by the broad name search tool.
	searchLimit = 25
	// healthInterval is how often dependency probes run.
	healthInterval = 30 * time.Second
	// poolDrainTimeout bounds the executor pool shutdown.
	poolDrainTimeout = 10 * time.Second
	// startupWait bounds the initial graph store reachability check.
	startupWait = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting graphgate",
		"version", Version,
		"listen_addr", cfg.ListenAddr,
		"graph", cfg.Graph.Name,
		"model", cfg.LLM.Model)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()

	completer := llm.NewClient(cfg.LLM.Host, cfg.LLM.Model, cfg.LLM.Timeout, logger)

	graphClient := graph.NewClient(cfg.GraphAddr(), cfg.Graph.Name, cfg.Graph.ExecTimeout, logger)
	defer func() { _ = graphClient.Close() }()

	executor := graph.NewPooledExecutor(graphClient, cfg.Graph.Workers, logger, registry)
	if err := executor.Start(ctx); err != nil {
		return fmt.Errorf("start executor pool: %w", err)
	}
	defer func() { _ = executor.Stop(poolDrainTimeout) }()

	// A cold graph store is not fatal; the gateway comes up degraded and
	// the health checker reports it until the store answers.
	pingCtx, cancelPing := context.WithTimeout(ctx, startupWait)
	if err := retry.Do(pingCtx, retry.Quick(), func() error {
		return graphClient.Ping(pingCtx)
	}); err != nil {
		logger.Warn("graph store not reachable at startup", "error", err)
	}
	cancelPing()

	svc := &session.Services{
		Completer:   completer,
		Executor:    executor,
		Prober:      graph.NewProber(executor, cfg.Graph.SchemaTimeout, cfg.Graph.SchemaTimeout/2, logger),
		Searcher:    graph.NewSearcher(executor, searchLimit, logger),
		Matcher:     pattern.NewMatcher(logger),
		Summarizer:  format.NewSummarizer(completer, logger),
		Metrics:     metrics,
		TurnTimeout: cfg.Session.TurnTimeout,
		DebugErrors: cfg.DebugErrors,
	}

	manager := session.NewManager(svc, cfg.Session.MaxSessions, cfg.Session.Heartbeat, logger)

	monitor := health.NewMonitor()
	checker := health.NewChecker(monitor, graphClient, cfg.LLM.Host, manager,
		metrics, healthInterval, logger)
	go checker.Run(ctx)

	server := gateway.NewServer(cfg.ListenAddr, manager, registry, monitor, logger)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	logger.Info("graphgate shutdown complete")
	return nil
}
