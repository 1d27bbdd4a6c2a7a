package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/logger"
	"github.com/janhq/git-automation-server/internal/infrastructure/observability"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	authValidator, err := newAuthValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	responseCache, err := newResponseCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize response cache")
	}

	store := newCredentialStore(cfg, log)
	if !store.Get().Configured() {
		log.Warn().Msg("GitHub credentials not configured; use POST /auth/setup")
	}

	registry := toolchain.DefaultRegistry()
	classifier := newClassifier()
	tools := newToolsProvider(
		newGitClient(log),
		newGitignoreDownloader(cfg, log),
		newGitHubClient(cfg, store, responseCache, log),
		store,
		registry,
		classifier,
		log,
	)

	invoker := newInvoker(cfg, registry, newTransport(cfg, tools, authValidator, log), log)
	workflows, err := newWorkflowEngine(cfg, invoker, registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize workflow engine")
	}
	orchestrator := newOrchestrator(registry, classifier, invoker, newChainExecutor(cfg, invoker, log), workflows, log)

	httpServer, err := newHTTPServer(cfg, log, tools, orchestrator, authValidator)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize http server")
	}
	app := NewApplication(httpServer, log)

	log.Info().
		Int("tools", registry.Len()).
		Int("workflows", len(workflows.Workflows())).
		Bool("parallel", cfg.EnableParallel).
		Msg("git automation server ready")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
