package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/domain/intent"
	"github.com/janhq/git-automation-server/internal/domain/retry"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/auth"
	"github.com/janhq/git-automation-server/internal/infrastructure/cache"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
	"github.com/janhq/git-automation-server/internal/infrastructure/transport"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newResponseCache(cfg *config.Config) (cache.Cache, error) {
	return cache.New(cache.Config{
		Enabled:   cfg.CacheEnabled,
		RedisURL:  cfg.RedisURL,
		KeyPrefix: cfg.ServiceName + ":github:",
		MaxSize:   cfg.CacheSize,
	})
}

func newCredentialStore(cfg *config.Config, log zerolog.Logger) *credentials.Store {
	return credentials.NewStore(cfg.CredentialsFile, credentials.Credentials{
		Username: cfg.GitHubUsername,
		Token:    cfg.GitHubToken,
	}, log)
}

func newGitHubClient(cfg *config.Config, store *credentials.Store, responses cache.Cache, log zerolog.Logger) *github.Client {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.GitHubMaxRetries
	return github.NewClient(github.Config{
		BaseURL:  cfg.GitHubAPIURL,
		Timeout:  cfg.GitHubTimeout,
		CacheTTL: cfg.CacheTTL,
		Retry:    policy,
	}, store, responses, log)
}

func newGitClient(log zerolog.Logger) *gitcli.Client {
	return gitcli.New(gitcli.NewOSRunner(), log)
}

func newGitignoreDownloader(cfg *config.Config, log zerolog.Logger) *gitignore.Downloader {
	return gitignore.NewDownloader(cfg.GitignoreTemplateURL, cfg.GitHubTimeout, log)
}

func newClassifier() toolchain.Classifier {
	return intent.NewKeywordClassifier(intent.DefaultRules()...)
}

func newToolsProvider(
	git *gitcli.Client,
	downloader *gitignore.Downloader,
	api *github.Client,
	store *credentials.Store,
	registry *toolchain.Registry,
	classifier toolchain.Classifier,
	log zerolog.Logger,
) *handlers.Provider {
	return handlers.NewToolsProvider(git, downloader, api, store, registry, classifier, log)
}

// newTransport dispatches tool calls to TOOLS_BASE_URL when set, and into an
// in-process tools engine otherwise.
func newTransport(cfg *config.Config, tools *handlers.Provider, authValidator *auth.Validator, log zerolog.Logger) toolchain.Transport {
	if cfg.ToolsBaseURL != "" {
		log.Info().Str("tools_base_url", cfg.ToolsBaseURL).Msg("dispatching tools over HTTP")
		return transport.NewTraced(transport.NewHTTP(cfg.ToolsBaseURL, cfg.ToolTimeout))
	}
	engine := httpserver.NewToolsEngine(tools, authValidator)
	return transport.NewTraced(transport.NewHandler(engine))
}

func newInvoker(cfg *config.Config, registry *toolchain.Registry, tr toolchain.Transport, log zerolog.Logger) *toolchain.Invoker {
	return toolchain.NewInvoker(registry, tr, cfg.ToolTimeout, log)
}

func newChainExecutor(cfg *config.Config, invoker *toolchain.Invoker, log zerolog.Logger) *toolchain.ChainExecutor {
	return toolchain.NewChainExecutor(invoker, cfg.MaxChainLength, log).WithObserver(metrics.Observer{})
}

// newWorkflowEngine loads the default workflows plus WORKFLOWS_FILE and warns
// about steps naming tools that are not registered.
func newWorkflowEngine(cfg *config.Config, invoker *toolchain.Invoker, registry *toolchain.Registry, log zerolog.Logger) (*toolchain.WorkflowEngine, error) {
	workflows := toolchain.DefaultWorkflows()
	if cfg.WorkflowsFile != "" {
		custom, err := toolchain.LoadWorkflows(cfg.WorkflowsFile)
		if err != nil {
			return nil, fmt.Errorf("load workflows: %w", err)
		}
		workflows = toolchain.MergeWorkflows(workflows, custom)
		log.Info().Str("file", cfg.WorkflowsFile).Int("count", len(custom)).Msg("loaded workflows")
	}
	for name, tools := range toolchain.UnregisteredSteps(workflows, registry) {
		log.Warn().Str("workflow", name).Strs("tools", tools).Msg("workflow references unregistered tools")
	}
	return toolchain.NewWorkflowEngine(invoker, workflows, log).WithObserver(metrics.Observer{}), nil
}

func newOrchestrator(
	registry *toolchain.Registry,
	classifier toolchain.Classifier,
	invoker *toolchain.Invoker,
	chain *toolchain.ChainExecutor,
	workflows *toolchain.WorkflowEngine,
	log zerolog.Logger,
) *toolchain.Orchestrator {
	return toolchain.NewOrchestrator(registry, classifier, invoker, chain, workflows, log)
}

func newHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	tools *handlers.Provider,
	orchestrator *toolchain.Orchestrator,
	authValidator *auth.Validator,
) (*httpserver.HttpServer, error) {
	provider := tools.WithOrchestration(orchestrator, handlers.OrchestrationOptions{
		EnableParallel:   cfg.EnableParallel,
		ExecutionTimeout: cfg.ExecutionTimeout,
	}, log)
	return httpserver.New(cfg, log, provider, authValidator)
}
