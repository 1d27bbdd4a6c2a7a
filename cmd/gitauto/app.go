package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/domain/intent"
	"github.com/janhq/git-automation-server/internal/domain/retry"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/cache"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
	"github.com/janhq/git-automation-server/internal/infrastructure/logger"
	"github.com/janhq/git-automation-server/internal/infrastructure/transport"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

// app holds the clients shared by the commands of one invocation.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	git    *gitcli.Client
	store  *credentials.Store
	out    *Renderer
	stdout io.Writer
	input  *bufio.Reader
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), "gitauto", cfg.Environment, level)

	return &app{
		cfg: cfg,
		log: log,
		git: gitcli.New(gitcli.NewOSRunner(), log),
		store: credentials.NewStore(cfg.CredentialsFile, credentials.Credentials{
			Username: cfg.GitHubUsername,
			Token:    cfg.GitHubToken,
		}, log),
		out:    NewRenderer(!noColor(cmd)),
		stdout: cmd.OutOrStdout(),
		input:  bufio.NewReader(cmd.InOrStdin()),
	}, nil
}

func noColor(cmd *cobra.Command) bool {
	disabled, _ := cmd.Flags().GetBool("no-color")
	return disabled
}

func (a *app) println(s string) {
	fmt.Fprintln(a.stdout, s)
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.stdout, label)
	line, err := a.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// ensureCredentials prompts for GitHub credentials when none are configured.
func (a *app) ensureCredentials() error {
	if a.store.Get().Configured() {
		return nil
	}
	a.println(a.out.Warn("GitHub credentials not found. Please enter your GitHub username and API token."))
	return a.setupCredentials()
}

func (a *app) setupCredentials() error {
	username, err := a.prompt("GitHub Username: ")
	if err != nil {
		return err
	}
	token, err := a.prompt("GitHub API Token: ")
	if err != nil {
		return err
	}
	if err := a.store.Save(username, token); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	a.println(a.out.Success(fmt.Sprintf("GitHub credentials saved to %s", a.store.Path())))
	return nil
}

func (a *app) github() *github.Client {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = a.cfg.GitHubMaxRetries
	return github.NewClient(github.Config{
		BaseURL: a.cfg.GitHubAPIURL,
		Timeout: a.cfg.GitHubTimeout,
		Retry:   policy,
	}, a.store, cache.NewNoOpsCache(), a.log)
}

func (a *app) downloader() *gitignore.Downloader {
	return gitignore.NewDownloader(a.cfg.GitignoreTemplateURL, a.cfg.GitHubTimeout, a.log)
}

// orchestrator wires the tool chain. Tools run against remoteURL when set and
// against an in-process tools engine otherwise.
func (a *app) orchestrator(remoteURL, token string) (*toolchain.Orchestrator, error) {
	registry := toolchain.DefaultRegistry()
	classifier := intent.NewKeywordClassifier(intent.DefaultRules()...)

	var tr toolchain.Transport
	if remoteURL != "" {
		tr = transport.NewHTTP(remoteURL, a.cfg.ToolTimeout).SetAuthToken(token)
	} else {
		gin.SetMode(gin.ReleaseMode)
		tools := handlers.NewToolsProvider(a.git, a.downloader(), a.github(), a.store, registry, classifier, a.log)
		tr = transport.NewHandler(httpserver.NewToolsEngine(tools, nil))
	}

	invoker := toolchain.NewInvoker(registry, tr, a.cfg.ToolTimeout, a.log)
	chain := toolchain.NewChainExecutor(invoker, a.cfg.MaxChainLength, a.log)
	workflows := toolchain.DefaultWorkflows()
	if a.cfg.WorkflowsFile != "" {
		custom, err := toolchain.LoadWorkflows(a.cfg.WorkflowsFile)
		if err != nil {
			return nil, fmt.Errorf("load workflows: %w", err)
		}
		workflows = toolchain.MergeWorkflows(workflows, custom)
	}
	for name, tools := range toolchain.UnregisteredSteps(workflows, registry) {
		a.log.Debug().Str("workflow", name).Strs("tools", tools).Msg("workflow references unregistered tools")
	}
	engine := toolchain.NewWorkflowEngine(invoker, workflows, a.log)
	return toolchain.NewOrchestrator(registry, classifier, invoker, chain, engine, a.log), nil
}

// confirmer asks on stdin before each suggested tool runs.
func (a *app) confirmer() toolchain.Confirmer {
	return func(_ context.Context, suggestion toolchain.SuggestedToolReference) bool {
		question := fmt.Sprintf("Run %s? %s (y/N): ", suggestion.ToolNameHint, suggestion.Reason)
		answer, err := a.prompt(question)
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}
