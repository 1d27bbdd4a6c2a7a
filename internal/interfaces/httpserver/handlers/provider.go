package handlers

import (
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Repo          *RepoHandler
	GitHub        *GitHubHandler
	Auth          *AuthHandler
	Intent        *IntentHandler
	Orchestration *OrchestrationHandler
}

// NewToolsProvider constructs the handlers behind the tool endpoints.
func NewToolsProvider(
	git GitOperations,
	downloader GitignoreDownloader,
	api GitHubAPI,
	store CredentialStore,
	registry *toolchain.Registry,
	classifier toolchain.Classifier,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Repo:   NewRepoHandler(git, downloader, log),
		GitHub: NewGitHubHandler(api, log),
		Auth:   NewAuthHandler(store, log),
		Intent: NewIntentHandler(registry, classifier),
	}
}

// WithOrchestration adds the /v1 handler. A nil orchestrator leaves it unset.
func (p *Provider) WithOrchestration(orchestrator *toolchain.Orchestrator, opts OrchestrationOptions, log zerolog.Logger) *Provider {
	if orchestrator == nil {
		return p
	}
	p.Orchestration = NewOrchestrationHandler(orchestrator, opts, log)
	return p
}
