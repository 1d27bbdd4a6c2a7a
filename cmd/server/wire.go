//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/logger"
)

var infrastructureSet = wire.NewSet(
	newAuthValidator,
	newResponseCache,
	newCredentialStore,
	newGitHubClient,
	newGitClient,
	newGitignoreDownloader,
)

var toolchainSet = wire.NewSet(
	toolchain.DefaultRegistry,
	newClassifier,
	newToolsProvider,
	newTransport,
	newInvoker,
	newChainExecutor,
	newWorkflowEngine,
	newOrchestrator,
)

// BuildApplication assembles the git automation server with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		infrastructureSet,
		toolchainSet,
		newHTTPServer,
		NewApplication,
	)
	return nil, nil
}
