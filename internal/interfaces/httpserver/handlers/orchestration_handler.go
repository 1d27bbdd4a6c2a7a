package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/auth"
	"github.com/janhq/git-automation-server/internal/infrastructure/observability"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/requests"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/responses"
	"github.com/janhq/git-automation-server/internal/utils/platformerrors"
)

// OrchestrationOptions tunes the /v1 endpoints.
type OrchestrationOptions struct {
	EnableParallel   bool
	ExecutionTimeout time.Duration
}

// OrchestrationHandler exposes the tool registry, the orchestrator and the
// workflow engine.
type OrchestrationHandler struct {
	orchestrator *toolchain.Orchestrator
	opts         OrchestrationOptions
	schemas      *jsonschema.Reflector
	log          zerolog.Logger
}

// NewOrchestrationHandler constructs the handler.
func NewOrchestrationHandler(orchestrator *toolchain.Orchestrator, opts OrchestrationOptions, log zerolog.Logger) *OrchestrationHandler {
	return &OrchestrationHandler{
		orchestrator: orchestrator,
		opts:         opts,
		schemas: &jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
			ExpandedStruct:            true,
		},
		log: log.With().Str("handler", "orchestration").Logger(),
	}
}

// ListTools handles GET /v1/tools
// @Summary List registered tools
// @Tags Orchestration
// @Produce json
// @Success 200 {object} map[string]any
// @Router /v1/tools [get]
func (h *OrchestrationHandler) ListTools(c *gin.Context) {
	contracts := h.orchestrator.Registry().Contracts()
	c.JSON(http.StatusOK, gin.H{"tools": contracts, "count": len(contracts)})
}

// ToolSchema handles GET /v1/tools/:name/schema
// @Summary JSON Schema of a tool's parameters
// @Tags Orchestration
// @Produce json
// @Param name path string true "Tool name"
// @Success 200 {object} map[string]any
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/tools/{name}/schema [get]
func (h *OrchestrationHandler) ToolSchema(c *gin.Context) {
	name := c.Param("name")
	contract, ok := h.orchestrator.Registry().Lookup(name)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, fmt.Sprintf("tool '%s' not found", name), "")
		return
	}
	body, ok := requests.ForTool(name)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotImplemented, fmt.Sprintf("no schema for tool '%s'", name), "")
		return
	}

	schema := h.schemas.Reflect(body)
	schema.Title = contract.Name
	schema.Description = contract.Description
	c.JSON(http.StatusOK, schema)
}

// ExecuteTool handles POST /v1/tools/:name/execute
// @Summary Invoke one tool, optionally following its suggestions
// @Tags Orchestration
// @Accept json
// @Produce json
// @Param name path string true "Tool name"
// @Param request body requests.ExecuteTool true "Parameters and chaining"
// @Success 200 {object} toolchain.Envelope
// @Router /v1/tools/{name}/execute [post]
func (h *OrchestrationHandler) ExecuteTool(c *gin.Context) {
	name := c.Param("name")
	if !h.orchestrator.Registry().Has(name) {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, fmt.Sprintf("tool '%s' not found", name), "")
		return
	}
	var req requests.ExecuteTool
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	strategy, err := h.strategy(req.Strategy)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.executionContext(c)
	defer cancel()
	ctx, span := observability.StartOrchestrationSpan(ctx, "run_tool", name, h.userID(c, req.UserID))
	defer span.End()

	envelope := h.orchestrator.RunTool(ctx, name, toolchain.Request{
		UserID:         h.userID(c, req.UserID),
		ConversationID: req.ConversationID,
		Parameters:     req.Parameters,
		Strategy:       strategy,
	}, req.ChainEnabled())
	observability.AddChainEvent(span, string(strategy), envelope.TotalTools)
	c.JSON(http.StatusOK, envelope)
}

// Execute handles POST /v1/execute
// @Summary Classify a natural language request and execute it
// @Tags Orchestration
// @Accept json
// @Produce json
// @Param request body requests.Execute true "Request"
// @Success 200 {object} toolchain.Envelope
// @Router /v1/execute [post]
func (h *OrchestrationHandler) Execute(c *gin.Context) {
	var req requests.Execute
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	strategy, err := h.strategy(req.Strategy)
	if err != nil {
		badRequest(c, err)
		return
	}

	userID := h.userID(c, req.UserID)
	ctx, cancel := h.executionContext(c)
	defer cancel()
	ctx, span := observability.StartOrchestrationSpan(ctx, "execute_request", "", userID)
	defer span.End()

	envelope := h.orchestrator.ExecuteRequest(ctx, toolchain.Request{
		Query:          req.Query,
		UserID:         userID,
		ConversationID: req.ConversationID,
		Parameters:     req.Parameters,
		Strategy:       strategy,
	})
	if envelope.Status == toolchain.StatusFailed {
		observability.RecordError(span, errors.New(envelope.Error), "low")
	} else {
		observability.AddChainEvent(span, string(strategy), envelope.TotalTools)
	}
	c.JSON(http.StatusOK, envelope)
}

// ListWorkflows handles GET /v1/workflows
func (h *OrchestrationHandler) ListWorkflows(c *gin.Context) {
	workflows := h.orchestrator.Workflows().Workflows()
	c.JSON(http.StatusOK, gin.H{"workflows": workflows, "count": len(workflows)})
}

// RunWorkflow handles POST /v1/workflows/:name
func (h *OrchestrationHandler) RunWorkflow(c *gin.Context) {
	name := c.Param("name")
	var req requests.RunWorkflow
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	userID := h.userID(c, req.UserID)
	ctx, cancel := h.executionContext(c)
	defer cancel()
	ctx, span := observability.StartOrchestrationSpan(ctx, "workflow", name, userID)
	defer span.End()

	report, err := h.orchestrator.ExecuteWorkflow(ctx, name, req.Parameters, userID, req.ConversationID)
	if errors.Is(err, toolchain.ErrUnknownWorkflow) {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, fmt.Sprintf("workflow '%s' not found", name), "")
		return
	}
	if err != nil {
		observability.RecordError(span, err, "medium")
		responses.HandleError(c, err, "workflow execution failed")
		return
	}
	if report.Status == toolchain.WorkflowStatusFailed {
		h.log.Warn().Str("workflow", name).Str("failed_step", report.FailedStep).Msg("workflow failed")
	}
	c.JSON(http.StatusOK, report)
}

// strategy parses the requested strategy. Parallel falls back to sequential
// when disabled, and interactive needs a terminal to confirm each step.
func (h *OrchestrationHandler) strategy(raw string) (toolchain.Strategy, error) {
	strategy, err := toolchain.ParseStrategy(raw)
	if err != nil {
		return "", err
	}
	switch strategy {
	case toolchain.StrategyParallel:
		if !h.opts.EnableParallel {
			h.log.Debug().Msg("parallel execution disabled, running sequentially")
			return toolchain.StrategySequential, nil
		}
	case toolchain.StrategyInteractive:
		return "", errors.New("interactive strategy is only available from the CLI")
	}
	return strategy, nil
}

// executionContext bounds the whole orchestration and forwards the caller's
// identity to the tools dispatched in process.
func (h *OrchestrationHandler) executionContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := auth.WithIdentity(c.Request.Context(), auth.UserID(c), auth.Roles(c))
	if h.opts.ExecutionTimeout > 0 {
		return context.WithTimeout(ctx, h.opts.ExecutionTimeout)
	}
	return context.WithCancel(ctx)
}

// userID prefers the explicit id and falls back to the token subject.
func (h *OrchestrationHandler) userID(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return auth.UserID(c)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return requests.Validate(dst)
	}
	return requests.BindJSON(c, dst)
}
