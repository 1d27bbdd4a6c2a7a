package toolchain

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Classifier maps free text to a registered tool name.
type Classifier interface {
	Classify(query string) (string, bool)
}

// Request is a single orchestration request.
type Request struct {
	Query          string
	UserID         string
	ConversationID string
	SessionID      string
	Parameters     map[string]any
	Strategy       Strategy
	Confirm        Confirmer
}

// Envelope statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Envelope is the outcome of ExecuteRequest or RunTool.
type Envelope struct {
	Status           string
	Error            string
	Suggestions      []string
	Context          *Summary
	InitialTool      string
	ChainExecuted    bool
	TotalTools       int
	ExecutionSummary *Summary
	FinalResult      *ToolResult
}

// MarshalJSON renders failed and completed envelopes with their own key sets.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := map[string]any{"status": e.Status}
	if e.Status == StatusFailed {
		out["error"] = e.Error
		if e.Suggestions != nil {
			out["suggestions"] = e.Suggestions
		}
		if e.Context != nil {
			out["context"] = e.Context
		}
		return json.Marshal(out)
	}
	out["initial_tool"] = e.InitialTool
	out["chain_executed"] = e.ChainExecuted
	out["total_tools"] = e.TotalTools
	out["execution_summary"] = e.ExecutionSummary
	out["final_result"] = e.FinalResult
	return json.Marshal(out)
}

// UnmarshalJSON accepts either envelope shape.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status           string      `json:"status"`
		Error            string      `json:"error"`
		Suggestions      []string    `json:"suggestions"`
		Context          *Summary    `json:"context"`
		InitialTool      string      `json:"initial_tool"`
		ChainExecuted    bool        `json:"chain_executed"`
		TotalTools       int         `json:"total_tools"`
		ExecutionSummary *Summary    `json:"execution_summary"`
		FinalResult      *ToolResult `json:"final_result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Envelope(raw)
	return nil
}

// Orchestrator is the top-level entry point: classify, invoke, chain.
type Orchestrator struct {
	registry   *Registry
	classifier Classifier
	tools      ToolExecutor
	chain      *ChainExecutor
	workflows  *WorkflowEngine
	log        zerolog.Logger
}

// NewOrchestrator wires the engine components together.
func NewOrchestrator(registry *Registry, classifier Classifier, tools ToolExecutor, chain *ChainExecutor, workflows *WorkflowEngine, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		classifier: classifier,
		tools:      tools,
		chain:      chain,
		workflows:  workflows,
		log:        log.With().Str("component", "orchestrator").Logger(),
	}
}

// Registry exposes the registry used for classification suggestions.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Workflows exposes the workflow engine.
func (o *Orchestrator) Workflows() *WorkflowEngine {
	return o.workflows
}

// NewContext creates an execution context, minting conversation and session
// ids when they are empty.
func NewContext(userID, conversationID, sessionID string) *ExecutionContext {
	if conversationID == "" {
		conversationID = "conv-" + uuid.NewString()
	}
	if sessionID == "" {
		sessionID = "session-" + uuid.NewString()
	}
	return NewExecutionContext(conversationID, userID, sessionID)
}

// ExecuteRequest classifies the query and runs the matching tool, chaining
// when the first result still needs post-processing.
func (o *Orchestrator) ExecuteRequest(ctx context.Context, req Request) *Envelope {
	ec := NewContext(req.UserID, req.ConversationID, req.SessionID)

	name, ok := o.classifier.Classify(req.Query)
	if !ok {
		o.log.Info().Str("query", req.Query).Msg("request not classified")
		return &Envelope{
			Status:      StatusFailed,
			Error:       "Could not understand request",
			Suggestions: o.registry.Names(),
		}
	}

	o.log.Info().Str("tool", name).Str("execution_id", ec.ExecutionID).Msg("request classified")
	return o.run(ctx, name, req, ec, true)
}

// RunTool invokes a named tool directly. When chain is false, suggestions are
// returned but not followed.
func (o *Orchestrator) RunTool(ctx context.Context, name string, req Request, chain bool) *Envelope {
	ec := NewContext(req.UserID, req.ConversationID, req.SessionID)
	return o.run(ctx, name, req, ec, chain)
}

func (o *Orchestrator) run(ctx context.Context, name string, req Request, ec *ExecutionContext, chain bool) *Envelope {
	initial := o.tools.Execute(ctx, name, copyParams(req.Parameters), ec)
	if initial == nil {
		summary := ec.Summary()
		return &Envelope{
			Status:  StatusFailed,
			Error:   "Initial tool execution failed",
			Context: &summary,
		}
	}

	if chain && initial.Status() == ExecutionStatusProcessing {
		strategy := req.Strategy
		if strategy == "" {
			strategy = StrategySequential
		}
		o.log.Debug().
			Str("execution_id", ec.ExecutionID).
			Str("strategy", string(strategy)).
			Str("result_context", initial.LLMContextSummary()).
			Msg("following suggestions")
		o.chain.ExecuteChain(ctx, initial, ec, ChainOptions{Strategy: strategy, Confirm: req.Confirm})
	}

	results := ec.Results()
	summary := ec.Summary()
	return &Envelope{
		Status:           StatusCompleted,
		InitialTool:      initial.ToolName,
		ChainExecuted:    len(results) > 1,
		TotalTools:       len(results),
		ExecutionSummary: &summary,
		FinalResult:      ec.LastResult(),
	}
}

// ExecuteWorkflow runs a named workflow in a fresh context.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, name string, params map[string]any, userID, conversationID string) (*WorkflowReport, error) {
	ec := NewContext(userID, conversationID, "")
	return o.workflows.ExecuteWorkflow(ctx, name, params, ec)
}
