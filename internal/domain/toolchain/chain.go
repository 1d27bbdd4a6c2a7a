package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxChainLength bounds chain iterations when none is configured.
const DefaultMaxChainLength = 10

// Strategy selects how a batch of suggestions is executed.
type Strategy string

const (
	StrategySequential  Strategy = "sequential"
	StrategyParallel    Strategy = "parallel"
	StrategyConditional Strategy = "conditional"
	StrategyInteractive Strategy = "interactive"
)

// ParseStrategy maps a name to a Strategy. An empty name is sequential.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StrategySequential:
		return StrategySequential, nil
	case StrategyParallel:
		return StrategyParallel, nil
	case StrategyConditional:
		return StrategyConditional, nil
	case StrategyInteractive:
		return StrategyInteractive, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", raw)
	}
}

// SuggestionFilter keeps the suggestions for which it returns true.
type SuggestionFilter func(SuggestedToolReference) bool

// Confirmer is asked before each tool under the interactive strategy.
type Confirmer func(ctx context.Context, suggestion SuggestedToolReference) bool

// ChainOptions tunes a single ExecuteChain call.
type ChainOptions struct {
	Strategy Strategy
	Filter   SuggestionFilter
	Confirm  Confirmer
}

// Observer receives chain and workflow outcomes, typically for metrics.
type Observer interface {
	ChainCompleted(strategy string, iterations int)
	WorkflowCompleted(name string, status string)
}

type nopObserver struct{}

func (nopObserver) ChainCompleted(string, int)       {}
func (nopObserver) WorkflowCompleted(string, string) {}

// ChainExecutor follows tool suggestions until the chain settles.
type ChainExecutor struct {
	tools          ToolExecutor
	maxChainLength int
	observer       Observer
	log            zerolog.Logger
}

// NewChainExecutor builds a chain executor. A non-positive maxChainLength
// falls back to DefaultMaxChainLength.
func NewChainExecutor(tools ToolExecutor, maxChainLength int, log zerolog.Logger) *ChainExecutor {
	if maxChainLength <= 0 {
		maxChainLength = DefaultMaxChainLength
	}
	return &ChainExecutor{
		tools:          tools,
		maxChainLength: maxChainLength,
		observer:       nopObserver{},
		log:            log.With().Str("component", "chain-executor").Logger(),
	}
}

// WithObserver attaches an outcome observer.
func (c *ChainExecutor) WithObserver(observer Observer) *ChainExecutor {
	if observer != nil {
		c.observer = observer
	}
	return c
}

// MaxChainLength reports the iteration bound.
func (c *ChainExecutor) MaxChainLength() int {
	return c.maxChainLength
}

// ExecuteChain starts from initial and keeps executing suggested tools. The
// returned slice begins with initial, which is expected to already be in ec.
func (c *ChainExecutor) ExecuteChain(ctx context.Context, initial *ToolResult, ec *ExecutionContext, opts ChainOptions) []*ToolResult {
	if initial == nil {
		return nil
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategySequential
	}

	results := []*ToolResult{initial}
	current := initial
	iterations := 0

	for current != nil && iterations < c.maxChainLength {
		if ctx.Err() != nil {
			c.log.Warn().Err(ctx.Err()).Str("execution_id", ec.ExecutionID).Msg("chain interrupted")
			break
		}

		suggestions := current.Metadata.SuggestedTools
		if len(suggestions) == 0 {
			break
		}
		if opts.Filter != nil {
			suggestions = filterSuggestions(suggestions, opts.Filter)
		}
		if len(suggestions) == 0 {
			break
		}

		var batch []*ToolResult
		switch strategy {
		case StrategySequential:
			batch = c.executeSequential(ctx, suggestions, ec, nil)
		case StrategyParallel:
			batch = c.executeParallel(ctx, suggestions, ec)
		case StrategyConditional:
			batch = c.executeConditional(ctx, suggestions, ec)
		case StrategyInteractive:
			if opts.Confirm == nil {
				c.log.Warn().Str("execution_id", ec.ExecutionID).Msg("interactive strategy without confirmer")
				break
			}
			batch = c.executeSequential(ctx, suggestions, ec, opts.Confirm)
		}

		if len(batch) == 0 {
			break
		}

		results = append(results, batch...)
		current = batch[len(batch)-1]
		iterations++
	}

	c.log.Debug().
		Str("execution_id", ec.ExecutionID).
		Str("strategy", string(strategy)).
		Int("iterations", iterations).
		Int("results", len(results)).
		Msg("chain finished")
	c.observer.ChainCompleted(string(strategy), iterations)

	return results
}

func filterSuggestions(in []SuggestedToolReference, keep SuggestionFilter) []SuggestedToolReference {
	out := make([]SuggestedToolReference, 0, len(in))
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (c *ChainExecutor) executeSequential(ctx context.Context, suggestions []SuggestedToolReference, ec *ExecutionContext, confirm Confirmer) []*ToolResult {
	var batch []*ToolResult
	for _, suggestion := range suggestions {
		if !suggestion.HasHint() {
			continue
		}
		if confirm != nil && !confirm(ctx, suggestion) {
			c.log.Info().Str("tool", suggestion.ToolNameHint).Msg("suggestion declined")
			continue
		}
		result := c.tools.Execute(ctx, suggestion.ToolNameHint, copyParams(suggestion.Parameters), ec)
		if result == nil {
			continue
		}
		batch = append(batch, result)
		if result.Status() != ExecutionStatusProcessing {
			break
		}
	}
	return batch
}

func (c *ChainExecutor) executeParallel(ctx context.Context, suggestions []SuggestedToolReference, ec *ExecutionContext) []*ToolResult {
	var eligible []SuggestedToolReference
	for _, suggestion := range suggestions {
		if !suggestion.HasHint() {
			continue
		}
		if suggestion.ToolType == ToolTypeRetriever || suggestion.ToolType == ToolTypeAnalyzer {
			eligible = append(eligible, suggestion)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	slots := make([]*ToolResult, len(eligible))
	var g errgroup.Group
	for idx, suggestion := range eligible {
		idx, suggestion := idx, suggestion
		g.Go(func() error {
			slots[idx] = c.tools.Execute(ctx, suggestion.ToolNameHint, copyParams(suggestion.Parameters), ec)
			return nil
		})
	}
	_ = g.Wait()

	batch := make([]*ToolResult, 0, len(slots))
	for _, result := range slots {
		if result != nil {
			batch = append(batch, result)
		}
	}
	return batch
}

func (c *ChainExecutor) executeConditional(ctx context.Context, suggestions []SuggestedToolReference, ec *ExecutionContext) []*ToolResult {
	var batch []*ToolResult
	for _, suggestion := range suggestions {
		if !shouldExecute(suggestion, ec) || !suggestion.HasHint() {
			continue
		}
		if result := c.tools.Execute(ctx, suggestion.ToolNameHint, copyParams(suggestion.Parameters), ec); result != nil {
			batch = append(batch, result)
		}
	}
	return batch
}

// shouldExecute is the conditional policy: modifiers are held back once the
// last result has settled, everything else runs.
func shouldExecute(suggestion SuggestedToolReference, ec *ExecutionContext) bool {
	last := ec.LastResult()
	if last == nil {
		return true
	}
	if suggestion.ToolType == ToolTypeModifier && !last.Metadata.RequiresPostProcessing {
		return false
	}
	return true
}

func copyParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
