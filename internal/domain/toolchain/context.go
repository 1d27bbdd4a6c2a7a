package toolchain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the per-request state shared across a chain or workflow.
// Appends are safe for concurrent use.
type ExecutionContext struct {
	ExecutionID    string
	ConversationID string
	UserID         string
	SessionID      string
	StartTime      time.Time

	mu      sync.Mutex
	results []*ToolResult
	errors  []ErrorRecord
	now     func() time.Time
}

// NewExecutionContext creates a context with a fresh exec-<uuid> id.
func NewExecutionContext(conversationID, userID, sessionID string) *ExecutionContext {
	return &ExecutionContext{
		ExecutionID:    "exec-" + uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		SessionID:      sessionID,
		StartTime:      time.Now().UTC(),
		now:            time.Now,
	}
}

// Correlation returns the ids used when invoking tools for this context.
func (c *ExecutionContext) Correlation() Correlation {
	return Correlation{
		ConversationID: c.ConversationID,
		UserID:         c.UserID,
		SessionID:      c.SessionID,
	}
}

// AddResult appends a successful tool result.
func (c *ExecutionContext) AddResult(result *ToolResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	c.results = append(c.results, result)
	c.mu.Unlock()
}

// AddError appends a failed tool attempt.
func (c *ExecutionContext) AddError(record ErrorRecord) {
	c.mu.Lock()
	c.errors = append(c.errors, record)
	c.mu.Unlock()
}

// Results returns a snapshot of the accumulated results in order.
func (c *ExecutionContext) Results() []*ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ToolResult, len(c.results))
	copy(out, c.results)
	return out
}

// Errors returns a snapshot of the accumulated errors in order.
func (c *ExecutionContext) Errors() []ErrorRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ErrorRecord, len(c.errors))
	copy(out, c.errors)
	return out
}

// LastResult returns the most recent result, or nil.
func (c *ExecutionContext) LastResult() *ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return nil
	}
	return c.results[len(c.results)-1]
}

// Summary describes a finished or in-flight execution.
type Summary struct {
	ExecutionID        string   `json:"execution_id"`
	ConversationID     string   `json:"conversation_id"`
	StartTime          string   `json:"start_time"`
	Duration           float64  `json:"duration"`
	TotalToolsExecuted int      `json:"total_tools_executed"`
	Errors             int      `json:"errors"`
	Successful         bool     `json:"successful"`
	ToolChain          []string `json:"tool_chain"`
}

// Summary reports counts and the ordered tool chain.
func (c *ExecutionContext) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now
	if c.now != nil {
		now = c.now
	}

	chain := make([]string, 0, len(c.results))
	for _, result := range c.results {
		chain = append(chain, result.ToolName)
	}

	return Summary{
		ExecutionID:        c.ExecutionID,
		ConversationID:     c.ConversationID,
		StartTime:          c.StartTime.UTC().Format(time.RFC3339),
		Duration:           now().Sub(c.StartTime).Seconds(),
		TotalToolsExecuted: len(c.results),
		Errors:             len(c.errors),
		Successful:         len(c.errors) == 0,
		ToolChain:          chain,
	}
}
