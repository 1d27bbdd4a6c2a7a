package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// ToolRequest is a single HTTP-shaped call to a tool endpoint.
type ToolRequest struct {
	Tool    string
	Method  string
	Path    string
	Query   url.Values
	Body    map[string]any
	Headers http.Header
}

// ToolResponse is what the transport received back.
type ToolResponse struct {
	StatusCode int
	Body       []byte
}

// Transport delivers tool requests. Implementations live in infrastructure.
type Transport interface {
	Do(ctx context.Context, req ToolRequest) (*ToolResponse, error)
}

// ToolExecutor runs one tool by name and records the outcome in ec.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, params map[string]any, ec *ExecutionContext) *ToolResult
}

// Invoker resolves tool contracts and calls them through a Transport.
type Invoker struct {
	registry  *Registry
	transport Transport
	timeout   time.Duration
	log       zerolog.Logger
}

// NewInvoker constructs an invoker. A zero timeout disables the per-call deadline.
func NewInvoker(registry *Registry, transport Transport, timeout time.Duration, log zerolog.Logger) *Invoker {
	return &Invoker{
		registry:  registry,
		transport: transport,
		timeout:   timeout,
		log:       log.With().Str("component", "tool-invoker").Logger(),
	}
}

// Registry returns the registry the invoker resolves names against.
func (i *Invoker) Registry() *Registry {
	return i.registry
}

// Execute calls the named tool. On success the result is appended to ec and
// returned; on failure an error record is appended and nil is returned.
func (i *Invoker) Execute(ctx context.Context, name string, params map[string]any, ec *ExecutionContext) *ToolResult {
	contract, ok := i.registry.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, name)
		i.log.Error().Str("tool", name).Msg("unknown tool")
		ec.AddError(ErrorRecord{Tool: name, Error: err.Error(), Kind: ErrorKindUnknownTool})
		return nil
	}

	req, err := i.buildRequest(contract, params, ec)
	if err != nil {
		i.log.Error().Err(err).Str("tool", name).Msg("invalid tool parameters")
		ec.AddError(ErrorRecord{Tool: name, Error: err.Error(), Kind: KindOf(err)})
		return nil
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if i.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
	}
	if cancel != nil {
		defer cancel()
	}

	i.log.Info().
		Str("tool", name).
		Str("method", req.Method).
		Str("path", req.Path).
		Str("execution_id", ec.ExecutionID).
		Msg("executing tool")

	resp, err := i.transport.Do(callCtx, req)
	if err != nil {
		i.log.Error().Err(err).Str("tool", name).Msg("tool call failed")
		ec.AddError(ErrorRecord{Tool: name, Error: err.Error(), Kind: ErrorKindTransportFailure})
		return nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		i.log.Error().Int("status", resp.StatusCode).Str("tool", name).Msg("tool returned error status")
		ec.AddError(ErrorRecord{
			Tool:    name,
			Error:   fmt.Sprintf("HTTP %d", resp.StatusCode),
			Kind:    ErrorKindTransportFailure,
			Details: truncate(string(resp.Body), 512),
		})
		return nil
	}

	var result ToolResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		i.log.Error().Err(err).Str("tool", name).Msg("decode tool result")
		ec.AddError(ErrorRecord{
			Tool:  name,
			Error: fmt.Sprintf("decode tool result: %v", err),
			Kind:  ErrorKindTransportFailure,
		})
		return nil
	}
	if result.ToolName == "" {
		result.ToolName = name
	}

	ec.AddResult(&result)
	return &result
}

func (i *Invoker) buildRequest(contract ToolContract, params map[string]any, ec *ExecutionContext) (ToolRequest, error) {
	path, rest, err := contract.Expand(params)
	if err != nil {
		return ToolRequest{}, err
	}

	req := ToolRequest{
		Tool:    contract.Name,
		Method:  contract.Method,
		Path:    path,
		Headers: ec.Correlation().Headers(),
	}
	if contract.Method == http.MethodGet {
		req.Query = encodeQuery(rest)
	} else {
		req.Body = rest
	}
	return req, nil
}

func encodeQuery(params map[string]any) url.Values {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case []any:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		default:
			values.Set(k, fmt.Sprint(v))
		}
	}
	return values
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
