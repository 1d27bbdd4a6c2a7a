package transport

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
	"github.com/janhq/git-automation-server/internal/infrastructure/observability"
)

// Traced wraps a transport with a client span and tool call metrics.
type Traced struct {
	next toolchain.Transport
}

// NewTraced wraps next.
func NewTraced(next toolchain.Transport) *Traced {
	return &Traced{next: next}
}

// Do propagates the span context in the request headers and records the
// call under the tool name and response status, or "error".
func (t *Traced) Do(ctx context.Context, req toolchain.ToolRequest) (*toolchain.ToolResponse, error) {
	conversationID := req.Headers.Get(toolchain.HeaderConversationID)
	ctx, span := observability.StartToolSpan(ctx, req.Tool, req.Method, req.Path, conversationID)
	defer span.End()

	req.Headers = req.Headers.Clone()
	if req.Headers == nil {
		req.Headers = make(map[string][]string)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Headers))

	start := time.Now()
	resp, err := t.next.Do(ctx, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordToolCall(req.Tool, "error", elapsed)
		observability.RecordError(span, err, "high")
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	metrics.RecordToolCall(req.Tool, strconv.Itoa(resp.StatusCode), elapsed)
	return resp, nil
}
