package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "git-automation-server"
)

// GetTracer returns the tracer for the git automation service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ToolAttributes returns common attributes for tool call spans.
func ToolAttributes(toolName, method, path, conversationID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tool.name", toolName),
		attribute.String("tool.method", method),
		attribute.String("tool.path", path),
		attribute.String("tool.conversation_id", conversationID),
	}
}

// StartToolSpan starts a client span around one tool call.
func StartToolSpan(ctx context.Context, toolName, method, path, conversationID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "tool.call."+toolName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(ToolAttributes(toolName, method, path, conversationID)...),
	)
	return ctx, span
}

// StartOrchestrationSpan starts a span for an orchestrated request or workflow.
func StartOrchestrationSpan(ctx context.Context, operation, name, userID string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "orchestration."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("orchestration.name", name),
			attribute.String("orchestration.user_id", userID),
		),
	)
	return ctx, span
}

// StartGitSpan starts a span for a git subprocess.
func StartGitSpan(ctx context.Context, command, repoPath string) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "git."+command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("git.command", command),
			attribute.String("git.repo_path", repoPath),
		),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error, severity string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.severity", severity))
}

// AddChainEvent marks the outcome of a chain on the current span.
func AddChainEvent(span trace.Span, strategy string, totalTools int) {
	span.AddEvent("chain.completed",
		trace.WithAttributes(
			attribute.String("chain.strategy", strategy),
			attribute.Int("chain.total_tools", totalTools),
		),
	)
}
