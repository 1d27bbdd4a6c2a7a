package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Git automation metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations made by the orchestrator",
		},
		[]string{"tool_name", "status"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool_name"},
	)

	ChainIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "chain_iterations",
			Help:      "Iterations performed by a tool chain",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
		},
		[]string{"strategy"},
	)

	WorkflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "workflow_runs_total",
			Help:      "Workflow executions by outcome",
		},
		[]string{"workflow", "status"},
	)

	GitCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "git_commands_total",
			Help:      "git subprocess invocations",
		},
		[]string{"command", "status"},
	)

	GitHubRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "github_requests_total",
			Help:      "Requests sent to the GitHub REST API",
		},
		[]string{"method", "status"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "cache_lookups_total",
			Help:      "GitHub response cache lookups",
		},
		[]string{"result"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "git_automation",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordToolCall records a tool invocation
func RecordToolCall(toolName, status string, durationSec float64) {
	ToolCallsTotal.WithLabelValues(toolName, status).Inc()
	ToolDuration.WithLabelValues(toolName).Observe(durationSec)
}

// RecordGitCommand records a git subprocess
func RecordGitCommand(command, status string) {
	GitCommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordGitHubRequest records a GitHub API call
func RecordGitHubRequest(method, status string) {
	GitHubRequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited counts a rejected request
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// Observer feeds chain and workflow outcomes into Prometheus.
type Observer struct{}

// ChainCompleted records the iterations of a finished chain.
func (Observer) ChainCompleted(strategy string, iterations int) {
	ChainIterations.WithLabelValues(strategy).Observe(float64(iterations))
}

// WorkflowCompleted records a finished workflow run.
func (Observer) WorkflowCompleted(name, status string) {
	WorkflowRunsTotal.WithLabelValues(name, status).Inc()
}
