package toolchain_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

// fakeExecutor records calls and returns canned results per tool name.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   []string
	params  []map[string]any
	results map[string]func(params map[string]any) *toolchain.ToolResult
	fail    map[string]bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		results: map[string]func(map[string]any) *toolchain.ToolResult{},
		fail:    map[string]bool{},
	}
}

func (f *fakeExecutor) on(name string, build func(params map[string]any) *toolchain.ToolResult) {
	f.results[name] = build
}

func (f *fakeExecutor) Execute(_ context.Context, name string, params map[string]any, ec *toolchain.ExecutionContext) *toolchain.ToolResult {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.params = append(f.params, params)
	build, ok := f.results[name]
	failing := f.fail[name]
	f.mu.Unlock()

	if failing || !ok {
		ec.AddError(toolchain.ErrorRecord{Tool: name, Error: "HTTP 500", Kind: toolchain.ErrorKindTransportFailure})
		return nil
	}
	result := build(params)
	ec.AddResult(result)
	return result
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func mustResult(t testing.TB, name string, rpp bool, payload any, suggestions ...toolchain.SuggestedToolReference) *toolchain.ToolResult {
	t.Helper()
	result, err := toolchain.BuildResult(toolchain.BuildParams{
		ToolName:               name,
		Payload:                payload,
		Intent:                 name,
		Description:            "test result for " + name,
		RequiresPostProcessing: rpp,
		SuggestedTools:         suggestions,
	})
	require.NoError(t, err)
	return result
}

func hint(t toolchain.ToolType, name string) toolchain.SuggestedToolReference {
	return toolchain.SuggestedToolReference{ToolType: t, ToolNameHint: name}
}
