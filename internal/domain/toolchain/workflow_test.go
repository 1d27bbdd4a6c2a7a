package toolchain_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

func threeStepWorkflow(bRequired bool) toolchain.Workflow {
	return toolchain.Workflow{
		Name: "abc",
		Steps: []toolchain.WorkflowStep{
			{Tool: "A", Required: true},
			{Tool: "B", Required: bRequired, Params: map[string]any{"override": "step"}},
			{Tool: "C", Required: true},
		},
	}
}

func TestExecuteWorkflow_RequiredStepFails(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("A", func(map[string]any) *toolchain.ToolResult { return mustResult(t, "A", false, nil) })
	exec.fail["B"] = true
	exec.on("C", func(map[string]any) *toolchain.ToolResult { return mustResult(t, "C", false, nil) })

	observer := &countingObserver{}
	engine := toolchain.NewWorkflowEngine(exec, []toolchain.Workflow{threeStepWorkflow(true)}, zerolog.Nop()).WithObserver(observer)
	ec := toolchain.NewExecutionContext("c", "u", "s")

	report, err := engine.ExecuteWorkflow(context.Background(), "abc", nil, ec)
	require.NoError(t, err)

	assert.Equal(t, toolchain.WorkflowStatusFailed, report.Status)
	assert.Equal(t, "B", report.FailedStep)
	assert.Equal(t, []string{"A"}, report.CompletedSteps)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, []string{"A", "B"}, exec.Calls())
	assert.Equal(t, "failed", observer.workflows["abc"])
}

func TestExecuteWorkflow_OptionalStepFails(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("A", func(map[string]any) *toolchain.ToolResult { return mustResult(t, "A", false, nil) })
	exec.fail["B"] = true
	exec.on("C", func(map[string]any) *toolchain.ToolResult { return mustResult(t, "C", false, nil) })

	engine := toolchain.NewWorkflowEngine(exec, []toolchain.Workflow{threeStepWorkflow(false)}, zerolog.Nop())
	ec := toolchain.NewExecutionContext("c", "u", "s")

	report, err := engine.ExecuteWorkflow(context.Background(), "abc", nil, ec)
	require.NoError(t, err)

	assert.Equal(t, toolchain.WorkflowStatusCompleted, report.Status)
	assert.Equal(t, 2, report.StepsExecuted)
	require.Len(t, report.Results, 2)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.Equal(t, []string{"A", "C"}, report.Summary.ToolChain)
	errs := ec.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "B", errs[0].Tool)
}

func TestWorkflowReport_JSONShape(t *testing.T) {
	single := toolchain.Workflow{Name: "wf", Steps: []toolchain.WorkflowStep{{Tool: "A", Required: true}}}
	optional := toolchain.Workflow{Name: "opt", Steps: []toolchain.WorkflowStep{{Tool: "A"}, {Tool: "B"}}}
	exec := newFakeExecutor()
	exec.fail["A"] = true
	exec.fail["B"] = true
	engine := toolchain.NewWorkflowEngine(exec, []toolchain.Workflow{single, optional}, zerolog.Nop())

	decode := func(t *testing.T, report *toolchain.WorkflowReport) map[string]any {
		t.Helper()
		raw, err := json.Marshal(report)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}

	t.Run("failed at first step", func(t *testing.T) {
		report, err := engine.ExecuteWorkflow(context.Background(), "wf", nil, toolchain.NewExecutionContext("c", "u", "s"))
		require.NoError(t, err)
		out := decode(t, report)
		assert.Equal(t, "failed", out["status"])
		assert.Equal(t, "A", out["failed_step"])
		assert.Equal(t, []any{}, out["completed_steps"])
		assert.Len(t, out["errors"], 1)
		assert.NotContains(t, out, "results")
		assert.NotContains(t, out, "steps_executed")
	})

	t.Run("completed with every optional step failing", func(t *testing.T) {
		report, err := engine.ExecuteWorkflow(context.Background(), "opt", nil, toolchain.NewExecutionContext("c", "u", "s"))
		require.NoError(t, err)
		out := decode(t, report)
		assert.Equal(t, "completed", out["status"])
		assert.Equal(t, float64(0), out["steps_executed"])
		assert.Equal(t, []any{}, out["results"])
		assert.Contains(t, out, "summary")
		assert.NotContains(t, out, "failed_step")
		assert.NotContains(t, out, "completed_steps")

		var back toolchain.WorkflowReport
		raw, err := json.Marshal(report)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, toolchain.WorkflowStatusCompleted, back.Status)
		require.NotNil(t, back.Summary)
		assert.Equal(t, 2, back.Summary.Errors)
	})
}

func TestExecuteWorkflow_ThreadsParams(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("A", func(map[string]any) *toolchain.ToolResult {
		return mustResult(t, "A", false, map[string]any{"repo_path": "/created", "override": "from-a"})
	})
	exec.on("B", func(map[string]any) *toolchain.ToolResult {
		return mustResult(t, "B", false, []string{"not", "an", "object"})
	})
	exec.on("C", func(map[string]any) *toolchain.ToolResult { return mustResult(t, "C", false, nil) })

	engine := toolchain.NewWorkflowEngine(exec, []toolchain.Workflow{threeStepWorkflow(true)}, zerolog.Nop())
	report, err := engine.ExecuteWorkflow(context.Background(), "abc", map[string]any{"repo_name": "demo"}, toolchain.NewExecutionContext("c", "u", "s"))
	require.NoError(t, err)
	assert.Equal(t, toolchain.WorkflowStatusCompleted, report.Status)

	require.Len(t, exec.params, 3)
	assert.Equal(t, map[string]any{"repo_name": "demo"}, exec.params[0])
	assert.Equal(t, "step", exec.params[1]["override"], "step params win")
	assert.Equal(t, "/created", exec.params[1]["repo_path"])
	assert.Equal(t, "from-a", exec.params[2]["override"], "step overrides do not leak forward")
	assert.Equal(t, "demo", exec.params[2]["repo_name"])
}

func TestExecuteWorkflow_Unknown(t *testing.T) {
	engine := toolchain.NewWorkflowEngine(newFakeExecutor(), toolchain.DefaultWorkflows(), zerolog.Nop())
	_, err := engine.ExecuteWorkflow(context.Background(), "deploy_to_mars", nil, toolchain.NewExecutionContext("c", "u", "s"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolchain.ErrUnknownWorkflow))
}

func TestDefaultWorkflows(t *testing.T) {
	engine := toolchain.NewWorkflowEngine(newFakeExecutor(), toolchain.DefaultWorkflows(), zerolog.Nop())
	names := []string{}
	for _, wf := range engine.Workflows() {
		names = append(names, wf.Name)
	}
	assert.Equal(t, []string{"create_and_setup_repo", "feature_development", "code_review"}, names)

	setup, ok := engine.Lookup("create_and_setup_repo")
	require.True(t, ok)
	assert.Len(t, setup.Steps, 6)
	assert.False(t, setup.Steps[2].Required)
	assert.Equal(t, "README.md", setup.Steps[3].Params["file_name"])

	missing := toolchain.UnregisteredSteps(toolchain.DefaultWorkflows(), toolchain.DefaultRegistry())
	assert.Equal(t, []string{"review_changes", "add_comments", "approve_pr"}, missing["code_review"])
	assert.NotContains(t, missing, "feature_development")
}

func TestLoadWorkflows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	content := `workflows:
  - name: hotfix
    description: Patch and publish
    steps:
      - tool: create_branch
        params:
          branch_name: hotfix/urgent
      - tool: commit_changes
      - tool: push_changes
        required: false
  - name: feature_development
    steps:
      - tool: create_branch
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := toolchain.LoadWorkflows(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "hotfix", loaded[0].Name)
	assert.True(t, loaded[0].Steps[0].Required, "required defaults to true")
	assert.Equal(t, "hotfix/urgent", loaded[0].Steps[0].Params["branch_name"])
	assert.False(t, loaded[0].Steps[2].Required)

	merged := toolchain.MergeWorkflows(toolchain.DefaultWorkflows(), loaded)
	assert.Equal(t, []string{"code_review", "create_and_setup_repo", "feature_development", "hotfix"}, toolchain.WorkflowNames(merged))
	assert.Len(t, merged[1].Steps, 1, "override replaces feature_development in place")

	_, err = toolchain.ParseWorkflows([]byte("workflows:\n  - name: empty\n"))
	assert.Error(t, err)
	_, err = toolchain.LoadWorkflows(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
