package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(append(args, "--no-color"))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{
		"repo_path=./demo",
		"commit_message=fix: a=b",
		"private:=false",
		"page:=2",
		"labels:=[\"bug\",\"ui\"]",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"repo_path":      "./demo",
		"commit_message": "fix: a=b",
		"private":        false,
		"page":           float64(2),
		"labels":         []any{"bug", "ui"},
	}, params)

	for _, bad := range []string{"novalue", "=x", ":=1", "flag:=yes"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseFileSpecs(t *testing.T) {
	specs, skipped := parseFileSpecs([]string{
		"src/main.go: package main",
		"",
		"README.md:# Title: with colon",
		"broken",
	})
	assert.Equal(t, []gitcli.FileSpec{
		{Path: "src/main.go", Content: "package main"},
		{Path: "README.md", Content: "# Title: with colon"},
	}, specs)
	assert.Equal(t, []string{"broken"}, skipped)
}

func TestRenderer_Plain(t *testing.T) {
	r := NewRenderer(false)

	assert.Equal(t, "* main\n  feature\n  remotes/origin/main", r.Branches([]gitcli.Branch{
		{Name: "main", Current: true},
		{Name: "feature"},
		{Name: "origin/main", Remote: true},
	}))
	assert.Equal(t, "No branches found", r.Branches(nil))

	failed := r.Envelope(&toolchain.Envelope{
		Status:      toolchain.StatusFailed,
		Error:       "Could not understand request",
		Suggestions: []string{"add_file", "check_status"},
	})
	assert.Equal(t, "error: Could not understand request\nAvailable tools: add_file, check_status", failed)

	completed := r.Envelope(&toolchain.Envelope{
		Status:      toolchain.StatusCompleted,
		InitialTool: "commit_changes",
		TotalTools:  2,
		ExecutionSummary: &toolchain.Summary{
			TotalToolsExecuted: 2,
			ToolChain:          []string{"commit_changes", "push_changes"},
		},
		FinalResult: &toolchain.ToolResult{Metadata: toolchain.ToolMetadata{Description: "Pushed main"}},
	})
	assert.Contains(t, completed, "commit_changes completed (2 tools)")
	assert.Contains(t, completed, "Chain: commit_changes -> push_changes")
	assert.Contains(t, completed, "Result: Pushed main")

	status, err := toolchain.BuildResult(toolchain.BuildParams{ToolName: "check_status", Description: "Status", Payload: "On branch main\n"})
	require.NoError(t, err)
	listing, err := toolchain.BuildResult(toolchain.BuildParams{ToolName: "list_files", Description: "Listed", Payload: map[string]any{"contents": []string{"go.mod"}}})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(r.Envelope(&toolchain.Envelope{Status: toolchain.StatusCompleted, FinalResult: status}), "Result: Status\nOn branch main"))
	assert.Contains(t, r.Envelope(&toolchain.Envelope{Status: toolchain.StatusCompleted, FinalResult: listing}), "{\n  \"contents\": [\n    \"go.mod\"\n  ]\n}")

	report := r.Report(&toolchain.WorkflowReport{
		Workflow:       "commit_and_push",
		Status:         toolchain.WorkflowStatusFailed,
		FailedStep:     "push_changes",
		CompletedSteps: []string{"commit_changes"},
		Errors:         []toolchain.ErrorRecord{{Tool: "push_changes", Error: "no remote"}},
	})
	assert.Equal(t, "error: workflow commit_and_push failed at push_changes\n  done: commit_changes\n  push_changes: no remote", report)
}

func TestCommands_Files(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "add-files", dir, "-f", "a.txt:alpha", "-f", "docs/b.md:# B", "-f", "junk")
	require.NoError(t, err)
	assert.Contains(t, out, "skipping malformed entry \"junk\"")
	assert.Contains(t, out, "Created 2 files")

	out, err = execute(t, "", "read", dir, "docs/b.md")
	require.NoError(t, err)
	assert.Equal(t, "Contents of 'docs/b.md':\n# B\n", out)

	out, err = execute(t, "", "list", dir, "--pattern", "**/*.md")
	require.NoError(t, err)
	assert.Contains(t, out, "  - docs/b.md")
	assert.NotContains(t, out, "a.txt")

	_, err = execute(t, "", "read", dir, "../outside.txt")
	assert.ErrorIs(t, err, gitcli.ErrPathEscapesRepo)
}

func TestCommands_Setup(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OTHER=kept\n"), 0o600))
	t.Setenv("CREDENTIALS_FILE", path)

	out, err := execute(t, "octocat\nghp_secret\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "GitHub Username: GitHub API Token: ")
	assert.Contains(t, out, "GitHub credentials saved to "+path)

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "octocat", values["GITHUB_USERNAME"])
	assert.Equal(t, "ghp_secret", values["GITHUB_TOKEN"])
	assert.Equal(t, "kept", values["OTHER"])
}

func TestCommands_RunInProcess(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module demo\n"), 0o644))

	out, err := execute(t, "", "run", "list files", "--param", "repo_path="+dir, "--json")
	require.NoError(t, err)

	var envelope toolchain.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, toolchain.StatusCompleted, envelope.Status)
	assert.Equal(t, "list_files", envelope.InitialTool)
	require.NotNil(t, envelope.FinalResult)
	payload, ok := envelope.FinalResult.PayloadObject()
	require.True(t, ok)
	assert.Equal(t, []any{"go.mod"}, payload["contents"])

	_, err = execute(t, "", "run", "make me a sandwich", "--json")
	assert.EqualError(t, err, "Could not understand request")
}

func TestCommands_UnknownWorkflow(t *testing.T) {
	_, err := execute(t, "", "workflow", "does_not_exist")
	require.ErrorIs(t, err, toolchain.ErrUnknownWorkflow)
	assert.Contains(t, err.Error(), "create_and_setup_repo")
}

func TestCommands_WorkflowWarnsAboutUnregisteredTools(t *testing.T) {
	out, err := execute(t, "", "workflow", "code_review")
	require.Error(t, err)
	assert.Contains(t, out, "warning: workflow code_review uses unregistered tools: review_changes, add_comments, approve_pr")
	assert.Contains(t, out, "workflow code_review failed at list_pull_requests")
}

func TestRootHelp_NamesDefaultWorkflows(t *testing.T) {
	names := toolchain.WorkflowNames(toolchain.DefaultWorkflows())
	for _, line := range strings.Split(rootCmd.Long, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "gitauto" && fields[1] == "workflow" {
			assert.Contains(t, names, fields[2])
		}
	}
}

func TestCommands_Tools(t *testing.T) {
	out, err := execute(t, "", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered tools (24)")
	assert.Contains(t, out, "check_status")
	assert.Contains(t, out, "Workflows: ")
}
