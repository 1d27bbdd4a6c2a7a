package gitcli_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
)

type fakeResponse struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner answers git invocations keyed by their joined arguments.
type fakeRunner struct {
	calls     []string
	responses map[string]fakeResponse
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string]fakeResponse{}}
}

func (f *fakeRunner) on(args string, resp fakeResponse) {
	f.responses[args] = resp
}

func (f *fakeRunner) RunInDir(_ context.Context, _ string, _ string, args ...string) ([]byte, []byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	resp := f.responses[key]
	return []byte(resp.stdout), []byte(resp.stderr), resp.err
}

func TestCommit_NothingToCommit(t *testing.T) {
	runner := newFakeRunner()
	runner.on("status --porcelain", fakeResponse{stdout: "\n"})
	client := gitcli.New(runner, zerolog.Nop())

	committed, err := client.Commit(context.Background(), "/repo", "msg")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, []string{"status --porcelain"}, runner.calls)
}

func TestCommit_StagesEverything(t *testing.T) {
	runner := newFakeRunner()
	runner.on("status --porcelain", fakeResponse{stdout: "?? a.txt\n"})
	client := gitcli.New(runner, zerolog.Nop())

	committed, err := client.Commit(context.Background(), "/repo", "Add a")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, []string{"status --porcelain", "add -A", "commit -m Add a"}, runner.calls)
}

func TestMerge_ConflictIsAborted(t *testing.T) {
	runner := newFakeRunner()
	runner.on("symbolic-ref --short HEAD", fakeResponse{stdout: "feature\n"})
	runner.on("merge feature", fakeResponse{
		stdout: "CONFLICT (content): Merge conflict in a.txt\n",
		err:    errors.New("exit status 1"),
	})
	client := gitcli.New(runner, zerolog.Nop())

	merged, err := client.Merge(context.Background(), "/repo", "feature", "")
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, []string{
		"symbolic-ref --short HEAD",
		"checkout main",
		"merge feature",
		"merge --abort",
		"checkout feature",
	}, runner.calls)
}

func TestMerge_OtherFailuresPropagate(t *testing.T) {
	runner := newFakeRunner()
	runner.on("symbolic-ref --short HEAD", fakeResponse{stdout: "main\n"})
	runner.on("merge ghost", fakeResponse{
		stderr: "merge: ghost - not something we can merge",
		err:    errors.New("exit status 1"),
	})
	client := gitcli.New(runner, zerolog.Nop())

	_, err := client.Merge(context.Background(), "/repo", "ghost", "main")
	var cmdErr *gitcli.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, []string{"merge", "ghost"}, cmdErr.Args)
	assert.Contains(t, cmdErr.Error(), "not something we can merge")
}

func TestCreateBranch_AlreadyExists(t *testing.T) {
	runner := newFakeRunner()
	runner.on("checkout -b dev", fakeResponse{
		stderr: "fatal: a branch named 'dev' already exists",
		err:    errors.New("exit status 128"),
	})
	client := gitcli.New(runner, zerolog.Nop())

	err := client.CreateBranch(context.Background(), "/repo", "dev")
	assert.ErrorIs(t, err, gitcli.ErrBranchExists)
}

func TestBranches_SkipsRemoteHead(t *testing.T) {
	runner := newFakeRunner()
	runner.on("branch --format=%(HEAD) %(refname) --all", fakeResponse{stdout: strings.Join([]string{
		"  refs/heads/dev",
		"* refs/heads/main",
		"  refs/remotes/origin/HEAD",
		"  refs/remotes/origin/main",
		"",
	}, "\n")})
	client := gitcli.New(runner, zerolog.Nop())

	branches, err := client.Branches(context.Background(), "/repo", true)
	require.NoError(t, err)
	assert.Equal(t, []gitcli.Branch{
		{Name: "dev"},
		{Name: "main", Current: true},
		{Name: "origin/main", Remote: true},
	}, branches)
}

func TestStageAll_ReportsWorkingTreeChanges(t *testing.T) {
	runner := newFakeRunner()
	runner.on("status --porcelain=v1 -z", fakeResponse{
		stdout: " M a.go\x00?? new.txt\x00 D gone.txt\x00R  renamed.txt\x00old.txt\x00",
	})
	client := gitcli.New(runner, zerolog.Nop())

	result, err := client.StageAll(context.Background(), "/repo", true)
	require.NoError(t, err)
	assert.Equal(t, []gitcli.StagedFile{
		{FilePath: "a.go", Status: "modified"},
		{FilePath: "new.txt", Status: "new"},
		{FilePath: "gone.txt", Status: "deleted"},
	}, result.StagedFiles)
	assert.Equal(t, "Staged 3 files", result.Message)
	assert.Contains(t, runner.calls, "add -A")

	runner.calls = nil
	result, err = client.StageAll(context.Background(), "/repo", false)
	require.NoError(t, err)
	assert.Len(t, result.StagedFiles, 2)
	assert.Contains(t, runner.calls, "add -u")
}

func TestPush_DefaultsToCurrentBranch(t *testing.T) {
	runner := newFakeRunner()
	runner.on("symbolic-ref --short HEAD", fakeResponse{stdout: "feature/x\n"})
	client := gitcli.New(runner, zerolog.Nop())

	branch, err := client.Push(context.Background(), "/repo", "", "")
	require.NoError(t, err)
	assert.Equal(t, "feature/x", branch)
	assert.Equal(t, "push origin feature/x", runner.calls[len(runner.calls)-1])
}

func TestSetRemote_UpdatesExisting(t *testing.T) {
	runner := newFakeRunner()
	runner.on("remote add origin https://example.com/r.git", fakeResponse{
		stderr: "error: remote origin already exists.",
		err:    errors.New("exit status 3"),
	})
	client := gitcli.New(runner, zerolog.Nop())

	require.NoError(t, client.SetRemote(context.Background(), "/repo", "", "https://example.com/r.git"))
	assert.Equal(t, "remote set-url origin https://example.com/r.git", runner.calls[1])
}

func TestExpandRepoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"octo/demo", "https://github.com/octo/demo.git"},
		{"octo/demo.git", "https://github.com/octo/demo.git"},
		{"https://gitlab.com/a/b.git", "https://gitlab.com/a/b.git"},
		{"git@github.com:a/b.git", "git@github.com:a/b.git"},
		{"./local/repo", "./local/repo"},
		{"/srv/git/repo", "/srv/git/repo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, gitcli.ExpandRepoURL(tt.in))
		})
	}
}

func TestClone_RejectsExistingPath(t *testing.T) {
	runner := newFakeRunner()
	client := gitcli.New(runner, zerolog.Nop())

	_, err := client.Clone(context.Background(), "octo/demo", t.TempDir())
	assert.ErrorIs(t, err, gitcli.ErrPathExists)
	assert.Empty(t, runner.calls)
}

func TestHasChanges(t *testing.T) {
	assert.True(t, gitcli.HasChanges("Changes not staged for commit:\n\tmodified:   a.go"))
	assert.True(t, gitcli.HasChanges("Changes to be committed:\n\tnew file:   b.go"))
	assert.False(t, gitcli.HasChanges("nothing to commit, working tree clean"))
}

func realGit(t *testing.T) *gitcli.Client {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}
	runner := gitcli.NewOSRunner()
	runner.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
	)
	return gitcli.New(runner, zerolog.Nop())
}

func TestRealRepository_Lifecycle(t *testing.T) {
	client := realGit(t)
	ctx := context.Background()
	repo := filepath.Join(t.TempDir(), "demo")

	require.NoError(t, client.Init(ctx, repo))
	require.NoError(t, client.EnsureMainBranch(ctx, repo))

	branch, err := client.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	readme, err := os.ReadFile(filepath.Join(repo, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# New Repository\n", string(readme))

	committed, err := client.Commit(ctx, repo, "nothing")
	require.NoError(t, err)
	assert.False(t, committed)

	_, err = client.AddFile(repo, "a.txt", "base\n")
	require.NoError(t, err)
	committed, err = client.Commit(ctx, repo, "Add a.txt")
	require.NoError(t, err)
	assert.True(t, committed)

	require.NoError(t, client.CreateBranch(ctx, repo, "feature"))
	assert.ErrorIs(t, client.CreateBranch(ctx, repo, "feature"), gitcli.ErrBranchExists)

	_, err = client.AddFile(repo, "a.txt", "feature\n")
	require.NoError(t, err)
	_, err = client.Commit(ctx, repo, "feature edit")
	require.NoError(t, err)

	require.NoError(t, client.Checkout(ctx, repo, "main"))
	_, err = client.AddFile(repo, "a.txt", "main\n")
	require.NoError(t, err)
	_, err = client.Commit(ctx, repo, "main edit")
	require.NoError(t, err)

	require.NoError(t, client.Checkout(ctx, repo, "feature"))
	merged, err := client.Merge(ctx, repo, "feature", "main")
	require.NoError(t, err)
	assert.False(t, merged, "conflicting edits must not merge")

	branch, err = client.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch, "original branch is restored")

	status, err := client.Status(ctx, repo)
	require.NoError(t, err)
	assert.False(t, gitcli.HasChanges(status))

	branches, err := client.Branches(ctx, repo, false)
	require.NoError(t, err)
	assert.Len(t, branches, 2)
}

func TestRealRepository_RenamesMaster(t *testing.T) {
	client := realGit(t)
	ctx := context.Background()
	repo := t.TempDir()

	runner := gitcli.NewOSRunner()
	runner.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
	_, _, err := runner.RunInDir(ctx, repo, "git", "init", "--initial-branch=master")
	if err != nil {
		t.Skip("git does not support --initial-branch")
	}

	require.NoError(t, client.EnsureMainBranch(ctx, repo))
	branches, err := client.Branches(ctx, repo, false)
	require.NoError(t, err)
	assert.Equal(t, []gitcli.Branch{{Name: "main", Current: true}}, branches)
}
