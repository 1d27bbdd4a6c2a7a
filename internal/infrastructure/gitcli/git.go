// Package gitcli runs git operations against local repositories by shelling out to the git binary.
package gitcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
	"github.com/janhq/git-automation-server/internal/infrastructure/observability"
)

const (
	defaultBranch = "main"
	defaultRemote = "origin"
	readmeFile    = "README.md"
)

// Client wraps git subcommands for a local working tree.
type Client struct {
	runner Runner
	binary string
	log    zerolog.Logger
}

// New creates a git client. A nil runner falls back to OSRunner.
func New(runner Runner, log zerolog.Logger) *Client {
	if runner == nil {
		runner = NewOSRunner()
	}
	return &Client{
		runner: runner,
		binary: "git",
		log:    log.With().Str("component", "gitcli").Logger(),
	}
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	command := "unknown"
	if len(args) > 0 {
		command = args[0]
	}
	ctx, span := observability.StartGitSpan(ctx, command, dir)
	defer span.End()

	stdout, stderr, err := c.runner.RunInDir(ctx, dir, c.binary, args...)
	if err != nil {
		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stdout:   string(stdout),
			Stderr:   string(stderr),
			Err:      err,
		}
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		metrics.RecordGitCommand(command, "error")
		observability.RecordError(span, cmdErr, "medium")
		c.log.Debug().Strs("args", args).Str("dir", dir).Int("exit_code", cmdErr.ExitCode).Msg("git command failed")
		return string(stdout), cmdErr
	}
	metrics.RecordGitCommand(command, "success")
	return string(stdout), nil
}

// Init creates path if needed and runs git init in it.
func (c *Client) Init(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create repository directory: %w", err)
	}
	if _, err := c.run(ctx, path, "init"); err != nil {
		return err
	}
	c.log.Info().Str("repo_path", path).Msg("initialized git repository")
	return nil
}

// HasCommits reports whether HEAD resolves to a commit.
func (c *Client) HasCommits(ctx context.Context, path string) bool {
	_, err := c.run(ctx, path, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// EnsureMainBranch makes sure the repository has a main branch with at least
// one commit and checks it out. A master branch is renamed to main.
func (c *Client) EnsureMainBranch(ctx context.Context, path string) error {
	if !c.HasCommits(ctx, path) {
		readme := filepath.Join(path, readmeFile)
		if _, err := os.Stat(readme); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(readme, []byte("# New Repository\n"), 0o644); err != nil {
				return fmt.Errorf("write README: %w", err)
			}
		}
		if _, err := c.run(ctx, path, "add", readmeFile); err != nil {
			return err
		}
		if _, err := c.run(ctx, path, "commit", "-m", "Initial commit"); err != nil {
			return err
		}
	}

	branches, err := c.Branches(ctx, path, false)
	if err != nil {
		return err
	}
	names := map[string]bool{}
	for _, b := range branches {
		names[b.Name] = true
	}

	switch {
	case names[defaultBranch]:
		_, err = c.run(ctx, path, "checkout", defaultBranch)
	case names["master"]:
		if _, err = c.run(ctx, path, "checkout", "master"); err == nil {
			_, err = c.run(ctx, path, "branch", "-m", "master", defaultBranch)
		}
	default:
		_, err = c.run(ctx, path, "checkout", "-b", defaultBranch)
	}
	if err != nil {
		return err
	}
	c.log.Info().Str("repo_path", path).Msg("ensured main branch")
	return nil
}

// CreateBranch creates branch and checks it out.
func (c *Client) CreateBranch(ctx context.Context, path, branch string) error {
	if _, err := c.run(ctx, path, "checkout", "-b", branch); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Output(), "already exists") {
			return fmt.Errorf("branch '%s': %w", branch, ErrBranchExists)
		}
		return err
	}
	c.log.Info().Str("repo_path", path).Str("branch", branch).Msg("created and checked out branch")
	return nil
}

// Checkout switches to branch. When no local branch exists it tracks the
// branch of the same name on origin.
func (c *Client) Checkout(ctx context.Context, path, branch string) error {
	_, err := c.run(ctx, path, "checkout", branch)
	if err == nil {
		return nil
	}
	if _, remoteErr := c.run(ctx, path, "checkout", "-b", branch, defaultRemote+"/"+branch); remoteErr != nil {
		return err
	}
	return nil
}

// CurrentBranch returns the checked out branch name, including unborn branches.
func (c *Client) CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := c.run(ctx, path, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Branch is one entry of a branch listing.
type Branch struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
	Remote  bool   `json:"remote"`
}

// Branches lists local branches, and remote tracking branches when all is set.
// The symbolic origin/HEAD ref is skipped.
func (c *Client) Branches(ctx context.Context, path string, all bool) ([]Branch, error) {
	args := []string{"branch", "--format=%(HEAD) %(refname)"}
	if all {
		args = append(args, "--all")
	}
	out, err := c.run(ctx, path, args...)
	if err != nil {
		return nil, err
	}
	return parseBranches(out), nil
}

func parseBranches(out string) []Branch {
	branches := []Branch{}
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		current := line[0] == '*'
		ref := strings.TrimSpace(line[2:])
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			branches = append(branches, Branch{Name: strings.TrimPrefix(ref, "refs/heads/"), Current: current})
		case strings.HasPrefix(ref, "refs/remotes/"):
			if strings.HasSuffix(ref, "/HEAD") {
				continue
			}
			branches = append(branches, Branch{Name: strings.TrimPrefix(ref, "refs/remotes/"), Remote: true})
		}
	}
	return branches
}

// Commit stages everything and commits when the tree has changes. It
// reports false when there was nothing to commit.
func (c *Client) Commit(ctx context.Context, path, message string) (bool, error) {
	out, err := c.run(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(out) == "" {
		c.log.Info().Str("repo_path", path).Msg("no changes to commit")
		return false, nil
	}
	if _, err := c.run(ctx, path, "add", "-A"); err != nil {
		return false, err
	}
	if _, err := c.run(ctx, path, "commit", "-m", message); err != nil {
		return false, err
	}
	c.log.Info().Str("repo_path", path).Str("message", message).Msg("committed changes")
	return true, nil
}

// StagedFile is one path picked up by StageAll.
type StagedFile struct {
	FilePath string `json:"file_path"`
	Status   string `json:"status"`
}

// StageResult summarizes StageAll.
type StageResult struct {
	StagedFiles []StagedFile `json:"staged_files"`
	Message     string       `json:"message"`
}

// StageAll stages working tree changes. Untracked files are included when
// includeUntracked is set.
func (c *Client) StageAll(ctx context.Context, path string, includeUntracked bool) (*StageResult, error) {
	out, err := c.run(ctx, path, "status", "--porcelain=v1", "-z")
	if err != nil {
		return nil, err
	}
	files := parsePorcelain(out, includeUntracked)

	addArgs := []string{"add", "-A"}
	if !includeUntracked {
		addArgs = []string{"add", "-u"}
	}
	if _, err := c.run(ctx, path, addArgs...); err != nil {
		return nil, err
	}
	return &StageResult{
		StagedFiles: files,
		Message:     fmt.Sprintf("Staged %d files", len(files)),
	}, nil
}

func parsePorcelain(out string, includeUntracked bool) []StagedFile {
	files := []StagedFile{}
	entries := strings.Split(out, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		code, file := entry[:2], entry[3:]
		if code[0] == 'R' || code[0] == 'C' {
			// the original path follows as its own entry
			i++
		}
		switch {
		case code == "??":
			if includeUntracked {
				files = append(files, StagedFile{FilePath: file, Status: "new"})
			}
		case code[1] == 'M':
			files = append(files, StagedFile{FilePath: file, Status: "modified"})
		case code[1] == 'D':
			files = append(files, StagedFile{FilePath: file, Status: "deleted"})
		}
	}
	return files
}

// Push pushes branch to remote. An empty remote means origin and an empty
// branch means the current one. It returns the branch that was pushed.
func (c *Client) Push(ctx context.Context, path, remote, branch string) (string, error) {
	if remote == "" {
		remote = defaultRemote
	}
	if branch == "" {
		current, err := c.CurrentBranch(ctx, path)
		if err != nil {
			return "", err
		}
		branch = current
	}
	if _, err := c.run(ctx, path, "push", remote, branch); err != nil {
		return "", err
	}
	c.log.Info().Str("repo_path", path).Str("remote", remote).Str("branch", branch).Msg("pushed changes")
	return branch, nil
}

// Merge merges source into target. On a conflict the merge is aborted, the
// previously checked out branch is restored and false is returned.
func (c *Client) Merge(ctx context.Context, path, source, target string) (bool, error) {
	if target == "" {
		target = defaultBranch
	}
	current, err := c.CurrentBranch(ctx, path)
	if err != nil {
		return false, err
	}
	if _, err := c.run(ctx, path, "checkout", target); err != nil {
		return false, err
	}
	_, err = c.run(ctx, path, "merge", source)
	if err == nil {
		c.log.Info().Str("repo_path", path).Str("source", source).Str("target", target).Msg("merged branches")
		return true, nil
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || !strings.Contains(strings.ToLower(cmdErr.Output()), "conflict") {
		return false, err
	}
	c.log.Warn().Str("repo_path", path).Str("source", source).Str("target", target).Msg("merge conflict, aborting")
	if _, abortErr := c.run(ctx, path, "merge", "--abort"); abortErr != nil {
		return false, abortErr
	}
	if _, checkoutErr := c.run(ctx, path, "checkout", current); checkoutErr != nil {
		return false, checkoutErr
	}
	return false, nil
}

// Status returns the human readable git status output.
func (c *Client) Status(ctx context.Context, path string) (string, error) {
	return c.run(ctx, path, "status")
}

// HasChanges reports whether git status output mentions modified or new files.
func HasChanges(status string) bool {
	return strings.Contains(status, "modified:") || strings.Contains(status, "new file:")
}

// SetRemote adds name pointing at url, or updates it when it already exists.
func (c *Client) SetRemote(ctx context.Context, path, name, url string) error {
	if name == "" {
		name = defaultRemote
	}
	if _, err := c.run(ctx, path, "remote", "add", name, url); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Output(), "already exists") {
			_, err = c.run(ctx, path, "remote", "set-url", name, url)
			return err
		}
		return err
	}
	return nil
}

// CloneResult describes a finished clone.
type CloneResult struct {
	RepoURL   string `json:"repo_url"`
	LocalPath string `json:"local_path"`
	Branch    string `json:"branch"`
}

// ExpandRepoURL turns an owner/repo shorthand into a GitHub clone URL.
func ExpandRepoURL(repoURL string) string {
	if strings.Contains(repoURL, "://") || strings.HasPrefix(repoURL, "git@") {
		return repoURL
	}
	if strings.Count(repoURL, "/") == 1 && !strings.HasPrefix(repoURL, ".") && !strings.HasPrefix(repoURL, "/") {
		return "https://github.com/" + strings.TrimSuffix(repoURL, ".git") + ".git"
	}
	return repoURL
}

// Clone clones repoURL into localPath, which must not exist yet.
func (c *Client) Clone(ctx context.Context, repoURL, localPath string) (*CloneResult, error) {
	localPath = filepath.Clean(localPath)
	if _, err := os.Stat(localPath); err == nil {
		return nil, fmt.Errorf("'%s': %w", localPath, ErrPathExists)
	}
	url := ExpandRepoURL(repoURL)

	c.log.Info().Str("repo_url", url).Str("local_path", localPath).Msg("cloning repository")
	if _, err := c.run(ctx, "", "clone", url, localPath); err != nil {
		return nil, err
	}
	branch, err := c.CurrentBranch(ctx, localPath)
	if err != nil {
		return nil, err
	}
	return &CloneResult{RepoURL: url, LocalPath: localPath, Branch: branch}, nil
}
