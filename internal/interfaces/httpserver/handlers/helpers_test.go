package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/domain/intent"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockGit is a mock implementation of handlers.GitOperations.
type MockGit struct {
	InitFunc             func(ctx context.Context, path string) error
	EnsureMainBranchFunc func(ctx context.Context, path string) error
	CreateBranchFunc     func(ctx context.Context, path, branch string) error
	AddFileFunc          func(repoPath, fileName, content string) (string, error)
	AddFilesFunc         func(repoPath string, files []gitcli.FileSpec) *gitcli.AddFilesResult
	StageAllFunc         func(ctx context.Context, path string, includeUntracked bool) (*gitcli.StageResult, error)
	CommitFunc           func(ctx context.Context, path, message string) (bool, error)
	PushFunc             func(ctx context.Context, path, remote, branch string) (string, error)
	MergeFunc            func(ctx context.Context, path, source, target string) (bool, error)
	CloneFunc            func(ctx context.Context, repoURL, localPath string) (*gitcli.CloneResult, error)
	StatusFunc           func(ctx context.Context, path string) (string, error)
}

func (m *MockGit) Init(ctx context.Context, path string) error {
	if m.InitFunc != nil {
		return m.InitFunc(ctx, path)
	}
	return nil
}

func (m *MockGit) EnsureMainBranch(ctx context.Context, path string) error {
	if m.EnsureMainBranchFunc != nil {
		return m.EnsureMainBranchFunc(ctx, path)
	}
	return nil
}

func (m *MockGit) CreateBranch(ctx context.Context, path, branch string) error {
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(ctx, path, branch)
	}
	return nil
}

func (m *MockGit) AddFile(repoPath, fileName, content string) (string, error) {
	if m.AddFileFunc != nil {
		return m.AddFileFunc(repoPath, fileName, content)
	}
	return repoPath + "/" + fileName, nil
}

func (m *MockGit) AddFiles(repoPath string, files []gitcli.FileSpec) *gitcli.AddFilesResult {
	if m.AddFilesFunc != nil {
		return m.AddFilesFunc(repoPath, files)
	}
	return &gitcli.AddFilesResult{Success: true, CreatedFiles: []string{}, Errors: []string{}}
}

func (m *MockGit) StageAll(ctx context.Context, path string, includeUntracked bool) (*gitcli.StageResult, error) {
	if m.StageAllFunc != nil {
		return m.StageAllFunc(ctx, path, includeUntracked)
	}
	return &gitcli.StageResult{StagedFiles: []gitcli.StagedFile{}}, nil
}

func (m *MockGit) Commit(ctx context.Context, path, message string) (bool, error) {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, path, message)
	}
	return true, nil
}

func (m *MockGit) Push(ctx context.Context, path, remote, branch string) (string, error) {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, path, remote, branch)
	}
	return "", nil
}

func (m *MockGit) Merge(ctx context.Context, path, source, target string) (bool, error) {
	if m.MergeFunc != nil {
		return m.MergeFunc(ctx, path, source, target)
	}
	return true, nil
}

func (m *MockGit) Clone(ctx context.Context, repoURL, localPath string) (*gitcli.CloneResult, error) {
	if m.CloneFunc != nil {
		return m.CloneFunc(ctx, repoURL, localPath)
	}
	return &gitcli.CloneResult{RepoURL: repoURL, LocalPath: localPath, Branch: "main"}, nil
}

func (m *MockGit) Status(ctx context.Context, path string) (string, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, path)
	}
	return "On branch main\nnothing to commit, working tree clean", nil
}

// MockDownloader is a mock implementation of handlers.GitignoreDownloader.
type MockDownloader struct {
	DownloadFunc func(ctx context.Context, repoPath, projectType string) (string, string, error)
}

func (m *MockDownloader) Download(ctx context.Context, repoPath, projectType string) (string, string, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, repoPath, projectType)
	}
	return repoPath + "/.gitignore", "Go", nil
}

// MockGitHub is a mock implementation of handlers.GitHubAPI.
type MockGitHub struct {
	CreateRepositoryFunc  func(ctx context.Context, name string, private bool, description string) (*github.Repository, error)
	ListRepositoriesFunc  func(ctx context.Context, page, perPage int) ([]github.Repository, error)
	ListBranchesFunc      func(ctx context.Context, repo string) ([]github.Branch, error)
	CreateBranchFunc      func(ctx context.Context, repo, branch, from string) (*github.BranchRef, error)
	CreateIssueFunc       func(ctx context.Context, repo string, req github.CreateIssueRequest) (*github.Issue, error)
	CreatePullRequestFunc func(ctx context.Context, repo string, req github.CreatePullRequestRequest) (*github.PullRequest, error)
	ListPullRequestsFunc  func(ctx context.Context, repo, state string) ([]github.PullRequest, error)
}

func (m *MockGitHub) CreateRepository(ctx context.Context, name string, private bool, description string) (*github.Repository, error) {
	if m.CreateRepositoryFunc != nil {
		return m.CreateRepositoryFunc(ctx, name, private, description)
	}
	return &github.Repository{Name: name, Private: private}, nil
}

func (m *MockGitHub) ListRepositories(ctx context.Context, page, perPage int) ([]github.Repository, error) {
	if m.ListRepositoriesFunc != nil {
		return m.ListRepositoriesFunc(ctx, page, perPage)
	}
	return []github.Repository{}, nil
}

func (m *MockGitHub) ListBranches(ctx context.Context, repo string) ([]github.Branch, error) {
	if m.ListBranchesFunc != nil {
		return m.ListBranchesFunc(ctx, repo)
	}
	return []github.Branch{}, nil
}

func (m *MockGitHub) CreateBranch(ctx context.Context, repo, branch, from string) (*github.BranchRef, error) {
	if m.CreateBranchFunc != nil {
		return m.CreateBranchFunc(ctx, repo, branch, from)
	}
	return &github.BranchRef{Name: branch}, nil
}

func (m *MockGitHub) CreateIssue(ctx context.Context, repo string, req github.CreateIssueRequest) (*github.Issue, error) {
	if m.CreateIssueFunc != nil {
		return m.CreateIssueFunc(ctx, repo, req)
	}
	return &github.Issue{Number: 1, Title: req.Title}, nil
}

func (m *MockGitHub) CreatePullRequest(ctx context.Context, repo string, req github.CreatePullRequestRequest) (*github.PullRequest, error) {
	if m.CreatePullRequestFunc != nil {
		return m.CreatePullRequestFunc(ctx, repo, req)
	}
	return &github.PullRequest{Number: 1, Title: req.Title}, nil
}

func (m *MockGitHub) ListPullRequests(ctx context.Context, repo, state string) ([]github.PullRequest, error) {
	if m.ListPullRequestsFunc != nil {
		return m.ListPullRequestsFunc(ctx, repo, state)
	}
	return []github.PullRequest{}, nil
}

// MockCredentialStore is an in-memory handlers.CredentialStore.
type MockCredentialStore struct {
	Creds   credentials.Credentials
	SaveErr error
	Saved   int
}

func (m *MockCredentialStore) Get() credentials.Credentials { return m.Creds }

func (m *MockCredentialStore) Save(username, token string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved++
	m.Creds = credentials.Credentials{Username: username, Token: token}
	return nil
}

func (m *MockCredentialStore) Path() string { return "/tmp/test.env" }

type fixture struct {
	git    *MockGit
	dl     *MockDownloader
	api    *MockGitHub
	store  *MockCredentialStore
	tools  *handlers.Provider
	engine *gin.Engine
}

func newFixture() *fixture {
	f := &fixture{
		git:   &MockGit{},
		dl:    &MockDownloader{},
		api:   &MockGitHub{},
		store: &MockCredentialStore{Creds: credentials.Credentials{Username: "octocat", Token: "ghp_test"}},
	}
	f.tools = handlers.NewToolsProvider(f.git, f.dl, f.api, f.store, toolchain.DefaultRegistry(),
		intent.NewKeywordClassifier(), zerolog.Nop())
	f.engine = httpserver.NewToolsEngine(f.tools, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, f.engine, method, path, body)
}

func serve(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) (*toolchain.ToolResult, map[string]any) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result toolchain.ToolResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	payload, _ := result.PayloadObject()
	return &result, payload
}

func hints(result *toolchain.ToolResult) []string {
	out := make([]string, 0, len(result.Metadata.SuggestedTools))
	for _, s := range result.Metadata.SuggestedTools {
		out = append(out, s.ToolNameHint)
	}
	return out
}

func serveWithHeaders(t *testing.T, f *fixture, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}
