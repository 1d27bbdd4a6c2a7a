package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/requests"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/responses"
)

// GitHubAPI is the subset of the GitHub client used by the github endpoints.
type GitHubAPI interface {
	CreateRepository(ctx context.Context, name string, private bool, description string) (*github.Repository, error)
	ListRepositories(ctx context.Context, page, perPage int) ([]github.Repository, error)
	ListBranches(ctx context.Context, repo string) ([]github.Branch, error)
	CreateBranch(ctx context.Context, repo, branch, from string) (*github.BranchRef, error)
	CreateIssue(ctx context.Context, repo string, req github.CreateIssueRequest) (*github.Issue, error)
	CreatePullRequest(ctx context.Context, repo string, req github.CreatePullRequestRequest) (*github.PullRequest, error)
	ListPullRequests(ctx context.Context, repo, state string) ([]github.PullRequest, error)
}

// GitHubHandler exposes the GitHub REST tools.
type GitHubHandler struct {
	api GitHubAPI
	log zerolog.Logger
}

// NewGitHubHandler constructs the handler.
func NewGitHubHandler(api GitHubAPI, log zerolog.Logger) *GitHubHandler {
	return &GitHubHandler{
		api: api,
		log: log.With().Str("handler", "github").Logger(),
	}
}

// CreateRepository handles POST /github/create-repo
// @Summary Create a GitHub repository
// @Tags GitHub
// @Accept json
// @Produce json
// @Param request body requests.RepoCreate true "Repository"
// @Success 200 {object} toolchain.ToolResult
// @Failure 401 {object} responses.ErrorResponse
// @Router /github/create-repo [post]
func (h *GitHubHandler) CreateRepository(c *gin.Context) {
	var req requests.RepoCreate
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	repo, err := h.api.CreateRepository(c.Request.Context(), req.RepoName, req.IsPrivate(), req.Description)
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", req.RepoName).Msg("create repository")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:    "create_repository",
		Payload:     repo,
		Intent:      "Create GitHub repository",
		Description: fmt.Sprintf("Repository '%s' created on GitHub", req.RepoName),
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeExecutor, "clone_repository", "Clone the repository locally", map[string]any{
				"repo_url":   repo.CloneURL,
				"local_path": "./" + req.RepoName,
			}),
		},
	})
}

// ListRepositories handles GET /github/list-repos
func (h *GitHubHandler) ListRepositories(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		badRequest(c, err)
		return
	}
	perPage, err := intQuery(c, "per_page", 30)
	if err != nil {
		badRequest(c, err)
		return
	}
	repos, err := h.api.ListRepositories(c.Request.Context(), page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("list repositories")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:       "list_repositories",
		Payload:        gin.H{"repositories": repos},
		Intent:         "List repositories",
		Description:    fmt.Sprintf("Retrieved %d repositories", len(repos)),
		ContentSummary: &toolchain.ContentSummary{Fields: []string{"name", "description", "private", "html_url"}, RecordCount: len(repos)},
	})
}

// ListBranches handles GET /github/list-branches/:repo_name
func (h *GitHubHandler) ListBranches(c *gin.Context) {
	repoName, ok := requirePathParam(c, "repo_name")
	if !ok {
		return
	}
	branches, err := h.api.ListBranches(c.Request.Context(), repoName)
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", repoName).Msg("list branches")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:       "list_branches",
		Payload:        gin.H{"branches": branches},
		Intent:         "List branches",
		Description:    fmt.Sprintf("Retrieved %d branches for %s", len(branches), repoName),
		ContentSummary: &toolchain.ContentSummary{Fields: []string{"name", "commit"}, RecordCount: len(branches)},
	})
}

// CreateBranch handles POST /github/create-branch
func (h *GitHubHandler) CreateBranch(c *gin.Context) {
	var req requests.GitHubBranchCreate
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	from := req.FromBranch
	if from == "" {
		from = "main"
	}
	ref, err := h.api.CreateBranch(c.Request.Context(), req.RepoName, req.BranchName, from)
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", req.RepoName).Str("branch", req.BranchName).Msg("create remote branch")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:    "create_github_branch",
		Payload:     ref,
		Intent:      "Create GitHub branch",
		Description: fmt.Sprintf("Created branch '%s' on GitHub", req.BranchName),
	})
}

// CreateIssue handles POST /github/create-issue
func (h *GitHubHandler) CreateIssue(c *gin.Context) {
	var req requests.Issue
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	issue, err := h.api.CreateIssue(c.Request.Context(), req.RepoName, github.CreateIssueRequest{
		Title:  req.Title,
		Body:   req.Body,
		Labels: req.Labels,
	})
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", req.RepoName).Msg("create issue")
		responses.HandleError(c, err, "")
		return
	}

	// No tool reads issues back, so the reference carries no hint.
	view := suggest(toolchain.ToolTypeRetriever, "", "View the created issue at "+issue.HTMLURL, map[string]any{
		"repo_name":    req.RepoName,
		"issue_number": issue.Number,
	})
	view.OutputLabel = fmt.Sprintf("Issue #%d", issue.Number)
	respond(c, toolchain.BuildParams{
		ToolName:       "create_issue",
		Payload:        issue,
		Intent:         "Create issue",
		Description:    fmt.Sprintf("Issue #%d created in %s", issue.Number, req.RepoName),
		SuggestedTools: []toolchain.SuggestedToolReference{view},
	})
}

var errPullRequestFields = errors.New("repo_name (or repo_path) and head (or branch_name) are required")

// CreatePullRequest handles POST /github/create-pr. The repository may be
// given by name or by local path, whose base name is used.
func (h *GitHubHandler) CreatePullRequest(c *gin.Context) {
	var req requests.PullRequest
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	repoName := strings.TrimSpace(req.RepoName)
	if repoName == "" && strings.TrimSpace(req.RepoPath) != "" {
		repoName = filepath.Base(filepath.Clean(req.RepoPath))
	}
	head := firstNonEmpty(req.Head, req.BranchName)
	if repoName == "" || head == "" {
		badRequest(c, errPullRequestFields)
		return
	}
	base := firstNonEmpty(req.Base, "main")
	title := firstNonEmpty(req.Title, fmt.Sprintf("Merge %s into %s", head, base))

	pr, err := h.api.CreatePullRequest(c.Request.Context(), repoName, github.CreatePullRequestRequest{
		Title: title,
		Head:  head,
		Base:  base,
		Body:  req.Body,
	})
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", repoName).Str("head", head).Msg("create pull request")
		responses.HandleError(c, err, "")
		return
	}

	view := suggest(toolchain.ToolTypeRetriever, "list_pull_requests", "View the open pull requests", map[string]any{
		"repo_name": repoName,
	})
	view.OutputLabel = fmt.Sprintf("PR #%d", pr.Number)
	respond(c, toolchain.BuildParams{
		ToolName:       "create_pull_request",
		Payload:        pr,
		Intent:         "Create pull request",
		Description:    fmt.Sprintf("Pull request #%d created", pr.Number),
		SuggestedTools: []toolchain.SuggestedToolReference{view},
	})
}

// ListPullRequests handles GET /github/list-prs/:repo_name
func (h *GitHubHandler) ListPullRequests(c *gin.Context) {
	repoName, ok := requirePathParam(c, "repo_name")
	if !ok {
		return
	}
	state := c.DefaultQuery("state", "open")
	prs, err := h.api.ListPullRequests(c.Request.Context(), repoName, state)
	if err != nil {
		h.log.Error().Err(err).Str("repo_name", repoName).Msg("list pull requests")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:       "list_pull_requests",
		Payload:        gin.H{"pull_requests": prs},
		Intent:         "List pull requests",
		Description:    fmt.Sprintf("Retrieved %d %s pull requests for %s", len(prs), state, repoName),
		ContentSummary: &toolchain.ContentSummary{Fields: []string{"number", "title", "state", "user", "created_at"}, RecordCount: len(prs)},
	})
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
