package github

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url"`
	SSHURL        string `json:"ssh_url"`
	DefaultBranch string `json:"default_branch"`
	UpdatedAt     string `json:"updated_at"`
}

type Commit struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

type Branch struct {
	Name      string `json:"name"`
	Commit    Commit `json:"commit"`
	Protected bool   `json:"protected"`
}

type User struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url"`
}

type Label struct {
	Name string `json:"name"`
}

type Issue struct {
	Number  int     `json:"number"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	State   string  `json:"state"`
	HTMLURL string  `json:"html_url"`
	Labels  []Label `json:"labels"`
	User    User    `json:"user"`
}

type PullRequestRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type PullRequest struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	State     string         `json:"state"`
	HTMLURL   string         `json:"html_url"`
	User      User           `json:"user"`
	CreatedAt string         `json:"created_at"`
	Head      PullRequestRef `json:"head"`
	Base      PullRequestRef `json:"base"`
}

// BranchRef is the result of creating a branch through the git refs API.
type BranchRef struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
	URL  string `json:"url"`
}

type gitRef struct {
	Ref    string `json:"ref"`
	URL    string `json:"url"`
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

// CreateRepositoryRequest is the body of POST /user/repos. Repositories are
// created empty because they are initialized locally.
type CreateRepositoryRequest struct {
	Name        string `json:"name"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
	Description string `json:"description,omitempty"`
}

type CreateIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

type CreatePullRequestRequest struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body,omitempty"`
}

// CreateRepository creates a repository for the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, name string, private bool, description string) (*Repository, error) {
	var repo Repository
	req := CreateRepositoryRequest{Name: name, Private: private, AutoInit: false, Description: description}
	if err := c.do(ctx, http.MethodPost, "/user/repos", nil, req, &repo); err != nil {
		return nil, err
	}
	c.log.Info().Str("repo", repo.FullName).Str("url", repo.HTMLURL).Msg("created repository")
	return &repo, nil
}

// ListRepositories lists the user's repositories, most recently updated first.
func (c *Client) ListRepositories(ctx context.Context, page, perPage int) ([]Repository, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 30
	}
	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"per_page":  {strconv.Itoa(perPage)},
		"sort":      {"updated"},
		"direction": {"desc"},
	}
	repos := []Repository{}
	if err := c.do(ctx, http.MethodGet, "/user/repos", query, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepository returns one of the user's repositories.
func (c *Client) GetRepository(ctx context.Context, repo string) (*Repository, error) {
	path, err := c.repoPath(repo)
	if err != nil {
		return nil, err
	}
	var out Repository
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBranches lists the branches of one of the user's repositories.
func (c *Client) ListBranches(ctx context.Context, repo string) ([]Branch, error) {
	path, err := c.repoPath(repo, "branches")
	if err != nil {
		return nil, err
	}
	branches := []Branch{}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// CreateBranch creates branch on GitHub pointing at the head of from.
func (c *Client) CreateBranch(ctx context.Context, repo, branch, from string) (*BranchRef, error) {
	if from == "" {
		from = "main"
	}
	sourcePath, err := c.repoPath(repo, "git", "refs", "heads", escapeRef(from))
	if err != nil {
		return nil, err
	}
	var source gitRef
	if err := c.do(ctx, http.MethodGet, sourcePath, nil, nil, &source); err != nil {
		return nil, err
	}

	refsPath, _ := c.repoPath(repo, "git", "refs")
	var created gitRef
	body := map[string]string{"ref": "refs/heads/" + branch, "sha": source.Object.SHA}
	if err := c.do(ctx, http.MethodPost, refsPath, nil, body, &created); err != nil {
		return nil, err
	}
	c.log.Info().Str("repo", repo).Str("branch", branch).Str("from", from).Msg("created remote branch")
	return &BranchRef{Name: branch, SHA: created.Object.SHA, URL: created.URL}, nil
}

// CreateIssue opens an issue.
func (c *Client) CreateIssue(ctx context.Context, repo string, req CreateIssueRequest) (*Issue, error) {
	path, err := c.repoPath(repo, "issues")
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := c.do(ctx, http.MethodPost, path, nil, req, &issue); err != nil {
		return nil, err
	}
	c.log.Info().Str("repo", repo).Int("number", issue.Number).Msg("created issue")
	return &issue, nil
}

// CreatePullRequest opens a pull request from req.Head into req.Base.
func (c *Client) CreatePullRequest(ctx context.Context, repo string, req CreatePullRequestRequest) (*PullRequest, error) {
	path, err := c.repoPath(repo, "pulls")
	if err != nil {
		return nil, err
	}
	var pr PullRequest
	if err := c.do(ctx, http.MethodPost, path, nil, req, &pr); err != nil {
		return nil, err
	}
	c.log.Info().Str("repo", repo).Int("number", pr.Number).Msg("created pull request")
	return &pr, nil
}

// ListPullRequests lists pull requests in state (open, closed or all).
func (c *Client) ListPullRequests(ctx context.Context, repo, state string) ([]PullRequest, error) {
	if state == "" {
		state = "open"
	}
	path, err := c.repoPath(repo, "pulls")
	if err != nil {
		return nil, err
	}
	prs := []PullRequest{}
	if err := c.do(ctx, http.MethodGet, path, url.Values{"state": {state}}, nil, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// escapeRef escapes each segment of a ref name so slashes survive.
func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
