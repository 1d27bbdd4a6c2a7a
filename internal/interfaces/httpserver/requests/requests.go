// Package requests holds the request bodies of the tool endpoints and the
// orchestration API.
package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindJSON decodes the body into dst and runs the validate tags.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return Validate(dst)
}

// Validate runs the validate tags of v and flattens the failures into one error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

type RepoCreate struct {
	RepoName    string `json:"repo_name" validate:"required"`
	Private     *bool  `json:"private,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsPrivate defaults to a private repository.
func (r RepoCreate) IsPrivate() bool {
	return r.Private == nil || *r.Private
}

type RepoInit struct {
	RepoPath string `json:"repo_path" validate:"required"`
}

type LocalBranchCreate struct {
	RepoPath   string `json:"repo_path" validate:"required"`
	BranchName string `json:"branch_name" validate:"required"`
}

type GitHubBranchCreate struct {
	RepoName   string `json:"repo_name" validate:"required"`
	BranchName string `json:"branch_name" validate:"required"`
	FromBranch string `json:"from_branch,omitempty"`
}

type AddFile struct {
	RepoPath string `json:"repo_path" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
	Content  string `json:"content"`
}

type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type AddFiles struct {
	RepoPath string        `json:"repo_path" validate:"required"`
	Files    []FileContent `json:"files" validate:"required"`
}

type AddAll struct {
	RepoPath         string `json:"repo_path" validate:"required"`
	IncludeUntracked *bool  `json:"include_untracked,omitempty"`
}

// Untracked defaults to staging untracked files too.
func (r AddAll) Untracked() bool {
	return r.IncludeUntracked == nil || *r.IncludeUntracked
}

type Commit struct {
	RepoPath      string `json:"repo_path" validate:"required"`
	CommitMessage string `json:"commit_message" validate:"required"`
}

type Push struct {
	RepoPath   string `json:"repo_path" validate:"required"`
	RemoteName string `json:"remote_name,omitempty"`
	Branch     string `json:"branch,omitempty"`
}

type Merge struct {
	RepoPath     string `json:"repo_path" validate:"required"`
	SourceBranch string `json:"source_branch" validate:"required"`
	TargetBranch string `json:"target_branch,omitempty"`
}

type Clone struct {
	RepoURL   string `json:"repo_url" validate:"required"`
	LocalPath string `json:"local_path" validate:"required"`
}

type Gitignore struct {
	RepoPath    string `json:"repo_path" validate:"required"`
	ProjectType string `json:"project_type,omitempty"`
}

type Issue struct {
	RepoName string   `json:"repo_name" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Body     string   `json:"body,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

// PullRequest accepts both the REST field names and the ones suggested by
// push_changes (repo_path and branch_name).
type PullRequest struct {
	RepoName   string `json:"repo_name,omitempty"`
	RepoPath   string `json:"repo_path,omitempty"`
	Head       string `json:"head,omitempty"`
	BranchName string `json:"branch_name,omitempty"`
	Base       string `json:"base,omitempty"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body,omitempty"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

type ClassifyIntent struct {
	Query string `json:"query"`
}

// Path and query parameters of the GET tools, used for their schemas.

type RepoPathParams struct {
	RepoPath string `json:"repo_path"`
}

type ListFilesParams struct {
	RepoPath string `json:"repo_path"`
	Pattern  string `json:"pattern,omitempty"`
}

type ReadFileParams struct {
	RepoPath string `json:"repo_path"`
	FileName string `json:"file_name"`
}

type ListReposParams struct {
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

type RepoNameParams struct {
	RepoName string `json:"repo_name"`
}

type ListPullRequestsParams struct {
	RepoName string `json:"repo_name"`
	State    string `json:"state,omitempty" jsonschema:"enum=open,enum=closed,enum=all"`
}

type NoParams struct{}

// ExecuteTool is the body of POST /v1/tools/:name/execute.
type ExecuteTool struct {
	Parameters     map[string]any `json:"parameters,omitempty"`
	Strategy       string         `json:"strategy,omitempty" validate:"omitempty,oneof=sequential parallel conditional interactive"`
	Chain          *bool          `json:"chain,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

// ChainEnabled defaults to following suggestions.
func (r ExecuteTool) ChainEnabled() bool {
	return r.Chain == nil || *r.Chain
}

// Execute is the body of POST /v1/execute.
type Execute struct {
	Query          string         `json:"query" validate:"required"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Strategy       string         `json:"strategy,omitempty" validate:"omitempty,oneof=sequential parallel conditional interactive"`
}

// RunWorkflow is the body of POST /v1/workflows/:name.
type RunWorkflow struct {
	Parameters     map[string]any `json:"parameters,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

var toolBodies = map[string]func() any{
	"create_repository":     func() any { return &RepoCreate{} },
	"initialize_repository": func() any { return &RepoInit{} },
	"clone_repository":      func() any { return &Clone{} },
	"create_branch":         func() any { return &LocalBranchCreate{} },
	"list_branches":         func() any { return &RepoNameParams{} },
	"merge_branches":        func() any { return &Merge{} },
	"add_file":              func() any { return &AddFile{} },
	"add_multiple_files":    func() any { return &AddFiles{} },
	"list_files":            func() any { return &ListFilesParams{} },
	"read_file":             func() any { return &ReadFileParams{} },
	"commit_changes":        func() any { return &Commit{} },
	"push_changes":          func() any { return &Push{} },
	"stage_all_changes":     func() any { return &AddAll{} },
	"create_issue":          func() any { return &Issue{} },
	"create_pull_request":   func() any { return &PullRequest{} },
	"list_pull_requests":    func() any { return &ListPullRequestsParams{} },
	"create_github_branch":  func() any { return &GitHubBranchCreate{} },
	"list_repositories":     func() any { return &ListReposParams{} },
	"setup_credentials":     func() any { return &Credentials{} },
	"verify_credentials":    func() any { return &NoParams{} },
	"generate_gitignore":    func() any { return &Gitignore{} },
	"download_gitignore":    func() any { return &Gitignore{} },
	"detect_project_type":   func() any { return &RepoPathParams{} },
	"check_status":          func() any { return &RepoPathParams{} },
}

// ForTool returns a zero value of the parameters accepted by tool.
func ForTool(tool string) (any, bool) {
	factory, ok := toolBodies[tool]
	if !ok {
		return nil, false
	}
	return factory(), true
}
