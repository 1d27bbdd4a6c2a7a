package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/requests"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/responses"
)

// GitOperations is the subset of the git client used by the repository endpoints.
type GitOperations interface {
	Init(ctx context.Context, path string) error
	EnsureMainBranch(ctx context.Context, path string) error
	CreateBranch(ctx context.Context, path, branch string) error
	AddFile(repoPath, fileName, content string) (string, error)
	AddFiles(repoPath string, files []gitcli.FileSpec) *gitcli.AddFilesResult
	StageAll(ctx context.Context, path string, includeUntracked bool) (*gitcli.StageResult, error)
	Commit(ctx context.Context, path, message string) (bool, error)
	Push(ctx context.Context, path, remote, branch string) (string, error)
	Merge(ctx context.Context, path, source, target string) (bool, error)
	Clone(ctx context.Context, repoURL, localPath string) (*gitcli.CloneResult, error)
	Status(ctx context.Context, path string) (string, error)
}

// GitignoreDownloader fetches .gitignore templates.
type GitignoreDownloader interface {
	Download(ctx context.Context, repoPath, projectType string) (path string, source string, err error)
}

// RepoHandler exposes the local repository tools.
type RepoHandler struct {
	git        GitOperations
	downloader GitignoreDownloader
	log        zerolog.Logger
}

// NewRepoHandler constructs the handler.
func NewRepoHandler(git GitOperations, downloader GitignoreDownloader, log zerolog.Logger) *RepoHandler {
	return &RepoHandler{
		git:        git,
		downloader: downloader,
		log:        log.With().Str("handler", "repo").Logger(),
	}
}

// Init handles POST /repos/init
// @Summary Initialize a local Git repository
// @Tags Repositories
// @Accept json
// @Produce json
// @Param request body requests.RepoInit true "Repository path"
// @Success 200 {object} toolchain.ToolResult
// @Router /repos/init [post]
func (h *RepoHandler) Init(c *gin.Context) {
	var req requests.RepoInit
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.git.Init(ctx, req.RepoPath); err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("init repository")
		responses.HandleError(c, err, "")
		return
	}
	if err := h.git.EnsureMainBranch(ctx, req.RepoPath); err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("ensure main branch")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:    "initialize_repository",
		Payload:     gin.H{"repo_path": req.RepoPath, "branch": "main"},
		Intent:      "Initialize repository",
		Description: "Repository initialized at " + req.RepoPath,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeCreator, "create_branch", "Create branches for development", map[string]any{"repo_path": req.RepoPath}),
		},
	})
}

// CreateBranch handles POST /repos/create-branch
// @Summary Create a new local branch
// @Tags Repositories
// @Router /repos/create-branch [post]
func (h *RepoHandler) CreateBranch(c *gin.Context) {
	var req requests.LocalBranchCreate
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.git.CreateBranch(c.Request.Context(), req.RepoPath, req.BranchName); err != nil {
		h.log.Error().Err(err).Str("branch", req.BranchName).Msg("create branch")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName: "create_branch",
		Payload: gin.H{
			"branch_name": req.BranchName,
			"message":     fmt.Sprintf("Created and checked out branch '%s'", req.BranchName),
		},
		Intent:                 "Create local branch",
		Description:            fmt.Sprintf("Created branch '%s' in local repository", req.BranchName),
		RequiresPostProcessing: false,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeModifier, "add_multiple_files", "Add files to the new branch", map[string]any{"repo_path": req.RepoPath}),
		},
	})
}

// AddFile handles POST /repos/add-file
func (h *RepoHandler) AddFile(c *gin.Context) {
	var req requests.AddFile
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.git.AddFile(req.RepoPath, req.FileName, req.Content); err != nil {
		h.log.Error().Err(err).Str("file_name", req.FileName).Msg("add file")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName: "add_file",
		Payload: gin.H{
			"file_name":      req.FileName,
			"file_path":      req.RepoPath + "/" + req.FileName,
			"content_length": len(req.Content),
		},
		Intent:                 "Add file",
		Description:            fmt.Sprintf("Created file %s with content", req.FileName),
		RequiresPostProcessing: true,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit the added file", map[string]any{
				"repo_path":      req.RepoPath,
				"commit_message": "Add " + req.FileName,
			}),
		},
	})
}

// AddFiles handles POST /repos/add-files
func (h *RepoHandler) AddFiles(c *gin.Context) {
	var req requests.AddFiles
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	specs := make([]gitcli.FileSpec, 0, len(req.Files))
	for _, f := range req.Files {
		specs = append(specs, gitcli.FileSpec{Path: f.Path, Content: f.Content})
	}
	result := h.git.AddFiles(req.RepoPath, specs)

	var suggestions []toolchain.SuggestedToolReference
	if len(result.CreatedFiles) > 0 {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit all added files", map[string]any{
			"repo_path":      req.RepoPath,
			"commit_message": fmt.Sprintf("Add %d files", len(result.CreatedFiles)),
		}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "add_multiple_files",
		Payload:                result,
		Intent:                 "Add multiple files",
		Description:            result.Message,
		RequiresPostProcessing: len(result.CreatedFiles) > 0,
		SuggestedTools:         suggestions,
		ContentSummary:         &toolchain.ContentSummary{Fields: []string{"created_files", "errors"}, RecordCount: len(result.CreatedFiles)},
	})
}

// AddAll handles POST /repos/add-all
func (h *RepoHandler) AddAll(c *gin.Context) {
	var req requests.AddAll
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.git.StageAll(c.Request.Context(), req.RepoPath, req.Untracked())
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("stage changes")
		responses.HandleError(c, err, "")
		return
	}

	var suggestions []toolchain.SuggestedToolReference
	if len(result.StagedFiles) > 0 {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit the staged changes", map[string]any{"repo_path": req.RepoPath}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "stage_all_changes",
		Payload:                result,
		Intent:                 "Stage all changes",
		Description:            result.Message,
		RequiresPostProcessing: true,
		ContentSummary:         &toolchain.ContentSummary{Fields: []string{"file_path", "status"}, RecordCount: len(result.StagedFiles)},
		SuggestedTools:         suggestions,
	})
}

// Commit handles POST /repos/commit
// @Summary Stage and commit changes
// @Tags Repositories
// @Router /repos/commit [post]
func (h *RepoHandler) Commit(c *gin.Context) {
	var req requests.Commit
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	committed, err := h.git.Commit(c.Request.Context(), req.RepoPath, req.CommitMessage)
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("commit changes")
		responses.HandleError(c, err, "")
		return
	}

	description := "No changes to commit"
	var suggestions []toolchain.SuggestedToolReference
	if committed {
		description = "Changes committed with message: " + req.CommitMessage
		suggestions = append(suggestions, suggest(toolchain.ToolTypeExecutor, "push_changes", "Push committed changes to remote", map[string]any{"repo_path": req.RepoPath}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "commit_changes",
		Payload:                gin.H{"committed": committed, "commit_message": req.CommitMessage},
		Intent:                 "Commit changes",
		Description:            description,
		RequiresPostProcessing: committed,
		SuggestedTools:         suggestions,
	})
}

// Push handles POST /repos/push
func (h *RepoHandler) Push(c *gin.Context) {
	var req requests.Push
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	remote := req.RemoteName
	if remote == "" {
		remote = "origin"
	}
	if _, err := h.git.Push(c.Request.Context(), req.RepoPath, remote, req.Branch); err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Str("remote", remote).Msg("push changes")
		responses.HandleError(c, err, "")
		return
	}

	branch := req.Branch
	if branch == "" {
		branch = "current"
	}
	var suggestions []toolchain.SuggestedToolReference
	if req.Branch != "" && req.Branch != "main" {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeCreator, "create_pull_request", "Create a pull request for the pushed changes", map[string]any{
			"repo_path":   req.RepoPath,
			"branch_name": req.Branch,
		}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "push_changes",
		Payload:                gin.H{"pushed": true, "remote": remote, "branch": branch},
		Intent:                 "Push changes",
		Description:            "Pushed changes successfully",
		RequiresPostProcessing: true,
		SuggestedTools:         suggestions,
	})
}

// Merge handles POST /repos/merge
func (h *RepoHandler) Merge(c *gin.Context) {
	var req requests.Merge
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	target := req.TargetBranch
	if target == "" {
		target = "main"
	}
	merged, err := h.git.Merge(c.Request.Context(), req.RepoPath, req.SourceBranch, target)
	if err != nil {
		h.log.Error().Err(err).Str("source", req.SourceBranch).Str("target", target).Msg("merge branches")
		responses.HandleError(c, err, "")
		return
	}

	description := "Merge failed due to conflicts"
	var suggestions []toolchain.SuggestedToolReference
	if merged {
		description = fmt.Sprintf("Merged %s into %s successfully", req.SourceBranch, target)
		suggestions = append(suggestions, suggest(toolchain.ToolTypeExecutor, "push_changes", "Push the merged changes", map[string]any{
			"repo_path": req.RepoPath,
			"branch":    target,
		}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "merge_branches",
		Payload:                gin.H{"merged": merged, "source_branch": req.SourceBranch, "target_branch": target},
		Intent:                 "Merge branches",
		Description:            description,
		RequiresPostProcessing: merged,
		SuggestedTools:         suggestions,
	})
}

// Clone handles POST /repos/clone
func (h *RepoHandler) Clone(c *gin.Context) {
	var req requests.Clone
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.git.Clone(c.Request.Context(), req.RepoURL, req.LocalPath)
	if err != nil {
		h.log.Error().Err(err).Str("repo_url", req.RepoURL).Msg("clone repository")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:               "clone_repository",
		Payload:                gin.H{"repo_url": req.RepoURL, "local_path": req.LocalPath, "branch": result.Branch},
		Intent:                 "Clone repository",
		Description:            "Cloned repository to " + req.LocalPath,
		RequiresPostProcessing: true,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeAnalyzer, "list_branches", "View available branches in the cloned repository", map[string]any{
				"repo_path": req.LocalPath,
				"repo_name": filepath.Base(result.LocalPath),
			}),
			suggest(toolchain.ToolTypeRetriever, "list_files", "Explore the repository contents", map[string]any{"repo_path": req.LocalPath}),
		},
	})
}

// Status handles GET /repos/status/*repo_path
func (h *RepoHandler) Status(c *gin.Context) {
	repoPath, ok := requireCatchAllParam(c, "repo_path")
	if !ok {
		return
	}
	status, err := h.git.Status(c.Request.Context(), repoPath)
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", repoPath).Msg("repository status")
		responses.HandleError(c, err, "")
		return
	}

	hasChanges := gitcli.HasChanges(status)
	var suggestions []toolchain.SuggestedToolReference
	if hasChanges {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit the uncommitted changes", map[string]any{"repo_path": repoPath}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "check_status",
		Payload:                gin.H{"status": status, "has_changes": hasChanges},
		Intent:                 "Check repository status",
		Description:            "Repository status retrieved",
		DataType:               "text/plain",
		RequiresPostProcessing: hasChanges,
		SuggestedTools:         suggestions,
	})
}

// GenerateGitignore handles POST /repos/generate-gitignore
func (h *RepoHandler) GenerateGitignore(c *gin.Context) {
	var req requests.Gitignore
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	path, err := gitignore.Generate(req.RepoPath, req.ProjectType)
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("generate gitignore")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:               "generate_gitignore",
		Payload:                gin.H{"gitignore_path": path},
		Intent:                 "Generate gitignore",
		Description:            "Gitignore file generated at " + path,
		RequiresPostProcessing: true,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit the generated .gitignore file", map[string]any{
				"repo_path":      req.RepoPath,
				"commit_message": "Add .gitignore",
			}),
		},
	})
}

// DownloadGitignore handles POST /repos/download-gitignore
func (h *RepoHandler) DownloadGitignore(c *gin.Context) {
	var req requests.Gitignore
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	path, source, err := h.downloader.Download(c.Request.Context(), req.RepoPath, req.ProjectType)
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", req.RepoPath).Msg("download gitignore")
		responses.HandleError(c, err, "")
		return
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = "auto-detected"
	}
	description := "GitHub gitignore template downloaded to " + path
	if source == "generated" {
		description = "Template unavailable, gitignore generated at " + path
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "download_gitignore",
		Payload:                gin.H{"gitignore_path": path, "project_type": projectType, "source": source},
		Intent:                 "Download gitignore template",
		Description:            description,
		RequiresPostProcessing: true,
		SuggestedTools: []toolchain.SuggestedToolReference{
			suggest(toolchain.ToolTypeExecutor, "commit_changes", "Commit the downloaded .gitignore file", map[string]any{
				"repo_path":      req.RepoPath,
				"commit_message": fmt.Sprintf("Add GitHub %s .gitignore", projectType),
			}),
		},
	})
}

// DetectProjectType handles GET /repos/detect-project-type/*repo_path
func (h *RepoHandler) DetectProjectType(c *gin.Context) {
	repoPath, ok := requireCatchAllParam(c, "repo_path")
	if !ok {
		return
	}
	types := gitignore.DetectProjectType(repoPath)

	var suggestions []toolchain.SuggestedToolReference
	if types[0] != gitignore.TypeGeneral {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeCreator, "generate_gitignore",
			fmt.Sprintf("Generate appropriate .gitignore for %s project", types[0]),
			map[string]any{"repo_path": repoPath, "project_type": types[0]}))
	}
	respond(c, toolchain.BuildParams{
		ToolName:               "detect_project_type",
		Payload:                gin.H{"project_types": types},
		Intent:                 "Detect project type",
		Description:            "Detected project types: " + strings.Join(types, ", "),
		RequiresPostProcessing: true,
		SuggestedTools:         suggestions,
	})
}

// ListFiles handles GET /repos/list-files/*repo_path
func (h *RepoHandler) ListFiles(c *gin.Context) {
	repoPath, ok := requireCatchAllParam(c, "repo_path")
	if !ok {
		return
	}
	contents, err := gitcli.ListFiles(repoPath, c.Query("pattern"))
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", repoPath).Msg("list files")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:       "list_files",
		Payload:        gin.H{"contents": contents},
		Intent:         "List directory contents",
		Description:    fmt.Sprintf("Found %d items in %s", len(contents), repoPath),
		ContentSummary: &toolchain.ContentSummary{Fields: []string{"filename"}, RecordCount: len(contents)},
	})
}

// ReadFile handles GET /repos/read-file/:repo_path/:file_name
func (h *RepoHandler) ReadFile(c *gin.Context) {
	repoPath, ok := requirePathParam(c, "repo_path")
	if !ok {
		return
	}
	fileName, ok := requirePathParam(c, "file_name")
	if !ok {
		return
	}
	file, err := gitcli.ReadFile(repoPath, fileName)
	if err != nil {
		h.log.Error().Err(err).Str("repo_path", repoPath).Str("file_name", fileName).Msg("read file")
		responses.HandleError(c, err, "")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:    "read_file",
		Payload:     file,
		Intent:      "Read file contents",
		Description: fmt.Sprintf("Read %s (%d bytes)", fileName, file.Size),
		DataType:    file.MIMEType,
	})
}
