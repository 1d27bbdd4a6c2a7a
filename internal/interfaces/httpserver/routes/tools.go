package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

// ToolRoutes registers the tool endpoints the invoker dispatches to.
type ToolRoutes struct {
	handlers   *handlers.Provider
	adminGuard gin.HandlerFunc
}

// NewToolRoutes builds the tool route registrar. adminGuard protects
// credential setup and may be nil.
func NewToolRoutes(handlerProvider *handlers.Provider, adminGuard gin.HandlerFunc) *ToolRoutes {
	return &ToolRoutes{handlers: handlerProvider, adminGuard: adminGuard}
}

// Register attaches the tool routes to router.
func (r *ToolRoutes) Register(router gin.IRouter) {
	intent := r.handlers.Intent
	router.GET("/intents", intent.List)
	router.POST("/classify-intent", intent.Classify)

	registerAuthRoutes(router.Group("/auth"), r.handlers.Auth, r.adminGuard)
	registerRepoRoutes(router.Group("/repos"), r.handlers.Repo)
	registerGitHubRoutes(router.Group("/github"), r.handlers.GitHub)
}

func registerAuthRoutes(router gin.IRoutes, handler *handlers.AuthHandler, adminGuard gin.HandlerFunc) {
	setup := []gin.HandlerFunc{handler.Setup}
	if adminGuard != nil {
		setup = append([]gin.HandlerFunc{adminGuard}, setup...)
	}
	router.POST("/setup", setup...)
	router.GET("/verify", handler.Verify)
}

func registerRepoRoutes(router gin.IRoutes, handler *handlers.RepoHandler) {
	router.POST("/init", handler.Init)
	router.POST("/create-branch", handler.CreateBranch)
	router.POST("/add-file", handler.AddFile)
	router.POST("/add-files", handler.AddFiles)
	router.POST("/add-all", handler.AddAll)
	router.POST("/commit", handler.Commit)
	router.POST("/push", handler.Push)
	router.POST("/merge", handler.Merge)
	router.POST("/clone", handler.Clone)
	router.POST("/generate-gitignore", handler.GenerateGitignore)
	router.POST("/download-gitignore", handler.DownloadGitignore)

	// Repository paths may contain slashes, so they are catch-all parameters.
	router.GET("/status/*repo_path", handler.Status)
	router.GET("/detect-project-type/*repo_path", handler.DetectProjectType)
	router.GET("/list-files/*repo_path", handler.ListFiles)
	router.GET("/read-file/:repo_path/:file_name", handler.ReadFile)
}

func registerGitHubRoutes(router gin.IRoutes, handler *handlers.GitHubHandler) {
	router.POST("/create-repo", handler.CreateRepository)
	router.GET("/list-repos", handler.ListRepositories)
	router.GET("/list-branches/:repo_name", handler.ListBranches)
	router.POST("/create-branch", handler.CreateBranch)
	router.POST("/create-issue", handler.CreateIssue)
	router.POST("/create-pr", handler.CreatePullRequest)
	router.GET("/list-prs/:repo_name", handler.ListPullRequests)
}
