package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

func registerToolRoutes(router gin.IRoutes, handler *handlers.OrchestrationHandler) {
	router.GET("/tools", handler.ListTools)
	router.GET("/tools/:name/schema", handler.ToolSchema)
	router.POST("/tools/:name/execute", handler.ExecuteTool)
	router.POST("/execute", handler.Execute)
}

func registerWorkflowRoutes(router gin.IRoutes, handler *handlers.OrchestrationHandler) {
	router.GET("/workflows", handler.ListWorkflows)
	router.POST("/workflows/:name", handler.RunWorkflow)
}
