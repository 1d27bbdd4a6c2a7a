package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers        *handlers.Provider
	enableWorkflows bool
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, enableWorkflows bool) *Routes {
	return &Routes{
		handlers:        handlerProvider,
		enableWorkflows: enableWorkflows,
	}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	// Orchestration routes (optional - only if handler is provided)
	if r.handlers.Orchestration == nil {
		return
	}
	group := engine.Group("/v1")
	registerToolRoutes(group, r.handlers.Orchestration)

	if r.enableWorkflows {
		registerWorkflowRoutes(group, r.handlers.Orchestration)
	}
}
