package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
	v1 "github.com/janhq/git-automation-server/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	Tools *ToolRoutes
	V1    *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider, adminGuard gin.HandlerFunc, enableWorkflows bool) *Provider {
	return &Provider{
		Tools: NewToolRoutes(handlerProvider, adminGuard),
		V1:    v1.NewRoutes(handlerProvider, enableWorkflows),
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.Tools.Register(engine)
	p.V1.Register(engine)
}
