package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/responses"
	"github.com/janhq/git-automation-server/internal/utils/platformerrors"
)

// respond builds a ToolResult correlated with the request headers and writes it.
func respond(c *gin.Context, p toolchain.BuildParams) {
	p.Correlation = toolchain.CorrelationFromHeaders(c.Request.Header)
	result, err := toolchain.BuildResult(p)
	if err != nil {
		responses.HandleError(c, err, "failed to build tool result")
		return
	}
	c.JSON(http.StatusOK, result)
}

// pathParam reads a path parameter. Engines keep raw paths, so values are
// unescaped here.
func pathParam(c *gin.Context, name string) string {
	raw := c.Param(name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return value
}

// catchAllParam reads a *name parameter without the slash gin prefixes it with.
func catchAllParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(pathParam(c, name), "/")
}

// requirePathParam aborts with 400 when the parameter is empty.
func requirePathParam(c *gin.Context, name string) (string, bool) {
	return requireValue(c, name, pathParam(c, name))
}

func requireCatchAllParam(c *gin.Context, name string) (string, bool) {
	return requireValue(c, name, catchAllParam(c, name))
}

func requireValue(c *gin.Context, name, value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, name+" is required", "")
		return "", false
	}
	return value, true
}

func badRequest(c *gin.Context, err error) {
	responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "")
}

func suggest(t toolchain.ToolType, hint, reason string, params map[string]any) toolchain.SuggestedToolReference {
	return toolchain.SuggestedToolReference{ToolType: t, ToolNameHint: hint, Reason: reason, Parameters: params}
}
