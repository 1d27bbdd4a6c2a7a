package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/requests"
)

// IntentHandler serves the service banner, the tool catalogue and keyword
// classification of free text.
type IntentHandler struct {
	registry   *toolchain.Registry
	classifier toolchain.Classifier
}

// NewIntentHandler constructs the handler.
func NewIntentHandler(registry *toolchain.Registry, classifier toolchain.Classifier) *IntentHandler {
	return &IntentHandler{registry: registry, classifier: classifier}
}

// Root handles GET /
func (h *IntentHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "GitHub Automation API is running"})
}

type intentInfo struct {
	Category    toolchain.Category `json:"category"`
	Description string             `json:"description"`
	Endpoint    string             `json:"endpoint"`
	Method      string             `json:"method"`
	Parameters  []string           `json:"parameters"`
	Examples    []string           `json:"examples"`
}

func infoOf(contract toolchain.ToolContract) intentInfo {
	examples := contract.Examples
	if examples == nil {
		examples = []string{}
	}
	return intentInfo{
		Category:    contract.Category,
		Description: contract.Description,
		Endpoint:    contract.Endpoint,
		Method:      contract.Method,
		Parameters:  contract.ParameterNames(),
		Examples:    examples,
	}
}

// List handles GET /intents
func (h *IntentHandler) List(c *gin.Context) {
	intents := make(map[string]intentInfo, h.registry.Len())
	for _, contract := range h.registry.Contracts() {
		intents[contract.Name] = infoOf(contract)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "intents": intents})
}

// Classify handles POST /classify-intent
func (h *IntentHandler) Classify(c *gin.Context) {
	var req requests.ClassifyIntent
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	name, ok := h.classifier.Classify(strings.TrimSpace(req.Query))
	contract, known := h.registry.Lookup(name)
	if !ok || !known {
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"message":     "Could not classify intent",
			"suggestions": h.registry.Names(),
		})
		return
	}

	info := infoOf(contract)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"intent":     contract.Name,
		"category":   info.Category,
		"endpoint":   info.Endpoint,
		"method":     info.Method,
		"parameters": info.Parameters,
	})
}
