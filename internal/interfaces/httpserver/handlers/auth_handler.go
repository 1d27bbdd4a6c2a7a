package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/requests"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/responses"
)

// CredentialStore holds and persists the GitHub credentials.
type CredentialStore interface {
	Get() credentials.Credentials
	Save(username, token string) error
	Path() string
}

// AuthHandler manages the GitHub credentials used by the tools.
type AuthHandler struct {
	store CredentialStore
	log   zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store CredentialStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store: store,
		log:   log.With().Str("handler", "auth").Logger(),
	}
}

// Setup handles POST /auth/setup
// @Summary Set up GitHub credentials
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body requests.Credentials true "GitHub username and token"
// @Success 200 {object} toolchain.ToolResult
// @Router /auth/setup [post]
func (h *AuthHandler) Setup(c *gin.Context) {
	var req requests.Credentials
	if err := requests.BindJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.Save(req.Username, req.Token); err != nil {
		h.log.Error().Err(err).Msg("save credentials")
		responses.HandleError(c, err, "failed to save credentials")
		return
	}

	respond(c, toolchain.BuildParams{
		ToolName:    "setup_credentials",
		Payload:     gin.H{"env_path": h.store.Path(), "username": req.Username},
		Intent:      "Set up GitHub credentials",
		Description: "GitHub credentials saved successfully",
	})
}

// Verify handles GET /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	creds := h.store.Get()
	configured := creds.Configured()
	h.log.Info().
		Bool("username_set", creds.Username != "").
		Bool("token_set", creds.Token != "").
		Msg("verifying credentials")

	var suggestions []toolchain.SuggestedToolReference
	if !configured {
		suggestions = append(suggestions, suggest(toolchain.ToolTypeModifier, "setup_credentials", "Set up GitHub credentials to use the API", map[string]any{}))
	}
	respond(c, toolchain.BuildParams{
		ToolName: "verify_credentials",
		Payload: gin.H{
			"username":     creds.Username,
			"token_exists": creds.Token != "",
			"configured":   configured,
		},
		Intent:                 "Verify credentials",
		Description:            "Credentials verification complete",
		RequiresPostProcessing: !configured,
		SuggestedTools:         suggestions,
	})
}
