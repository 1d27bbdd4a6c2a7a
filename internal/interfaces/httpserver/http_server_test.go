package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/domain/intent"
	"github.com/janhq/git-automation-server/internal/domain/retry"
	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/auth"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
	"github.com/janhq/git-automation-server/internal/infrastructure/github"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
	"github.com/janhq/git-automation-server/internal/infrastructure/transport"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
)

const secret = "server-test-secret"

type server struct {
	handler http.Handler
	store   *credentials.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ServiceName:      "git-automation-server",
		Environment:      "test",
		AuthEnabled:      true,
		JWTSecret:        secret,
		CORSOrigins:      []string{"*"},
		EnableWorkflows:  true,
		EnableParallel:   true,
		ExecutionTimeout: 10 * time.Second,
	}
	log := zerolog.Nop()
	validator, err := auth.NewValidator(context.Background(), cfg, log)
	require.NoError(t, err)

	store := credentials.NewStore(filepath.Join(t.TempDir(), ".env"), credentials.Credentials{}, log)
	registry := toolchain.DefaultRegistry()
	classifier := intent.NewKeywordClassifier()
	tools := handlers.NewToolsProvider(
		gitcli.New(gitcli.NewOSRunner(), log),
		gitignore.NewDownloader("http://127.0.0.1:1", time.Second, log),
		github.NewClient(github.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, Retry: retry.NoRetryPolicy()}, store, nil, log),
		store,
		registry,
		classifier,
		log,
	)

	invoker := toolchain.NewInvoker(registry, transport.NewHandler(httpserver.NewToolsEngine(tools, validator)), 5*time.Second, log)
	orchestrator := toolchain.NewOrchestrator(registry, classifier, invoker,
		toolchain.NewChainExecutor(invoker, 10, log),
		toolchain.NewWorkflowEngine(invoker, toolchain.DefaultWorkflows(), log),
		log)
	provider := tools.WithOrchestration(orchestrator, handlers.OrchestrationOptions{
		EnableParallel:   cfg.EnableParallel,
		ExecutionTimeout: cfg.ExecutionTimeout,
	}, log)

	srv, err := httpserver.New(cfg, log, provider, validator)
	require.NoError(t, err)
	return &server{handler: srv.Handler(), store: store}
}

func token(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"roles": roles,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s *server) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestServer_PublicRoutes(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/", "/healthz", "/readyz", "/health/auth", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}

	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.JSONEq(t, `{"success":true,"message":"GitHub Automation API is running"}`, w.Body.String())
}

func TestServer_ProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/tools", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/auth/verify", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/auth/verify", token(t, "user-1"), nil).Code)
}

func TestServer_CredentialSetupRequiresAdmin(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"username": "octocat", "token": "ghp_test"}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/auth/setup", token(t, "dev", "dev"), body).Code)
	assert.False(t, s.store.Get().Configured())

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/auth/setup", token(t, "root", "admin"), body).Code)
	assert.True(t, s.store.Get().Configured())
}

func TestServer_OrchestratedToolsKeepCallerRoles(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"parameters": map[string]any{"username": "octocat", "token": "ghp_test"}}

	w := s.do(t, http.MethodPost, "/v1/tools/setup_credentials/execute", token(t, "dev", "dev"), body)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope toolchain.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, toolchain.StatusFailed, envelope.Status)
	assert.False(t, s.store.Get().Configured())

	w = s.do(t, http.MethodPost, "/v1/tools/setup_credentials/execute", token(t, "root", "admin"), body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, toolchain.StatusCompleted, envelope.Status)
	assert.Equal(t, "root", envelope.FinalResult.UserContext.UserID, "the token subject is the default user id")
	assert.Equal(t, "octocat", s.store.Get().Username)
}

func TestServer_GitHubToolsNeedCredentials(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/github/list-repos", token(t, "user-1"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), credentials.MissingMessage)
}
