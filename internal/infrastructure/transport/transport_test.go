package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
	"github.com/janhq/git-automation-server/internal/infrastructure/transport"
)

func TestHTTP_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/commit", r.URL.Path)
		assert.Equal(t, "conv-1", r.Header.Get(toolchain.HeaderConversationID))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"repo_path":"/r","commit_message":"m"}`, string(raw))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"toolName":"commit_changes"}`))
	}))
	defer server.Close()

	tr := transport.NewHTTP(server.URL+"/", 5*time.Second).SetAuthToken("secret")
	assert.Equal(t, server.URL, tr.BaseURL())

	resp, err := tr.Do(context.Background(), toolchain.ToolRequest{
		Tool:    "commit_changes",
		Method:  http.MethodPost,
		Path:    "/repos/commit",
		Body:    map[string]any{"repo_path": "/r", "commit_message": "m"},
		Headers: header(toolchain.HeaderConversationID, "conv-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.JSONEq(t, `{"toolName":"commit_changes"}`, string(resp.Body))
}

func TestHTTP_KeepsEscapedPathAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/status/%2Ftmp%2Frepo", r.URL.EscapedPath())
		assert.Equal(t, "*.go", r.URL.Query().Get("pattern"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := transport.NewHTTP(server.URL, time.Second).Do(context.Background(), toolchain.ToolRequest{
		Method: http.MethodGet,
		Path:   "/repos/status/" + url.PathEscape("/tmp/repo"),
		Query:  url.Values{"pattern": {"*.go"}},
	})
	require.NoError(t, err)
}

func TestHTTP_ConnectionFailure(t *testing.T) {
	_, err := transport.NewHTTP("http://127.0.0.1:1", time.Second).Do(context.Background(), toolchain.ToolRequest{
		Method: http.MethodGet,
		Path:   "/",
	})
	assert.Error(t, err)
}

func toolEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.UseRawPath = true
	engine.UnescapePathValues = false
	engine.GET("/repos/status/*repo_path", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"repo_path": c.Param("repo_path"),
			"user":      c.GetHeader(toolchain.HeaderUserID),
			"pattern":   c.Query("pattern"),
		})
	})
	engine.POST("/repos/init", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, body)
	})
	return engine
}

func TestHandler_DispatchesInProcess(t *testing.T) {
	tr := transport.NewHandler(toolEngine())

	resp, err := tr.Do(context.Background(), toolchain.ToolRequest{
		Method:  http.MethodGet,
		Path:    "/repos/status/" + url.PathEscape("/tmp/My Repo"),
		Query:   url.Values{"pattern": {"**/*.md"}},
		Headers: header(toolchain.HeaderUserID, "u-9"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &got))
	assert.Equal(t, "/%2Ftmp%2FMy%20Repo", got["repo_path"])
	assert.Equal(t, "u-9", got["user"])
	assert.Equal(t, "**/*.md", got["pattern"])

	resp, err = tr.Do(context.Background(), toolchain.ToolRequest{
		Method: http.MethodPost,
		Path:   "/repos/init",
		Body:   map[string]any{"repo_path": "/r"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"repo_path":"/r"}`, string(resp.Body))

	resp, err = tr.Do(context.Background(), toolchain.ToolRequest{Method: http.MethodGet, Path: "/nowhere"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := transport.NewHandler(toolEngine()).Do(ctx, toolchain.ToolRequest{Method: http.MethodGet, Path: "/repos/status/x"})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubTransport struct {
	resp *toolchain.ToolResponse
	err  error
	seen toolchain.ToolRequest
}

func (s *stubTransport) Do(_ context.Context, req toolchain.ToolRequest) (*toolchain.ToolResponse, error) {
	s.seen = req
	return s.resp, s.err
}

func TestTraced_RecordsToolMetrics(t *testing.T) {
	stub := &stubTransport{resp: &toolchain.ToolResponse{StatusCode: http.StatusOK}}
	traced := transport.NewTraced(stub)
	headers := header(toolchain.HeaderConversationID, "conv-t")

	before := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("traced_tool", "200"))
	resp, err := traced.Do(context.Background(), toolchain.ToolRequest{Tool: "traced_tool", Method: http.MethodGet, Path: "/x", Headers: headers})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("traced_tool", "200")))
	assert.Equal(t, "conv-t", stub.seen.Headers.Get(toolchain.HeaderConversationID))
	assert.Len(t, headers, 1, "caller headers are not mutated")

	stub.err = errors.New("boom")
	beforeErr := testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("traced_tool", "error"))
	_, err = traced.Do(context.Background(), toolchain.ToolRequest{Tool: "traced_tool", Method: http.MethodGet, Path: "/x"})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(metrics.ToolCallsTotal.WithLabelValues("traced_tool", "error")))
}

func header(key, value string) http.Header {
	h := http.Header{}
	h.Set(key, value)
	return h
}
