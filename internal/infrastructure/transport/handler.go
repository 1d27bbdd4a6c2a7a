package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

// Handler dispatches tool requests into an http.Handler in the same process.
type Handler struct {
	handler http.Handler
}

// NewHandler wraps handler, usually the gin engine serving the tool routes.
func NewHandler(handler http.Handler) *Handler {
	return &Handler{handler: handler}
}

// Do serves req through the wrapped handler and returns the recorded response.
func (h *Handler) Do(ctx context.Context, req toolchain.ToolRequest) (*toolchain.ToolResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.Tool, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Tool, err)
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httpReq)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &toolchain.ToolResponse{
		StatusCode: rec.Code,
		Body:       rec.Body.Bytes(),
	}, nil
}
