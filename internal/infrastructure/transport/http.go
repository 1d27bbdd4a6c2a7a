// Package transport delivers tool requests built by the invoker, either over
// HTTP or straight into an in-process handler.
package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

// HTTP sends tool requests to a remote automation server.
type HTTP struct {
	baseURL string
	client  *resty.Client
}

// NewHTTP creates a transport against baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "jan-git-automation-tools/1.0").
		SetTimeout(timeout)
	return &HTTP{baseURL: baseURL, client: client}
}

// BaseURL returns the server the transport talks to.
func (h *HTTP) BaseURL() string {
	return h.baseURL
}

// SetAuthToken sends token as a bearer credential on every request.
func (h *HTTP) SetAuthToken(token string) *HTTP {
	if token != "" {
		h.client.SetAuthToken(token)
	}
	return h
}

// Do sends req to the base URL. Non-2xx responses are returned, not errors.
func (h *HTTP) Do(ctx context.Context, req toolchain.ToolRequest) (*toolchain.ToolResponse, error) {
	r := h.client.R().SetContext(ctx)
	for key, values := range req.Headers {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return &toolchain.ToolResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}
