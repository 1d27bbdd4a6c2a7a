// Package github is a small REST client for the parts of the GitHub API the
// automation tools use.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/domain/retry"
	"github.com/janhq/git-automation-server/internal/infrastructure/cache"
	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
)

const acceptHeader = "application/vnd.github.v3+json"

// CredentialsSource supplies the identity for each call.
type CredentialsSource interface {
	Get() credentials.Credentials
}

// Config configures the client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Retry    retry.Policy
}

// Client calls the GitHub REST API. GET responses are cached and retried.
type Client struct {
	http  *resty.Client
	creds CredentialsSource
	cache cache.Cache
	ttl   time.Duration
	retry *retry.Executor
	gen   atomic.Uint64
	log   zerolog.Logger
}

// NewClient creates a client. A nil cache disables caching.
func NewClient(cfg Config, creds CredentialsSource, responses cache.Cache, log zerolog.Logger) *Client {
	if responses == nil {
		responses = cache.NewNoOpsCache()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", acceptHeader).
		SetHeader("User-Agent", "jan-git-automation/1.0").
		SetTimeout(cfg.Timeout)
	return &Client{
		http:  httpClient,
		creds: creds,
		cache: responses,
		ttl:   cfg.CacheTTL,
		retry: retry.NewExecutor(cfg.Retry),
		log:   log.With().Str("component", "github-client").Logger(),
	}
}

// APIError is a non-2xx answer from GitHub.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Unauthorized: Check your GitHub token"
	case http.StatusNotFound:
		return "Not found: Repository or resource doesn't exist"
	case http.StatusUnprocessableEntity:
		return "Validation failed: " + e.Message
	default:
		return fmt.Sprintf("GitHub API error (%d): %s", e.StatusCode, e.Message)
	}
}

func newAPIError(resp *resty.Response) *APIError {
	message := "Unknown error"
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		message = body.Message
	} else if text := strings.TrimSpace(resp.String()); text != "" {
		message = text
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: message}
}

// Username returns the configured account name.
func (c *Client) Username() string {
	return c.creds.Get().Username
}

func (c *Client) cacheKey(username, path string, query url.Values) string {
	return fmt.Sprintf("github:%d:%s:%s?%s", c.gen.Load(), username, path, query.Encode())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	creds := c.creds.Get()
	if !creds.Configured() {
		return credentials.ErrMissingCredentials
	}

	key := ""
	if method == http.MethodGet {
		key = c.cacheKey(creds.Username, path, query)
		if cached, ok := c.cache.Get(ctx, key); ok {
			metrics.RecordCacheLookup(true)
			return json.Unmarshal(cached, out)
		}
		metrics.RecordCacheLookup(false)
	}

	send := func(ctx context.Context) (*resty.Response, error) {
		req := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "token "+creds.Token)
		if len(query) > 0 {
			req.SetQueryParamsFromValues(query)
		}
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		return req.Execute(method, path)
	}

	var resp *resty.Response
	var err error
	if method == http.MethodGet {
		err = c.retry.Execute(ctx, func(ctx context.Context, attempt int) error {
			r, sendErr := send(ctx)
			if sendErr != nil {
				c.log.Debug().Err(sendErr).Int("attempt", attempt).Str("path", path).Msg("github request failed")
				return sendErr
			}
			resp = r
			if resp.StatusCode() >= http.StatusInternalServerError {
				return newAPIError(resp)
			}
			return nil
		})
	} else {
		resp, err = send(ctx)
	}

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			metrics.RecordGitHubRequest(method, strconv.Itoa(apiErr.StatusCode))
			return apiErr
		}
		metrics.RecordGitHubRequest(method, "error")
		return fmt.Errorf("github %s %s: %w", method, path, err)
	}
	metrics.RecordGitHubRequest(method, strconv.Itoa(resp.StatusCode()))

	if !resp.IsSuccess() {
		return newAPIError(resp)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode github response: %w", err)
		}
	}

	if method == http.MethodGet {
		c.cache.Set(ctx, key, resp.Body(), c.ttl)
	} else {
		// writes make earlier listings stale
		c.gen.Add(1)
	}
	return nil
}

func (c *Client) repoPath(repo string, parts ...string) (string, error) {
	username := c.Username()
	if username == "" {
		return "", credentials.ErrMissingCredentials
	}
	segments := []string{"repos", url.PathEscape(username), url.PathEscape(repo)}
	segments = append(segments, parts...)
	return "/" + strings.Join(segments, "/"), nil
}
