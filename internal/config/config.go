package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the git automation service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"git-automation-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPHost        string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"7309"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	GitHubUsername       string        `env:"GITHUB_USERNAME"`
	GitHubToken          string        `env:"GITHUB_TOKEN"`
	GitHubAPIURL         string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubTimeout        time.Duration `env:"GITHUB_TIMEOUT" envDefault:"30s"`
	GitHubMaxRetries     int           `env:"GITHUB_MAX_RETRIES" envDefault:"2"`
	GitignoreTemplateURL string        `env:"GITIGNORE_TEMPLATE_URL" envDefault:"https://raw.githubusercontent.com/github/gitignore/main"`
	CredentialsFile      string        `env:"CREDENTIALS_FILE" envDefault:".env"`

	MaxChainLength   int           `env:"MAX_CHAIN_LENGTH" envDefault:"10"`
	ToolTimeout      time.Duration `env:"TOOL_EXECUTION_TIMEOUT" envDefault:"45s"`
	ExecutionTimeout time.Duration `env:"EXECUTION_TIMEOUT" envDefault:"300s"`
	EnableParallel   bool          `env:"ENABLE_PARALLEL" envDefault:"true"`
	ToolsBaseURL     string        `env:"TOOLS_BASE_URL"`
	EnableWorkflows  bool          `env:"ENABLE_WORKFLOWS" envDefault:"true"`
	WorkflowsFile    string        `env:"WORKFLOWS_FILE"`

	RateLimitEnabled  bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerMinute int  `env:"REQUESTS_PER_MINUTE" envDefault:"60"`

	CacheEnabled bool          `env:"CACHE_ENABLED" envDefault:"true"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"300s"`
	CacheSize    int           `env:"CACHE_SIZE" envDefault:"256"`
	RedisURL     string        `env:"REDIS_URL"`

	AuthEnabled  bool     `env:"AUTH_ENABLED" envDefault:"false"`
	JWTSecret    string   `env:"JWT_SECRET"`
	AuthIssuer   string   `env:"AUTH_ISSUER"`
	AuthAudience string   `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string   `env:"AUTH_JWKS_URL"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.JWTSecret) == "" && strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("JWT_SECRET or AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	if cfg.MaxChainLength <= 0 {
		cfg.MaxChainLength = 10
	}

	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 45 * time.Second
	}

	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = 300 * time.Second
	}

	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}

	if cfg.GitHubMaxRetries < 0 {
		cfg.GitHubMaxRetries = 0
	}

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// HasGitHubCredentials reports whether both GitHub credentials are set.
func (c *Config) HasGitHubCredentials() bool {
	return strings.TrimSpace(c.GitHubUsername) != "" && strings.TrimSpace(c.GitHubToken) != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
