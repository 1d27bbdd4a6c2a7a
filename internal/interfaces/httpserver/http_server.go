package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/janhq/git-automation-server/internal/config"
	"github.com/janhq/git-automation-server/internal/infrastructure/auth"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/handlers"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/git-automation-server/internal/interfaces/httpserver/routes"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg         *config.Config
	engine      *gin.Engine
	log         zerolog.Logger
	handlerProv *handlers.Provider
	routeProv   *routes.Provider
	auth        *auth.Validator
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, handlerProvider *handlers.Provider, authValidator *auth.Validator) (*HttpServer, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := newEngine()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.RequestLogger(log))
	engine.Use(middlewares.CORS(cfg.CORSOrigins))
	engine.Use(middlewares.Metrics())
	if cfg.RateLimitEnabled {
		limiter, err := middlewares.NewRateLimiter(cfg.RequestsPerMinute)
		if err != nil {
			return nil, err
		}
		engine.Use(limiter.Middleware())
	}

	routeProvider := routes.NewProvider(handlerProvider, authValidator.RequireRole(auth.RoleAdmin), cfg.EnableWorkflows)

	// Register public routes (health checks, metrics) without authentication
	registerPublicRoutes(engine, handlerProvider, authValidator)

	// Apply authentication middleware before protected routes
	if authValidator != nil {
		engine.Use(authValidator.Middleware())
	}

	// Register protected API routes
	routeProvider.Register(engine)

	return &HttpServer{
		cfg:         cfg,
		engine:      engine,
		log:         log,
		handlerProv: handlerProvider,
		routeProv:   routeProvider,
		auth:        authValidator,
	}, nil
}

// NewToolsEngine builds the engine the in-process transport dispatches tool
// calls to. It carries the tool routes only; callers were authenticated by
// the outer server and their identity travels on the request context.
func NewToolsEngine(handlerProvider *handlers.Provider, authValidator *auth.Validator) *gin.Engine {
	engine := newEngine()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	routes.NewToolRoutes(handlerProvider, authValidator.RequireRole(auth.RoleAdmin)).Register(engine)
	return engine
}

// Handler exposes the engine, mainly for tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// newEngine keeps escaped slashes inside path parameters so that repository
// paths survive routing; handlers unescape them.
func newEngine() *gin.Engine {
	engine := gin.New()
	engine.UseRawPath = true
	engine.UnescapePathValues = false
	return engine
}

func registerPublicRoutes(engine *gin.Engine, handlerProvider *handlers.Provider, authValidator *auth.Validator) {
	engine.GET("/", handlerProvider.Intent.Root)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/health/auth", func(c *gin.Context) {
		if authValidator == nil || authValidator.Ready() {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
