package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/gbbridge/internal/api/http"
	"github.com/GriffinCanCode/gbbridge/internal/api/middleware"
	"github.com/GriffinCanCode/gbbridge/internal/api/ws"
	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/host"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/gbbridge/internal/runner"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	pool    *sandbox.Pool
	runner  *runner.Runner
	hub     *ws.Hub
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing gbbridge development host",
		zap.String("port", cfg.Server.Port),
		zap.Stringer("debug_mode", cfg.Bridge.DebugMode),
		zap.Bool("desktop_mode", cfg.Bridge.DesktopMode),
	)

	metrics := monitoring.NewMetrics()

	fixtures := host.Fixtures{}
	if cfg.Host.Fixtures != "" {
		loaded, err := host.LoadFixtures(cfg.Host.Fixtures)
		if err != nil {
			return nil, fmt.Errorf("failed to load host fixtures: %w", err)
		}
		fixtures = loaded
		logger.Info("Host fixtures loaded", zap.String("path", cfg.Host.Fixtures))
	}

	transport := bridge.NewDesktopTransport(cfg.TransportSettings()).
		WithLogger(logger.Logger).
		WithMetrics(metrics)

	sbCfg := sandbox.DefaultConfig()
	sbCfg.Timeout = cfg.Sandbox.Timeout
	sbCfg.Bridge = cfg.BridgeSettings()
	sbCfg.Transport = cfg.TransportSettings()
	sbCfg.Logger = logger.Logger
	sbCfg.Metrics = metrics

	pool, err := sandbox.NewPool(sbCfg, cfg.Sandbox.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox pool: %w", err)
	}
	logger.Info("Sandbox pool ready", zap.Int("size", cfg.Sandbox.PoolSize))

	run := runner.New(pool, runner.Options{
		Bridge:    cfg.BridgeSettings(),
		Fixtures:  fixtures,
		Simulate:  cfg.Host.Simulate,
		Transport: transport,
		Logger:    logger.Logger,
	})

	hub := ws.NewHub(run).WithLogger(logger.Logger).WithMetrics(metrics)
	handlers := apihttp.NewHandlers(run, metrics, logger.Logger).WithClientCount(hub.Clients)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Component("api")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", handlers.Metrics)
	router.GET("/metrics/json", handlers.MetricsJSON)

	v1 := router.Group("/v1")
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limit := middleware.DefaultRateLimitConfig()
		limit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limit.Burst = cfg.RateLimit.Burst
		v1.Use(middleware.RateLimit(limit))
	}
	v1.POST("/run", handlers.Run)
	v1.GET("/runs", handlers.ListRuns)
	v1.GET("/runs/:id", handlers.GetRun)
	v1.GET("/stream", hub.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		pool:    pool,
		runner:  run,
		hub:     hub,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Runner exposes the page runner
func (s *Server) Runner() *runner.Runner {
	return s.runner
}

// Run starts the HTTP server and blocks until Shutdown
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the sandbox pool
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if closeErr := s.pool.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	// Sync logger before exit
	s.logger.Sync()

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
