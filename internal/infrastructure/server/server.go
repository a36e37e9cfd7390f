package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modhost/internal/advisory"
	apihttp "github.com/GriffinCanCode/modhost/internal/api/http"
	"github.com/GriffinCanCode/modhost/internal/api/middleware"
	"github.com/GriffinCanCode/modhost/internal/api/ws"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/tracing"
)

const streamPath = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	handler http.Handler
	http    *http.Server
	engine  *Engine
	logger  *logging.Logger
	tracer  *tracing.Tracer
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing modhost server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("module_url", cfg.Module.URL),
		zap.String("module_name", cfg.Module.Name),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("modhost", logger.Logger)

	engine, err := NewEngine(cfg.Module, logger, metrics, tracer)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	presets := advisory.DefaultPresets()
	if cfg.Advisory.PresetsFile != "" {
		presets, err = advisory.LoadPresets(cfg.Advisory.PresetsFile)
		if err != nil {
			tracer.Close()
			_ = engine.Close(context.Background())
			return nil, fmt.Errorf("severity presets: %w", err)
		}
	}

	products, err := advisory.LoadProducts(cfg.Advisory.ProductsFile)
	if err != nil {
		logger.Warn("Product suggestions unavailable",
			zap.String("path", cfg.Advisory.ProductsFile),
			zap.Error(err),
		)
		products = advisory.Products{}
	}

	runner := advisory.NewRunner(engine.Bridge, cfg.Module.Name,
		advisory.WithPresets(presets),
		advisory.WithSanitize(cfg.Render.Sanitize),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.SetHTMLTemplate(apihttp.Templates())

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer, logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.Server.CORSOrigins)))

	// Only module runs are rate limited.
	limited := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = float64(cfg.RateLimit.RequestsPerSecond)
		rl.Burst = cfg.RateLimit.Burst
		limited = append(limited, middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(runner, products, metrics, logger.Logger)
	wsHandler := ws.NewHandler(runner, metrics, logger.Logger, ws.WithOrigins(cfg.Server.CORSOrigins))

	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		router.Static("/static", cfg.Server.StaticDir)
	} else {
		logger.Warn("Static directory not found", zap.String("dir", cfg.Server.StaticDir))
	}

	router.GET("/", handlers.Page)
	router.GET("/health", handlers.Health)
	router.POST("/theme", handlers.ToggleTheme)
	router.GET("/products", handlers.Products)
	router.GET("/presets", handlers.Presets)
	router.POST("/run", append(limited, handlers.Run)...)
	router.GET(streamPath, append(limited, wsHandler.HandleConnection)...)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s := &Server{
		router:  router,
		handler: compress(router),
		engine:  engine,
		logger:  logger,
		tracer:  tracer,
		config:  cfg,
		metrics: metrics,
	}
	s.http = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: s.handler,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// compress gzips responses except the WebSocket upgrade, which needs the
// raw connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == streamPath {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until it stops. A stop caused by
// Shutdown is not an error.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases runtimes and flushes telemetry. Call after Shutdown.
func (s *Server) Close() error {
	var errs []error
	if err := s.engine.Close(context.Background()); err != nil {
		s.logger.Error("Failed to close wasm runtime", zap.Error(err))
		errs = append(errs, fmt.Errorf("close wasm runtime: %w", err))
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
