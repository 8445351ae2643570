package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zahidhamidi/well-data-refine-62/internal/config"
	apierrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/internal/infrastructure"
	customMiddleware "github.com/zahidhamidi/well-data-refine-62/internal/middleware"
	"github.com/zahidhamidi/well-data-refine-62/internal/services"
	handlers "github.com/zahidhamidi/well-data-refine-62/internal/transport/http"
	ws "github.com/zahidhamidi/well-data-refine-62/internal/websocket"
)

const (
	Version = "v1.0.0"
	AppName = "well-data-refine"
)

// Application wires the configuration, pipeline services, websocket hub and
// HTTP server together.
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Hub            *ws.Hub
	DatasetService *services.DatasetService
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders

	metricsCollector *infrastructure.SystemMetricsCollector
	collectorCancel  context.CancelFunc
}

// NewApplication builds a fully wired application from the resolved
// configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	a.Hub = ws.NewHub(a.Logger)

	delimiter := ','
	if a.Config.Dataset.Delimiter != "" {
		delimiter = rune(a.Config.Dataset.Delimiter[0])
	}

	var pipelineMetrics *infrastructure.PipelineMetrics
	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		var err error
		pipelineMetrics, err = infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
		if err != nil {
			a.Logger.Warn("pipeline metrics unavailable", slog.String("error", err.Error()))
			pipelineMetrics = nil
		}
	}

	a.DatasetService = services.NewDatasetService(
		delimiter,
		a.Config.Dataset.FallbackRows,
		a.Logger,
		services.WithNotifier(a.Hub),
		services.WithMetrics(pipelineMetrics),
	)

	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
		if err != nil {
			a.Logger.Warn("system metrics collector unavailable", slog.String("error", err.Error()))
		} else {
			a.metricsCollector = collector
		}
	}

	return nil
}

// setupRouter configures the HTTP router. The websocket route is registered
// with minimal middleware because the full chain wraps the ResponseWriter
// and breaks the upgrade.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	upgrader := ws.Upgrader(a.Config.WebSocket, a.Config.Security.AllowedOrigins)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Get("/ws", ws.ServeWS(a.Hub, upgrader, a.Logger))

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		if a.OTelProviders != nil && a.OTelProviders.Tracer != nil {
			otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
			if err != nil {
				a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
			} else {
				r.Use(otelMiddleware.Handler)
				r.Use(customMiddleware.PipelineMetricsMiddleware(otelMiddleware.Metrics()))
			}
		}

		errMW := apierrors.NewErrorMiddleware(errorHandler, a.Logger, func(ctx context.Context) {
			customMiddleware.RecordSystemError(ctx, "panic", "http")
		})
		r.Use(errMW.Handler)
		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Mount("/dataset", handlers.NewDatasetHandler(
				a.DatasetService, a.Logger, a.Config.Dataset.MaxUploadBytes).Routes())
			r.Mount("/health", handlers.NewHealthHandler(
				a.DatasetService, a.Logger, Version).Routes())
		})
	})

	a.Router = r
	return nil
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the websocket hub, the metrics collector and the HTTP
// listener. It returns once the listener is running.
func (a *Application) Start(ctx context.Context) error {
	a.Hub.Start()

	if a.metricsCollector != nil {
		collectorCtx, cancel := context.WithCancel(context.Background())
		a.collectorCancel = cancel
		go a.metricsCollector.Start(collectorCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop shuts the application down gracefully within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "HTTP server shutdown failed", slog.String("error", err.Error()))
		firstErr = err
	}

	a.Hub.Shutdown()
	if a.collectorCancel != nil {
		a.collectorCancel()
	}
	if a.metricsCollector != nil {
		a.metricsCollector.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "OpenTelemetry shutdown failed", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	infrastructure.CloseLogFile()
	return firstErr
}

// Run starts the application and blocks until an interrupt or termination
// signal arrives, then shuts down gracefully.
func (a *Application) Run() error {
	ctx := context.Background()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx); err != nil {
		return err
	}

	sig := <-sigChan
	a.Logger.InfoContext(ctx, "Received signal", slog.String("signal", sig.String()))

	return a.Stop(ctx)
}
