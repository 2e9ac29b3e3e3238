package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"astrasreport/internal/config"
	apierrors "astrasreport/internal/errors"
	"astrasreport/internal/infrastructure"
	customMiddleware "astrasreport/internal/middleware"
	"astrasreport/internal/services"
	"astrasreport/internal/session"
	handlers "astrasreport/internal/transport/http"
)

// multipartOverhead covers form boundaries and headers around uploaded files
const multipartOverhead = 1 << 20

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Sessions       *session.MemoryStore
	ReportService  *services.ReportService
	HealthService  *services.HealthService
	Metrics        *infrastructure.ReportMetrics
	RuntimeMetrics *infrastructure.RuntimeMetrics
	ErrorHandler   *apierrors.ErrorHandler
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
}

// NewApplication loads the configuration and creates the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig creates an application from an already loaded configuration
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
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

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.Sessions = session.NewMemoryStore(a.Logger)

	metrics, err := infrastructure.CreateReportMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create report metrics: %w", err)
	}
	a.Metrics = metrics

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(a.OTelProviders.Meter, a.Sessions.Count)
	if err != nil {
		return fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	a.RuntimeMetrics = runtimeMetrics

	a.ReportService = services.NewReportService(a.Config.Report, a.Sessions, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthServiceWithBuildInfo(
		config.AppVersion, BuildTime, BuildID, a.Sessions.Count, a.RuntimeMetrics, a.Logger)

	return nil
}

// setupRouter configures the router and middleware
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	var routeErr error
	r.Group(func(r chi.Router) {
		// Order: RequestID, RealIP, OTel, Logger, Recoverer, headers, limits
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.BodyLimit(2*a.Config.Upload.MaxBytes + multipartOverhead))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
		routeErr = a.setupHTMLRoutes(r)
	})
	if routeErr != nil {
		return routeErr
	}

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes mounts the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		reportHandler := handlers.NewReportHandler(a.ReportService, a.Logger, a.ErrorHandler)
		r.With(customMiddleware.AuditLog(a.Logger)).Mount("/sessions", reportHandler.Routes())

		r.Post("/client-log", handlers.NewClientLogHandler(a.Logger, a.ErrorHandler).Handle)
	})
}

// setupHTMLRoutes registers the upload and dashboard pages
func (a *Application) setupHTMLRoutes(r chi.Router) error {
	pages, err := handlers.NewPageHandler(a.ReportService, a.Logger, a.ErrorHandler)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Compress(5, "text/html"))
		pages.RegisterRoutes(r)
	})
	return nil
}

// getCORSConfig builds the CORS policy from the security configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
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

// Start starts the session janitor and the HTTP server. Both stop when ctx
// is done; a server failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go a.Sessions.RunJanitor(ctx, a.Config.Upload.SessionTTL, a.Config.Upload.SweepInterval)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.Duration("session_ttl", a.Config.Upload.SessionTTL))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.RuntimeMetrics != nil {
		if err := a.RuntimeMetrics.Stop(); err != nil {
			a.Logger.ErrorContext(ctx, "Error stopping runtime metrics", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("sessions_dropped", a.Sessions.Count()))

	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
