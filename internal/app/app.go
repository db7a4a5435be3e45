package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"smbpulse/internal/config"
	"smbpulse/internal/errors"
	"smbpulse/internal/infrastructure"
	custommw "smbpulse/internal/middleware"
	"smbpulse/internal/services"
	handlers "smbpulse/internal/transport/http"
	ws "smbpulse/internal/websocket"
)

const (
	// VERSION is the application version reported by the health endpoint.
	VERSION = "v1.0.0"
	// AppName is the human readable application name.
	AppName = "SMB Pulse - Seoul Small Business Statistics"
)

// Application is the main application container.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	WebSocketHub  *ws.Hub
	DataService   *services.DataService
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	hubCancel context.CancelFunc
}

// NewApplication creates a new application instance with dependency
// injection.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	if !config.FileExists(cfg.DataFilePath()) {
		logger.Warn("statistics data file not found",
			slog.String("path", cfg.DataFilePath()),
			slog.String("action", "API responds 404 until the file appears"))
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the services together.
func (a *Application) initializeServices() {
	hub := ws.NewHub(a.Logger)
	a.WebSocketHub = hub

	dataService := services.NewDataServiceWithLogger(a.Config, a.Logger)
	dataService.SetReloadNotifier(hub)
	a.DataService = dataService

	a.HealthService = services.NewHealthService(dataService, a.Logger, VERSION)
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware that does not wrap the ResponseWriter goes first so the
	// WebSocket upgrade still works.
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	// WebSocket route stays outside the full middleware group.
	r.HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(custommw.RequestMetrics(a.OTelProviders.Meter, a.Logger))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupStaticRoutes(r)
	})

	// Prometheus endpoint stays outside the middleware group so scrapes
	// are not rate limited or logged.
	if a.OTelProviders.PrometheusHTTP != nil {
		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)
		r.Mount("/metrics", metricsHandler.Routes())
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimiddleware.Timeout(a.Config.Server.ReadTimeout))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())

		errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

		dataHandler := handlers.NewDataHandler(a.DataService, a.Logger, errorHandler)
		r.Mount("/data", dataHandler.Routes())
	})
}

// setupStaticRoutes serves the dashboard assets when a web directory is
// present.
func (a *Application) setupStaticRoutes(r chi.Router) {
	webDir := a.Config.Paths.WebDir
	if info, err := os.Stat(webDir); err != nil || !info.IsDir() {
		return
	}
	fileServer := http.FileServer(http.Dir(webDir))
	r.Handle("/*", fileServer)
}

// createServer creates the HTTP server.
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

// Start starts the background services and the HTTP server. A fatal server
// error cancels the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.String("data_file", a.Config.DataFilePath()))

	hubCtx, hubCancel := context.WithCancel(context.Background())
	a.hubCancel = hubCancel
	go a.WebSocketHub.Run(hubCtx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Warm the dataset cache so the first request does not pay the load.
	// Failure is not fatal; the file may appear later.
	if _, err := a.DataService.Status(ctx); err != nil {
		a.Logger.WarnContext(ctx, "dataset preload failed",
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.hubCancel != nil {
		a.hubCancel()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// handleWebSocket upgrades dashboard connections and hands them to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	a.Logger.InfoContext(ctx, "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	ws.ServeWS(a.WebSocketHub, a.Logger, w, r.WithContext(ctx))
}
