// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yechale/rollcall/internal/attendance"
	attendancepostgres "github.com/yechale/rollcall/internal/attendance/postgres"
	"github.com/yechale/rollcall/internal/config"
	"github.com/yechale/rollcall/internal/notifications"
	"github.com/yechale/rollcall/internal/notifications/email"
	notificationspostgres "github.com/yechale/rollcall/internal/notifications/postgres"
	"github.com/yechale/rollcall/internal/notifications/sms"
	"github.com/yechale/rollcall/internal/pkg/ctxlog"
	"github.com/yechale/rollcall/internal/pkg/httputil"
	"github.com/yechale/rollcall/internal/pkg/metrics"
	"github.com/yechale/rollcall/internal/pkg/postgres"
	"github.com/yechale/rollcall/internal/school"
	schoolpostgres "github.com/yechale/rollcall/internal/school/postgres"
	"github.com/yechale/rollcall/internal/version"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	queue         *notifications.Queue
	monitor       *notifications.Monitor
	feed          *notifications.Feed
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, err := app.setupRouter()
	if err != nil {
		db.Close()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop the retry queue timer first so no drain fires mid-shutdown
	if a.queue != nil {
		a.queue.Close()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Queue returns the retry queue instance. Used in tests to inspect queue
// state. Returns nil if notifications are disabled.
func (a *App) Queue() *notifications.Queue {
	return a.queue
}

// Monitor returns the connectivity monitor. Returns nil if notifications
// are disabled.
func (a *App) Monitor() *notifications.Monitor {
	return a.monitor
}

func (a *App) setupRouter() (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Rollcall API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	schoolRepo := schoolpostgres.NewRepository(a.db)
	schoolService := school.NewService(schoolRepo)
	schoolHandler := school.NewHandler(schoolService)

	var dispatcher *notifications.Dispatcher
	var notificationsHandler *notifications.Handler

	if a.config.Notifications.Enabled {
		composer, err := notifications.NewComposer()
		if err != nil {
			return nil, fmt.Errorf("create composer: %w", err)
		}

		feed := notifications.NewFeed(a.config.Notifications.FeedCapacity, a.logger)
		monitor := notifications.NewMonitor(a.config.Notifications.StartOnline, a.logger)

		store := notificationspostgres.NewRepository(a.db)
		drainClient := notifications.NewHTTPDrainClient(a.config.Delivery.DrainURL, a.config.Delivery.Timeout)
		queue, err := notifications.NewQueue(store, drainClient, monitor.Online, a.logger)
		if err != nil {
			return nil, fmt.Errorf("create retry queue: %w", err)
		}

		// Coming back online is what triggers the queued sends
		monitor.OnOnline(func() {
			queue.Drain(context.Background())
		})

		deps := notifications.Deps{
			Settings: schoolService,
			Composer: composer,
			Queue:    queue,
			Monitor:  monitor,
			Sink:     feed,
		}

		emailSender, err := email.NewSender(email.Config{
			EndpointURL: a.config.Delivery.EmailURL,
			Timeout:     a.config.Delivery.Timeout,
		}, deps)
		if err != nil {
			return nil, fmt.Errorf("create email sender: %w", err)
		}

		smsSender, err := sms.NewSender(sms.Config{
			EndpointURL: a.config.Delivery.SMSURL,
			Timeout:     a.config.Delivery.Timeout,
			RateLimit:   a.config.Delivery.SMSRateLimit,
		}, deps)
		if err != nil {
			return nil, fmt.Errorf("create sms sender: %w", err)
		}

		dispatcher = notifications.NewDispatcher(emailSender, smsSender)
		notificationsHandler = notifications.NewHandler(dispatcher, queue, monitor, feed, schoolService)

		a.queue = queue
		a.monitor = monitor
		a.feed = feed
	}

	attendanceRepo := attendancepostgres.NewRepository(a.db)
	var notifier attendance.Notifier
	if dispatcher != nil {
		notifier = dispatcher
	}
	attendanceService := attendance.NewService(attendanceRepo, schoolService, notifier)
	attendanceHandler := attendance.NewHandler(attendanceService)

	r.Route("/api/v1", func(r chi.Router) {
		schoolHandler.RegisterRoutes(r)
		attendanceHandler.RegisterRoutes(r)
		if notificationsHandler != nil {
			notificationsHandler.RegisterRoutes(r)
		}
	})

	return r, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
