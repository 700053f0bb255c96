// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/autopost-go/internal/auth"
	"github.com/olegiv/autopost-go/internal/blogger"
	"github.com/olegiv/autopost-go/internal/cache"
	"github.com/olegiv/autopost-go/internal/config"
	"github.com/olegiv/autopost-go/internal/content"
	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/geoip"
	"github.com/olegiv/autopost-go/internal/handler"
	"github.com/olegiv/autopost-go/internal/imaging"
	"github.com/olegiv/autopost-go/internal/logging"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/publish"
	"github.com/olegiv/autopost-go/internal/render"
	"github.com/olegiv/autopost-go/internal/scheduler"
	"github.com/olegiv/autopost-go/internal/session"
	"github.com/olegiv/autopost-go/internal/state"
	"github.com/olegiv/autopost-go/internal/store"
	"github.com/olegiv/autopost-go/internal/track"
	"github.com/olegiv/autopost-go/internal/version"
	"github.com/olegiv/autopost-go/web"
)

// eventRetention is how long activity log entries are kept.
const eventRetention = 30 * 24 * time.Hour

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Autopost - scheduled blog publishing\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_SESSION_SECRET      Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_DATA_DIR            Data directory for JSON documents and images (default: ./data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_DB_PATH             SQLite database path (default: ./data/autopost.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_BASE_URL            Public base URL for generated image links (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_CONTENT_PROVIDER    Article generator: openai|mock (default: openai)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_IMAGE_PROVIDER      Hero image generator: huggingface|openai|mock (default: huggingface)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_BLOG_PROVIDER       Blog host: blogger|mock (default: blogger)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_CONTENT_LANGUAGE    BCP 47 tag articles are written in (default: id)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AUTOPOST_REDIS_URL           Redis URL for the cache backend (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/autopost-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("autopost %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directories exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// JSON document store holding posts, titles, config and keys
	fileStore, err := store.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening data directory: %w", err)
	}
	if err := store.WriteSampleFiles(cfg.DataDir); err != nil {
		slog.Warn("failed to write sample upload files", "error", err)
	}

	// Application lifetime context: the state manager and the publish
	// poller outlive any single request.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	stateManager := state.New(fileStore, logger)
	go stateManager.Run(appCtx)
	slog.Info("state manager started", "dir", fileStore.Dir())

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Cache backend for keyword research and stats
	cacheBackend, err := cache.New(cfg.CacheBackend, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache initialized", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL.String())

	// Master key gate
	gate := auth.NewGate(fileStore)

	// GeoIP lookups for visit tracking (optional)
	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable", "error", err)
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()
	if geo.IsEnabled() {
		slog.Info("geoip lookups enabled", "path", cfg.GeoIPDBPath)
	}

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Provider credentials are read per publish so key updates apply
	// without a restart.
	keysFn := func() model.APIKeys { return stateManager.Keys(context.Background()) }

	var generator content.Generator
	switch cfg.ContentProvider {
	case "mock":
		generator = content.NewMockGenerator()
	default:
		generator = content.NewOpenAIGenerator(keysFn, cfg.ChatModel, logger)
	}

	imageStore := imaging.NewStore(cfg.DataDir, cfg.BaseURL)
	var imageGen imaging.Generator
	switch cfg.ImageProvider {
	case "mock":
		imageGen = imaging.NewMock(imageStore)
	case "openai":
		imageGen = imaging.NewOpenAI(keysFn, imageStore, logger)
	default:
		imageGen = imaging.NewHuggingFace(keysFn, imageStore, logger)
	}

	var host blogger.Publisher
	switch cfg.BlogProvider {
	case "mock":
		host = blogger.NewMock("autopost-dev")
	default:
		host = blogger.NewGoogle(keysFn, logger)
	}
	slog.Info("providers wired",
		"content", cfg.ContentProvider,
		"image", cfg.ImageProvider,
		"blog", cfg.BlogProvider,
		"language", cfg.ContentLanguage)

	// Performance tracking and the optional publish webhook
	tracker := track.New(db, logger)
	notifier := track.NewNotifier(cfg.WebhookURL, cfg.WebhookSecret, db, logger)
	defer notifier.Close()
	if notifier.Enabled() {
		slog.Info("publish webhook enabled", "url", cfg.WebhookURL)
	}

	pipeline := &publish.Pipeline{
		Content:    generator,
		Images:     imageGen,
		Plagiarism: content.NewHeuristicChecker(cfg.SearchAPIKey, logger),
		Host:       host,
		Research:   content.NewResearcher(cacheBackend, cfg.ContentLanguage, logger),
		Tracker:    tracker,
		Notifier:   notifier,
		Language:   cfg.ContentLanguage,
		Logger:     logger,
	}

	// Start the publish poller
	sched := scheduler.New(stateManager, pipeline, cfg.PublishTolerance, logger)
	if err := sched.Start(appCtx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Activity log
	eventService := events.NewService(db)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-appCtx.Done():
				return
			case <-ticker.C:
				if err := eventService.DeleteOldEvents(appCtx, eventRetention); err != nil {
					slog.Warn("event log cleanup failed", "error", err)
				}
			}
		}
	}()

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Rate limiters: gentle on the login page, roomier on the JSON API
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	apiRateLimiter := middleware.NewGlobalRateLimiter(20.0, 40)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(gate, renderer, sessionManager, loginProtection, eventService)
	dashboardHandler := handler.NewDashboardHandler(stateManager, sched, renderer)
	titlesHandler := handler.NewTitlesHandler(stateManager, eventService)
	postsHandler := handler.NewPostsHandler(stateManager, eventService)
	settingsHandler := handler.NewSettingsHandler(stateManager, eventService, cfg)
	schedulerHandler := handler.NewSchedulerHandler(sched, appCtx, eventService)
	healthHandler := handler.NewHealthHandler(db, stateManager, cfg.DataDir)
	statsHandler := handler.NewStatsHandler(tracker)
	eventsHandler := handler.NewEventsHandler(eventService)
	debugHandler := handler.NewDebugHandler(stateManager, sched, fileStore, cfg, healthHandler.StartTime())

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                    // Gzip compression with level 5
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // 30 second request timeout
	r.Use(middleware.StripTrailingSlash)        // Redirect /path/ to /path (301)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.Visits(tracker, geo, logger))

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	slog.Info("CSRF protection initialized")

	// Health check route (public, for uptime monitors)
	r.Get(handler.RouteAPIHealth, healthHandler.Health)

	// Auth routes (public, with CSRF and rate limiting)
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Dashboard pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireLogin(sessionManager))
		r.Get(handler.RouteRoot, dashboardHandler.Home)
		r.Get(handler.RouteDebug, debugHandler.Debug)
	})

	// JSON API (protected, session authenticated)
	r.Group(func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireLoginAPI(sessionManager))

		r.Post(handler.RouteAPIBulkUpload, titlesHandler.Upload)
		r.Post(handler.RouteAPIScheduleBulk, titlesHandler.ScheduleBulk)
		r.Get(handler.RouteAPIBulkTitles, titlesHandler.List)

		r.Get(handler.RouteAPIPosts, postsHandler.List)
		r.Post(handler.RouteAPIPosts, postsHandler.Create)

		r.Get(handler.RouteAPISettingsKeys, settingsHandler.ShowKeys)
		r.Post(handler.RouteAPISettingsKeys, settingsHandler.UpdateKeys)
		r.Get(handler.RouteAPISettingsConfig, settingsHandler.ShowConfig)
		r.Post(handler.RouteAPISettingsConfig, settingsHandler.UpdateConfig)
		r.Post(handler.RouteAPISettingsTest, settingsHandler.TestProviders)

		r.Post(handler.RouteAPISchedulerTrigger, schedulerHandler.Trigger)
		r.Post(handler.RouteAPISchedulerRestart, schedulerHandler.Restart)
		r.Get(handler.RouteAPISchedulerStatus, schedulerHandler.Status)

		r.Get(handler.RouteAPIStats, statsHandler.Stats)
		r.Get(handler.RouteAPIEvents, eventsHandler.List)
	})

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 year
	staticHandler := middleware.StaticCache(365 * 24 * time.Hour)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Generated hero images: cache for 1 week
	imagesDir := filepath.Join(cfg.DataDir, "images")
	imagesHandler := middleware.StaticCache(7 * 24 * time.Hour)(http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))
	r.Handle("/images/*", imagesHandler)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Mitigates slowloris attacks
		MaxHeaderBytes:    1 << 20,          // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
