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

	httpweb "github.com/katsuhira/adminlite/internal/admin/http"
	"github.com/katsuhira/adminlite/internal/admin/service"
	"github.com/katsuhira/adminlite/internal/admin/store"
	"github.com/katsuhira/adminlite/internal/admin/store/drivers/sqlite"
	"github.com/katsuhira/adminlite/pkg/sessionx"
	"github.com/katsuhira/adminlite/pkg/slogx"
)

// BuildVersion and BuildTime are stamped in at build time via -ldflags.
var (
	BuildVersion = "dev"
	BuildTime    = "unknown"
)

const (
	// pingAttempts bounds the startup wait for the database to become
	// reachable before giving up.
	pingAttempts  = 5
	pingBaseDelay = 500 * time.Millisecond
)

// Application encapsulates the admin web app with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	ring *sessionx.KeyRing

	authService      *service.AuthService
	userService      *service.UserService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpweb.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "adminlite",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	ring, err := initSessionRing(ctx, cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.ring = ring

	app.initServices()
	app.seedAdmin(ctx)

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("adminlite starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down adminlite...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("adminlite stopped")
	return nil
}

// initDatabase opens the store, waits for it to become reachable, and
// applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := app.pingDatabase(); err != nil {
		_ = db.Close()
		return err
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// pingDatabase retries a bounded number of times with increasing delay so
// a briefly unavailable database file (e.g. a slow volume mount) does not
// kill startup.
func (app *Application) pingDatabase() error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = app.db.Ping(context.Background()); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			delay := pingBaseDelay * time.Duration(attempt)
			app.logger.Warn("database not reachable, retrying",
				"attempt", attempt, "delay", delay, "error", err)
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", pingAttempts, err)
}

// initServices initializes the business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminPassword: app.cfg.AdminPassword,
	}
}

// seedAdmin ensures the admin account exists with the configured password.
// Failure is logged and startup continues; the rest of the app still works
// for existing accounts.
func (app *Application) seedAdmin(ctx context.Context) {
	if app.cfg.UsingDefaultAdminPassword() {
		app.logger.Warn("ADMIN_PASSWORD not set; using the default development password",
			"username", service.AdminUsername)
	}

	ctx = slogx.WithContext(ctx, app.logger)
	if err := app.bootstrapService.Seed(ctx); err != nil {
		app.logger.Error("admin bootstrap failed", "error", err)
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() error {
	renderer, err := httpweb.NewRenderer(BuildVersion, BuildTime)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	sessions := &httpweb.Sessions{Ring: app.ring, TTL: app.cfg.SessionTTL}

	router := httpweb.NewRouter(sessions, renderer, app.logger)
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
