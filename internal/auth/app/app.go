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

	httpapi "github.com/slicemenu/auth/internal/auth/http"
	"github.com/slicemenu/auth/internal/auth/service"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/internal/auth/store/drivers/sqlite"
	"github.com/slicemenu/auth/pkg/jwtx"
	"github.com/slicemenu/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db   store.Store
	keys *Keys

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	tenantService       *service.TenantService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	app.initServices()

	if err := app.seedAdmin(); err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// seedAdmin creates the configured admin account when missing, so a fresh
// deployment can reach the admin-gated routes. Skipped when no admin email
// is configured.
func (app *Application) seedAdmin() error {
	if app.cfg.AdminEmail == "" {
		app.logger.Warn("no admin email configured, skipping admin seed; admin routes are unreachable until one is created")
		return nil
	}
	if app.cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL is set but ADMIN_PASSWORD is empty")
	}

	created, err := app.bootstrapService.SeedAdmin(context.Background(), service.SeedAdminParams{
		FirstName: app.cfg.AdminFirstName,
		LastName:  app.cfg.AdminLastName,
		Email:     app.cfg.AdminEmail,
		Password:  app.cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		app.logger.Info("seeded admin user", "email", app.cfg.AdminEmail)
	}
	return nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Access:     app.keys.AccessSigner,
		Refresh:    app.keys.RefreshSigner,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.authService = &service.AuthService{Store: app.db, Tokens: app.tokenService}
	app.userService = &service.UserService{Store: app.db}
	app.tenantService = &service.TenantService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	refreshVerifier, err := app.keys.RefreshVerifier(app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to build refresh verifier: %w", err)
	}

	router := httpapi.NewRouter(
		app.keys.AccessSigner,
		app.keys.AccessVerifier(app.cfg.Issuer),
		refreshVerifier,
		app.cfg.CookieDomain,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.UserService = app.userService
	router.TenantService = app.tenantService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
