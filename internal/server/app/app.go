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

	"github.com/quietlane/voicegate/internal/server/github"
	httpapi "github.com/quietlane/voicegate/internal/server/http"
	"github.com/quietlane/voicegate/internal/server/service"
	"github.com/quietlane/voicegate/internal/server/store"
	"github.com/quietlane/voicegate/internal/server/store/drivers/sqlite"
	"github.com/quietlane/voicegate/internal/server/whisper"
	"github.com/quietlane/voicegate/pkg/jwtx"
	"github.com/quietlane/voicegate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	appName = "voicegate"
)

// Application encapsulates the voice server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	codec   *jwtx.Codec
	github  *github.Client
	whisper *whisper.Client

	// Services
	authService       *service.AuthService
	loginService      *service.LoginService
	userService       *service.UserService
	whitelistService  *service.WhitelistService
	bootstrapService  *service.BootstrapService
	dictionaryService *service.DictionaryService
	transcribeService *service.TranscribeService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: appName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.github = github.NewClient(
		cfg.GithubClientID,
		cfg.GithubClientSecret,
		cfg.callbackURL(),
	)
	app.whisper = whisper.NewClient(cfg.WhisperURL, cfg.WhisperTimeout)

	app.initServices()

	// Seed the whitelist before serving so the first request can already
	// pass the gate.
	if err := app.bootstrapService.EnsureInitialAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed initial admin: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("voice server starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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
	app.logger.Info("shutting down voice server...")

	// Give outstanding requests a deadline for completion
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

	app.logger.Info("voice server stopped")
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
	app.authService = &service.AuthService{
		Codec: app.codec,
		Store: app.db,
	}
	app.loginService = &service.LoginService{
		Store: app.db,
		Codec: app.codec,
	}
	app.userService = &service.UserService{
		Store:                app.db,
		InitialAdminGithubID: app.cfg.InitialAdminGithubID,
	}
	app.whitelistService = &service.WhitelistService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:                      app.db,
		InitialAdminGithubID:       app.cfg.InitialAdminGithubID,
		InitialAdminGithubUsername: app.cfg.InitialAdminGithubUsername,
	}
	app.dictionaryService = &service.DictionaryService{Store: app.db}
	app.transcribeService = &service.TranscribeService{
		Whisper:    app.whisper,
		Dictionary: app.dictionaryService,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(appName, BuildVersion, app.authService, app.db, app.logger)

	// Wire services to router
	router.LoginHandler = &httpapi.LoginHandler{
		GitHub: app.github,
		Login:  app.loginService,
	}
	router.UserService = app.userService
	router.WhitelistService = app.whitelistService
	router.DictionaryService = app.dictionaryService
	router.TranscribeService = app.transcribeService
	router.WhisperClient = app.whisper
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// callbackURL derives the OAuth redirect target from the public URL when
// one is configured, falling back to the local listen address.
func (cfg Config) callbackURL() string {
	base := cfg.PublicURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return base + "/auth/callback"
}
