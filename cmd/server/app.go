package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/devcamper-api/internal/authz"
	"github.com/phrazzld/devcamper-api/internal/config"
	"github.com/phrazzld/devcamper-api/internal/platform/geocoder"
	"github.com/phrazzld/devcamper-api/internal/platform/logger"
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	bootcampStore store.BootcampStore
	courseStore   store.CourseStore

	jwtService      auth.JWTService
	authService     service.AuthService
	bootcampService service.BootcampService
	courseService   service.CourseService
	userService     service.UserService
	enforcer        *authz.Enforcer
}

// runServer loads configuration, connects to the database and serves HTTP
// until the process is interrupted.
func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"geocoding_enabled", cfg.Geocoder.Enabled())

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	passwords := auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.bootcampStore = postgres.NewPostgresBootcampStore(db, logger)
	app.courseStore = postgres.NewPostgresCourseStore(db, logger)

	pipeline := query.Pipeline{
		MaxLimit:        cfg.Query.MaxLimit,
		LegacyPrevPage:  cfg.Query.LegacyPrevPage,
		UnfilteredCount: cfg.Query.UnfilteredCount,
	}

	// A nil *MapQuest must not end up inside the interface.
	var geo service.Geocoder
	if g := geocoder.New(cfg.Geocoder, logger); g != nil {
		geo = g
	} else {
		logger.Warn("geocoding disabled, bootcamps will be stored without coordinates")
	}

	app.authService, err = service.NewAuthService(
		app.userStore,
		db,
		app.jwtService,
		passwords,
		passwords,
		newLogNotifier(logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.bootcampService, err = service.NewBootcampService(
		app.bootcampStore,
		app.courseStore,
		db,
		geo,
		pipeline,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bootcamp service: %w", err)
	}

	app.courseService, err = service.NewCourseService(app.courseStore, app.bootcampStore, db, pipeline, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create course service: %w", err)
	}

	app.userService = service.NewUserService(app.userStore, passwords, db, pipeline, logger)

	app.enforcer, err = authz.NewEnforcer(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization policy: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
