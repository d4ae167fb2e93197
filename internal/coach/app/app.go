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

	httpapi "github.com/quierolab/quiero/internal/coach/http"
	"github.com/quierolab/quiero/internal/coach/mail"
	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/internal/coach/store/drivers/sqlite"
	"github.com/quierolab/quiero/pkg/cryptox"
	"github.com/quierolab/quiero/pkg/jwtx"
	"github.com/quierolab/quiero/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the coach service together: store, mailer, key manager,
// services, router and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager
	mailer     service.Mailer

	authService          *service.AuthService
	routingService       *service.RoutingService
	coacheeService       *service.CoacheeService
	invitationService    *service.InvitationService
	passwordResetService *service.PasswordResetService
	goalService          *service.GoalService
	actionService        *service.ActionService
	settingsService      *service.SettingsService
	userService          *service.UserService
	housekeepingService  *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "coach-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := jwtx.NewKeyManager(cfg.Issuer)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	ctx := context.Background()
	app.housekeepingService.Start(ctx)

	app.logger.Info("coach service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the HTTP server, the housekeeping sweeper and
// the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down coach service...")

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

	app.logger.Info("coach service stopped")
	return nil
}

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

func (app *Application) initMailer() {
	if app.cfg.SendGridAPIKey == "" {
		app.logger.Warn("no sendgrid api key configured, mail will be logged instead of sent")
		app.mailer = mail.LogMailer{}
		return
	}

	mailer, err := mail.NewSendGridMailer(app.cfg.SendGridAPIKey, app.cfg.MailFromName, app.cfg.MailFromAddr)
	if err != nil {
		app.logger.Warn("sendgrid mailer misconfigured, falling back to log mailer", "error", err)
		app.mailer = mail.LogMailer{}
		return
	}
	app.mailer = mailer
}

func (app *Application) initServices() {
	app.routingService = &service.RoutingService{Store: app.db}

	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.keyManager.Signer,
		Routing:    app.routingService,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.coacheeService = &service.CoacheeService{Store: app.db}

	app.invitationService = &service.InvitationService{
		Store:   app.db,
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
		TTL:     app.cfg.InvitationTTL,
	}

	app.passwordResetService = &service.PasswordResetService{
		Store:   app.db,
		Mailer:  app.mailer,
		BaseURL: app.cfg.BaseURL,
		TTL:     app.cfg.ResetTTL,
	}

	app.goalService = &service.GoalService{Store: app.db}
	app.actionService = &service.ActionService{Store: app.db}
	app.settingsService = &service.SettingsService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = &service.HousekeepingService{
		Store:    app.db,
		Interval: app.cfg.HousekeepingInterval,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.cfg.FrontendBase,
		app.db,
		app.logger,
		app.cfg.CORSOrigin,
	)

	router.AuthService = app.authService
	router.RoutingService = app.routingService
	router.CoacheeService = app.coacheeService
	router.InvitationService = app.invitationService
	router.PasswordResetService = app.passwordResetService
	router.GoalService = app.goalService
	router.ActionService = app.actionService
	router.SettingsService = app.settingsService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
