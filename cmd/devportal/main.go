package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/neomorfeo/devportal/internal/adapter/fsm"
	handler "github.com/neomorfeo/devportal/internal/adapter/http"
	"github.com/neomorfeo/devportal/internal/adapter/mail"
	"github.com/neomorfeo/devportal/internal/adapter/otel"
	"github.com/neomorfeo/devportal/internal/adapter/river"
	"github.com/neomorfeo/devportal/internal/adapter/sqlite"
	"github.com/neomorfeo/devportal/internal/app"
	"github.com/neomorfeo/devportal/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("devportal exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	otelCfg, err := otel.ConfigFromEnv()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, otelCfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := openDB(cfg.DatabasePath, otelCfg.Exporter)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	directory := sqlite.NewUserDirectory(db)
	vendors := otel.NewTracingVendorRepository(sqlite.NewVendorRepository(db))
	invitations := otel.NewTracingInvitationRepository(sqlite.NewInvitationRepository(db))

	mailer := mail.New(cfg.SMTP, nil)
	if !mailer.Enabled() {
		logger.Warn("SMTP_HOST is not set, emails will be dropped")
	}

	riverClient, err := river.Setup(ctx, db, mailer)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error("river shutdown", "error", err)
		}
	}()

	notifier, err := otel.NewTracingNotifier(river.NewNotifier(riverClient, cfg.AdminEmail))
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}

	// --- Application ---
	manager := app.NewInvitationManager(invitations, fsm.New(), time.Now)
	svc := app.NewVendorService(vendors, otel.NewTracingDirectory(directory), notifier, mail.Templates{}, manager, cfg.APIEndpoint)

	if err := seedAdmin(ctx, directory, cfg.SeedAdminEmail); err != nil {
		return err
	}

	// --- Adapters (in) ---
	limiter := handler.NewRateLimiter(cfg.AcceptRateLimit.RPS, cfg.AcceptRateLimit.Burst)
	go limiter.Run(ctx)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: otelCfg.ServiceName,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		LogLevel:    cfg.Level(),
		Handlers: handler.Handlers{
			Service:  svc,
			Accounts: directory,
			Limiter:  limiter,
		},
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("devportal listening", "port", cfg.Port, "docs", fmt.Sprintf("http://localhost:%d/docs", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// openDB returns a migrated database. Statements are traced unless telemetry
// export is turned off.
func openDB(path, exporter string) (*sql.DB, error) {
	if exporter == "none" {
		return sqlite.Open(path)
	}

	db, err := otel.OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newLogger builds the JSON logger shared by the app and the request logger.
func newLogger(cfg *config.Config, otelCfg otel.Config) *slog.Logger {
	schema := httplog.SchemaECS.Concise(otelCfg.Environment == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.Level(),
		ReplaceAttr: schema.ReplaceAttr,
	})).With(
		slog.String("service", otelCfg.ServiceName),
		slog.String("version", otelCfg.ServiceVersion),
		slog.String("env", otelCfg.Environment),
	)
}

// seedAdmin makes sure the configured administrator exists and holds admin rights.
func seedAdmin(ctx context.Context, directory *sqlite.UserDirectory, email string) error {
	if email == "" {
		return nil
	}

	user, found, err := directory.FindUser(ctx, email)
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if !found {
		if err := directory.Register(ctx, email, email); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}
	if !found || !user.IsAdmin {
		if err := directory.SetAdmin(ctx, email, true); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}
	return nil
}
