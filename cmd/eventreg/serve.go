package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "eventreg/docs"
	"eventreg/config"
	"eventreg/internal/adapters/auth"
	deliveryhttp "eventreg/internal/delivery/http"
	"eventreg/internal/delivery/http/controllers"
	"eventreg/internal/domain"
	"eventreg/internal/repository/memory"
	"eventreg/internal/repository/postgres"
	"eventreg/internal/services"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving (postgres only)")
	rootCmd.AddCommand(serveCmd)
}

// repositories is the storage side of the service graph.
type repositories struct {
	events        domain.EventRepository
	registrations domain.RegistrationRepository
	locker        domain.EventLocker
	users         domain.UserRepository
	roles         domain.RoleRepository
	close         func() error
}

func openRepositories(ctx context.Context) (*repositories, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		return &repositories{
			events:        store.Events(),
			registrations: store.Registrations(),
			locker:        store.Locker(),
			users:         store.Users(),
			roles:         store.Roles(),
			close:         func() error { return nil },
		}, nil
	}

	db, err := openPostgres(ctx)
	if err != nil {
		return nil, err
	}
	if migrateOnStart {
		if err := postgres.Migrate(db, postgres.MigrateUp); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &repositories{
		events:        postgres.NewEventRepository(db),
		registrations: postgres.NewRegistrationRepository(db),
		locker:        postgres.NewEventLocker(db),
		users:         postgres.NewUserRepository(db),
		roles:         postgres.NewRoleRepository(db),
		close:         db.Close,
	}, nil
}

func openPostgres(ctx context.Context) (*sql.DB, error) {
	return postgres.Open(ctx, cfg.DBUrl, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting event registration service",
		slog.String("env", cfg.Environment), slog.String("storage", cfg.StorageDriver))

	repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	jwt := auth.NewJWT(cfg.JWTSecret)
	authService := services.NewAuthService(repos.users, repos.roles, auth.NewBcryptHasher(cfg.BcryptCost), jwt, cfg.JWTExpiry)
	eventService := services.NewEventService(repos.events, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(repos.events, repos.registrations, repos.locker, logger, cfg.RequestTimeout)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:         logger,
		Verifier:       jwt,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Auth:           controllers.NewAuthController(logger, authService),
		Events:         controllers.NewEventController(logger, eventService),
		Registrations:  controllers.NewRegistrationController(logger, registrationService),
		Admin:          controllers.NewAdminController(logger, eventService, registrationService),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
