package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/notify"
	"yamdb/internal/throttle"

	"github.com/gin-gonic/gin"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	superuser := flag.String("superuser", "", "create or promote a superuser, format username:email")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger, *migrateOnly, *superuser); err != nil {
		logger.Error("api server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, migrateOnly bool, superuser string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", slog.String("error", err.Error()))
		}
	}()

	if err := database.Migrate(db, logger); err != nil {
		return err
	}
	if migrateOnly {
		logger.Info("migrations applied")
		return nil
	}

	var m *metrics.Metrics
	if cfg.PrometheusEnabled {
		m = metrics.New()
	}

	mailer, err := notify.NewMailer(cfg, logger)
	if err != nil {
		return err
	}

	// a nil interface disables the cooldown, not a nil *throttle.Cooldown
	var cooldown service.Cooldown
	if cfg.RedisURL != "" {
		client, err := throttle.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		cooldown = throttle.NewCooldown(client, "yamdb:signup:", cfg.SignupCooldown)
		logger.Info("signup cooldown enabled", slog.Duration("window", cfg.SignupCooldown))
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	workRepo := repository.NewWorkRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, mailer, cooldown, cfg, logger, m)

	if superuser != "" {
		return bootstrapSuperuser(ctx, authService, superuser)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Auth:        authService,
		Users:       service.NewUserService(userRepo, logger),
		Categories:  service.NewCategoryService(categoryRepo, logger),
		Genres:      service.NewGenreService(genreRepo, logger),
		Works:       service.NewWorkService(workRepo, categoryRepo, genreRepo, logger),
		Reviews:     service.NewReviewService(reviewRepo, workRepo, logger, m),
		Comments:    service.NewCommentService(commentRepo, reviewRepo, logger),
		Logger:      logger,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
		Ping:        func(ctx context.Context) error { return database.Ping(ctx, db) },
	})

	return serve(ctx, cfg, logger, router)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, router http.Handler) error {
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening",
			slog.String("addr", cfg.HTTPAddr()),
			slog.String("database", cfg.DatabaseDriver),
			slog.String("email_backend", cfg.EmailBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	logger.Info("shutting down api server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func bootstrapSuperuser(ctx context.Context, auth service.AuthService, value string) error {
	username, email, ok := strings.Cut(value, ":")
	if !ok || username == "" || email == "" {
		return fmt.Errorf("-superuser expects username:email, got %q", value)
	}
	_, err := auth.EnsureSuperuser(ctx, username, email)
	return err
}
