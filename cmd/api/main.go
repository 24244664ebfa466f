package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/trackloop/issue-tracker/internal/api/http"
	"github.com/trackloop/issue-tracker/internal/api/http/handlers"
	"github.com/trackloop/issue-tracker/internal/auth"
	"github.com/trackloop/issue-tracker/internal/config"
	"github.com/trackloop/issue-tracker/internal/events"
	"github.com/trackloop/issue-tracker/internal/observability"
	"github.com/trackloop/issue-tracker/internal/persistence"
	"github.com/trackloop/issue-tracker/internal/repository"
	"github.com/trackloop/issue-tracker/internal/service"
	"github.com/trackloop/issue-tracker/internal/storage"
	"github.com/trackloop/issue-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	fileStore, err := storage.NewLocalFileStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	issueRepo := repository.NewIssueRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)

	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   issueRepo,
		ProjectRepo: projectRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	projectService := service.NewProjectService(projectRepo)

	sink := persistence.NewNotificationStream(redis, cfg.Notification)
	notificationService := service.NewNotificationService(dispatcher, sink, metrics, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth.JWTSecret))

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	issuesHandler := handlers.NewIssuesHandler(issueService, fileStore)
	projectsHandler := handlers.NewProjectsHandler(projectService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Issues:         issuesHandler,
		Projects:       projectsHandler,
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
