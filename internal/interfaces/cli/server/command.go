// Package server implements the serve command: configuration, wiring,
// the scheduler, and the HTTP surface.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mirra/internal/application/sync/usecases"
	"mirra/internal/infrastructure/cache"
	"mirra/internal/infrastructure/config"
	"mirra/internal/infrastructure/database"
	"mirra/internal/infrastructure/jira"
	"mirra/internal/infrastructure/notion"
	"mirra/internal/infrastructure/repository"
	"mirra/internal/infrastructure/scheduler"
	httpRouter "mirra/internal/interfaces/http"
	syncHandler "mirra/internal/interfaces/http/handlers/sync"
	"mirra/internal/application/sync/mapper"
	"mirra/internal/infrastructure/persistence/models"
	"mirra/internal/shared/constants"
	"mirra/internal/shared/goroutine"
	"mirra/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the sync service",
		Long:  `Start the ticket mirroring service: the scheduler and the HTTP endpoints.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()

	log.Infow("starting service", "environment", env, "projects", len(cfg.Sync.Projects))

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.Get().AutoMigrate(&models.SyncCursorModel{}); err != nil {
		log.Fatalw("failed to migrate database", "error", err)
	}

	cursors, err := buildCursorStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize cursor store", "error", err)
	}

	source := jira.NewClient(cfg.Jira, cfg.Sync, log)
	workspace := notion.NewClient(cfg.Notion, log)
	body := notion.NewBodyBuilder(cfg.Jira.BaseURL)
	fieldMapper := mapper.New(cfg.Sync.FieldMap, cfg.Sync.AlternateFields, cfg.Sync.FallbackUTCOffset, log)

	upserter := usecases.NewUpserter(workspace, fieldMapper, body, log)
	syncUpdatedUC := usecases.NewSyncUpdatedUseCase(source, upserter, cursors, log)
	syncNewUC := usecases.NewSyncNewUseCase(source, upserter, cursors, cfg.Sync.Operator, log)
	syncAllUC := usecases.NewSyncAllUseCase(source, workspace, fieldMapper, body, log)
	tickUC := usecases.NewIncrementalSyncUseCase(syncNewUC, syncUpdatedUC, log)

	sched, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Fatalw("failed to create scheduler", "error", err)
	}

	interval := time.Duration(cfg.Sync.CheckIntervalSeconds) * time.Second
	if err := sched.RegisterSyncJobs(tickUC, cfg.Sync.Projects, interval); err != nil {
		log.Fatalw("failed to register sync jobs", "error", err)
	}

	statusUC := usecases.NewGetStatusUseCase(source, workspace, cursors, sched, cfg.Sync.Projects, log)

	handler := syncHandler.NewSyncHandler(
		syncUpdatedUC,
		syncNewUC,
		syncAllUC,
		statusUC,
		sched.Guard(),
		cfg.Sync.Projects,
		log,
	)
	router := httpRouter.NewRouter(handler, cfg.Server.AllowedOrigins, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

// buildCursorStore picks the configured cursor backend.
func buildCursorStore(cfg *config.Config, log logger.Interface) (usecases.CursorStore, error) {
	switch cfg.Sync.Cursor.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return cache.NewSyncCursorStore(client), nil
	default:
		return repository.NewSyncCursorRepository(database.Get(), log), nil
	}
}

func mapEnvToGinMode(env string) string {
	switch env {
	case constants.EnvProduction:
		return gin.ReleaseMode
	case constants.EnvTest:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
