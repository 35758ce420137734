package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-weave/internal/api"
	"go-weave/internal/api/handler"
	"go-weave/internal/auth"
	"go-weave/internal/config"
	"go-weave/internal/coordinator"
	"go-weave/internal/core/ports"
	"go-weave/internal/core/postgres/repository"
	"go-weave/internal/graphsync"
	"go-weave/internal/infrastructure/engine"
	"go-weave/internal/infrastructure/redis"
	"go-weave/internal/log"
	"go-weave/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the stage event coordinator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		log.SetLevel(cfg.Log.Level)
		log.SetJSON(cfg.Log.JSON)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	lg := log.GetLogger()

	// 1. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.New(lg, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// 2. Redis: ingest queue and event bus
	redisClient, err := redis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.PoolSize)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	queue := redis.NewRedisQueue(redisClient)
	bus := redis.NewRedisEventBus(redisClient)

	// 3. Identity
	authenticator, err := auth.New(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	identity := auth.ContextProvider{}

	// 4. Execution engine; without one the server still edits graphs
	var dispatcher ports.ExecutionEngine
	if client, err := engine.NewClient(cfg.Engine.URL, identity, cfg.Engine.Timeout); err != nil {
		lg.WithError(err).Warn("execution engine disabled, execute requests will answer 503")
	} else {
		dispatcher = client
	}

	// 5. Repositories and services
	workflows := repository.NewWorkflowRepository(db)
	executions := repository.NewExecutionRepository(db)
	uploads := repository.NewUploadJobRepository(db)

	workflowSvc := service.NewWorkflowService(workflows, graphsync.NewSynchronizer(repository.NewGraphStore(db)))
	executionSvc := service.NewExecutionService(workflows, executions, dispatcher, bus)
	uploadSvc := service.NewUploadService(uploads, queue)

	// 6. Coordinator
	coordinatorDone := make(chan error, 1)
	go func() {
		coordinatorDone <- coordinator.NewCoordinator(uploadSvc, bus).Start(ctx)
	}()

	// 7. Routes
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Handlers{
		Workflows:  handler.NewWorkflowHandler(workflowSvc, identity),
		Executions: handler.NewExecutionHandler(executionSvc, identity),
		Uploads:    handler.NewUploadHandler(uploadSvc, identity),
		Health:     handler.NewHealthHandler(sqlDB, queue),
	}, authenticator.RequireAuth())

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Start server
	serverErr := make(chan error, 1)
	go func() {
		lg.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case err := <-coordinatorDone:
		if err != nil {
			return err
		}
		lg.Warn("coordinator stopped, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	lg.WithFields(logrus.Fields{"addr": srv.Addr}).Info("server stopped")
	return nil
}
