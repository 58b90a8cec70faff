package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/visahub/backend/api/handler"
	"github.com/visahub/backend/internal/config"
	"github.com/visahub/backend/internal/infrastructure/buffer"
	"github.com/visahub/backend/internal/infrastructure/monitor"
	pgInfra "github.com/visahub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/visahub/backend/internal/infrastructure/redis"
	"github.com/visahub/backend/internal/middleware"
	"github.com/visahub/backend/internal/personalization"
	"github.com/visahub/backend/internal/router"
	"github.com/visahub/backend/internal/services"
	"github.com/visahub/backend/internal/services/lifecycle"
	"github.com/visahub/backend/pkg/httpcontext"
	"github.com/visahub/backend/pkg/logger"
	"github.com/visahub/backend/repository/postgres"
	redisRepo "github.com/visahub/backend/repository/redis"
	complianceUC "github.com/visahub/backend/usecase/compliance"
	profileUC "github.com/visahub/backend/usecase/profile"
	tasksUC "github.com/visahub/backend/usecase/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	resultCache := redisRepo.NewPersonalizationCache(redisClient, cfg.Personalization.CacheTTL)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		profileRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	personalizer := personalization.NewClient(personalization.Config{
		URL:     cfg.Personalization.URL,
		APIKey:  cfg.Personalization.APIKey,
		Timeout: cfg.Personalization.Timeout,
	}, zapLogger)

	engine := complianceUC.New(taskRepo, personalizer, zapLogger,
		complianceUC.WithCache(resultCache, redisRepo.Fingerprint))
	profileUseCase := profileUC.New(profileRepo, bufferBridge, zapLogger)
	taskManager := tasksUC.NewManager(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:       apiHandler.NewTaskHandler(taskManager, ctxAdapter, zapLogger),
		Compliance: apiHandler.NewComplianceHandler(engine, profileUseCase, ctxAdapter, zapLogger),
		Profile:    apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
