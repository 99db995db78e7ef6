// @title OMR Evaluation API
// @version 1.0
// @description Answer key upload, OMR sheet scoring and result export for colleges.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "omr-eval/cmd/api/docs"
	"omr-eval/internal/adapter"
	"omr-eval/internal/adapter/omr"
	"omr-eval/internal/adapter/storage"
	"omr-eval/internal/cache"
	"omr-eval/internal/config"
	"omr-eval/internal/database"
	"omr-eval/internal/domain"
	"omr-eval/internal/handler"
	"omr-eval/internal/logger"
	"omr-eval/internal/metrics"
	"omr-eval/internal/middleware"
	"omr-eval/internal/repository"
	"omr-eval/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXDB(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.DB.Driver))

	// Redis is optional; without it every answer key read goes to the database.
	var answerKeyCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		answerKeyCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	} else {
		appLogger.Warn("Redis address not configured, answer key cache disabled")
	}

	var archive domain.SheetArchive = storage.NoopArchive{}
	if cfg.Storage.Enabled {
		minioArchive, err := storage.NewMinioArchive(cfg.Storage)
		if err != nil {
			appLogger.Fatal("Failed to create sheet archive", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = minioArchive.EnsureBucket(ctx)
		cancel()
		if err != nil {
			appLogger.Fatal("Failed to prepare archive bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		archive = minioArchive
		appLogger.Info("Sheet archive enabled", zap.String("endpoint", cfg.Storage.Endpoint), zap.String("bucket", cfg.Storage.Bucket))
	}

	var extractor domain.SheetExtractor
	switch cfg.OMR.Engine {
	case "json":
		extractor = omr.NewJSONExtractor()
	default:
		extractor = omr.NewDemoExtractor()
	}
	appLogger.Info("OMR engine selected", zap.String("engine", cfg.OMR.Engine))

	collegeRepo := repository.NewCollegeDatabaseAdapter(db)
	batchRepo := repository.NewBatchDatabaseAdapter(db)
	studentRepo := repository.NewStudentDatabaseAdapter(db)
	answerKeyRepo := repository.NewAnswerKeyDatabaseAdapter(db)
	resultRepo := repository.NewEvaluationResultDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	authService, err := service.NewAuthService(collegeRepo, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	batchService := service.NewBatchService(batchRepo)
	answerKeyService := service.NewAnswerKeyService(answerKeyRepo, batchService, answerKeyCache, archive, cfg)
	evaluationService := service.NewEvaluationService(
		batchService, answerKeyService, extractor, studentRepo, resultRepo, txManager, archive, cfg,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return domain.NewInternalError("database unavailable", err)
		}
		if answerKeyCache != nil {
			if err := answerKeyCache.Ping(ctx); err != nil {
				return domain.NewInternalError("cache unavailable", err)
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Batch:      handler.NewBatchHandler(batchService, answerKeyService),
		Evaluation: handler.NewEvaluationHandler(evaluationService),
	}, authService, handler.AuthRateLimit{
		Max:        cfg.Server.AuthRateLimit,
		Expiration: cfg.Server.AuthRateWindow,
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
