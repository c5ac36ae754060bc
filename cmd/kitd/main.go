package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/auth"
	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/handler"
	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/middleware"
	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/internal/storage"
	ws "github.com/contentkit/studio/internal/websocket"
	"github.com/contentkit/studio/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	notifications := service.NewNotificationService(redisClient, asynqClient)

	var archives service.ArchiveStore
	if store, err := storage.NewR2Store(ctx, cfg.R2, logger); err == nil {
		archives = store
	} else if !errors.Is(err, storage.ErrNotConfigured) {
		logger.Fatal("failed to initialize R2 storage", zap.Error(err))
	} else {
		logger.Warn("R2 storage not configured, kit sharing disabled")
	}

	var verifier auth.TokenVerifier
	if cfg.Zitadel.IssuerURL() != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.Zitadel, nil)
		if err != nil {
			logger.Warn("JWKS verification unavailable, using legacy tokens only", zap.Error(err))
		} else {
			verifier = v
		}
	}

	studio := &handler.Studio{
		Backend:  cfg.Backend,
		Polling:  cfg.Polling,
		Redis:    redisClient,
		Notifier: notifications,
		Lists:    hub,
		Archives: archives,
		Validate: validator.New(),
		Logger:   logger,
	}
	jobs := handler.NewJobs(hub, cfg.Gateway.JobTimeout, logger)

	kitHandler := handler.NewKitHandler(studio, jobs)
	uploadHandler := handler.NewUploadHandler(studio, jobs)
	importHandler := handler.NewImportHandler(studio, jobs)
	insightHandler := handler.NewInsightHandler(studio)
	resourceHandler := handler.NewResourceHandler(studio)
	notificationHandler := handler.NewNotificationHandler(notifications)
	streamHandler := handler.NewStreamHandler(hub, jobs)

	authMiddleware := middleware.NewAuthMiddleware(verifier, cfg.JWT.Secret)
	authHandler := handler.NewAuthHandler(authMiddleware)
	authenticate := authMiddleware.Authenticate()
	if cfg.Gateway.TrustForwardedIdentity {
		authenticate = middleware.ForwardedIdentity()
	}
	rateLimiter := middleware.NewRateLimiter(redisClient, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(logger),
		BodyLimit:             cfg.Gateway.BodyLimitMB << 20,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.AccessLog(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Gateway.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/health", handler.Health(redisClient))
	app.Get("/metrics", handler.Metrics())
	app.Get("/auth/verify", authHandler.Verify)

	api := app.Group("/api", authenticate)

	kits := api.Group("/kits")
	kits.Post("/", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), kitHandler.Generate)
	kits.Get("/", kitHandler.List)
	kits.Get("/:jobId", kitHandler.Status)
	kits.Delete("/:jobId", kitHandler.Delete)
	kits.Get("/:jobId/download", kitHandler.Download)
	kits.Post("/:jobId/share", kitHandler.Share)

	api.Post("/uploads", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), uploadHandler.Upload)
	api.Get("/files", uploadHandler.Files)
	api.Delete("/files/:fileId", uploadHandler.DeleteFile)

	api.Post("/imports", rateLimiter.ImportLimit(cfg.RateLimit.ImportPerHour), importHandler.Start)

	api.Get("/suggestions", insightHandler.Suggestions)
	api.Post("/suggestions/:id/dismiss", insightHandler.Dismiss)
	api.Get("/milestones", insightHandler.Milestones)
	api.Get("/analytics", insightHandler.Analytics)

	api.Get("/accounts", resourceHandler.Accounts)
	api.Post("/accounts/:platform/connect", resourceHandler.Connect)
	api.Delete("/accounts/:platform", resourceHandler.Disconnect)
	api.Post("/accounts/:platform/posts", resourceHandler.Post)
	api.Post("/schedule", resourceHandler.Schedule)
	api.Get("/schedule", resourceHandler.Scheduled)
	api.Delete("/schedule/:id", resourceHandler.CancelScheduled)
	api.Get("/knowledge-base/documents", resourceHandler.Documents)
	api.Delete("/knowledge-base/documents/:id", resourceHandler.DeleteDocument)
	api.Post("/knowledge-base/search", resourceHandler.Search)
	api.Post("/content/generate", resourceHandler.GenerateContent)
	api.Post("/content/extract", resourceHandler.Extract)

	api.Get("/notifications", notificationHandler.List)
	api.Delete("/notifications", notificationHandler.Clear)

	wsGroup := app.Group("/ws", streamHandler.Upgrade, authenticate)
	wsGroup.Get("/jobs/:jobId", streamHandler.AuthorizeJob, streamHandler.Serve())
	wsGroup.Get("/notifications", streamHandler.AuthorizeNotifications, streamHandler.Serve())

	go startWorkerServer(ctx, redisOpt, notifications, hub, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Server.Port
	logger.Info("server starting", zap.String("addr", addr), zap.String("backend", cfg.Backend.BaseURL))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func startWorkerServer(ctx context.Context, redisOpt asynq.RedisClientOpt, notifications *service.NotificationService, hub *ws.Hub, logger *zap.Logger) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			service.QueueNotify: 1,
		},
	})

	notificationWorker := worker.NewNotificationWorker(notifications, hub, logger)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeNotify, notificationWorker.ProcessTask)

	if err := srv.Start(mux); err != nil {
		logger.Error("asynq worker error", zap.Error(err))
		return
	}
	<-ctx.Done()
	srv.Shutdown()
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "SERVICE_ERROR",
				"message": message,
			},
		})
	}
}
