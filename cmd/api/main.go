package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/config"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/db"
	firebaseutil "github.com/StanfordSpezi/spezi-firebase-sub000/internal/firebase"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/handlers"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/middleware"
	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/push"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/registry"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx := context.Background()

	firebaseApp, err := firebaseutil.InitFirebase(ctx, cfg)
	if err != nil {
		logger.Fatalw("failed to initialize Firebase", "error", err)
	}
	authClient, err := firebaseutil.GetAuthClient(ctx, firebaseApp)
	if err != nil {
		logger.Fatalw("failed to initialize Firebase Auth", "error", err)
	}
	messagingClient, err := firebaseutil.GetMessagingClient(ctx, firebaseApp)
	if err != nil {
		logger.Fatalw("failed to initialize FCM", "error", err)
	}

	paths := registry.PathTemplate(cfg.DevicesPathTemplate)
	var store registry.Store
	switch cfg.DeviceStore {
	case config.StoreFirestore:
		firestoreClient, err := firebaseutil.GetFirestoreClient(ctx, firebaseApp)
		if err != nil {
			logger.Fatalw("failed to initialize Firestore", "error", err)
		}
		defer firestoreClient.Close()
		store = registry.NewFirestoreStore(firestoreClient, cfg.DevicesCollection, paths)
	case config.StorePostgres:
		pool, err := db.InitPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("failed to initialize PostgreSQL", "error", err)
		}
		defer pool.Close()
		store = registry.NewPostgresStore(pool, paths)
	default:
		logger.Warnw("using in-memory device store, registrations are lost on restart")
		store = registry.NewMemoryStore(paths)
	}
	deviceRegistry := registry.New(store, paths, logger.Named("registry"))

	// Redis only backs delivery stats, so the service runs without it.
	var dispatcherOpts []push.Option
	var statsReader handlers.StatsReader
	redisClient, err := db.InitRedis(ctx, cfg)
	if err != nil {
		logger.Warnw("Redis unavailable, notification stats disabled", "addr", cfg.RedisAddr, "error", err)
	} else {
		defer redisClient.Close()
		stats := push.NewRedisStats(redisClient)
		statsReader = stats
		dispatcherOpts = append(dispatcherOpts, push.WithStats(stats))
	}
	dispatcher := push.NewDispatcher(deviceRegistry, messagingClient, cfg.DefaultLanguage, logger.Named("push"), dispatcherOpts...)

	var scheduler *push.ReminderScheduler
	if cfg.ReminderSchedule != "" {
		content := models.DefaultReminderContent()
		if cfg.ReminderContentFile != "" {
			content, err = models.LoadReminderContent(cfg.ReminderContentFile)
			if err != nil {
				logger.Fatalw("failed to load reminder content", "error", err)
			}
		}
		scheduler = push.NewReminderScheduler(deviceRegistry, dispatcher, content, logger.Named("reminders"))
		if err := scheduler.Start(cfg.ReminderSchedule); err != nil {
			logger.Fatalw("failed to start reminder scheduler", "error", err)
		}
	}

	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatalw("failed to register request validators", "error", err)
	}

	devicesHandler := handlers.NewDevicesHandler(deviceRegistry, logger)
	notificationsHandler := handlers.NewNotificationsHandler(dispatcher, statsReader, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.RequestLoggingMiddleware(logger.Named("http")),
		middleware.RecoveryMiddleware(logger.Named("http")),
	)

	// Add CORS middleware for mobile app
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authClient))
	{
		devices := v1.Group("/devices")
		{
			devices.POST("/register", devicesHandler.RegisterDevice)
			devices.POST("/unregister", devicesHandler.UnregisterDevice)
			devices.GET("", devicesHandler.ListDevices)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.POST("/send", notificationsHandler.SendNotification)
			notifications.GET("/stats", notificationsHandler.GetNotificationStats)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.DeviceStore})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infow("server starting", "port", cfg.Port, "store", cfg.DeviceStore, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down server")

	// Give a 5 second timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warnw("reminder run still in progress at shutdown")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server forced to shutdown", "error", err)
		return
	}

	logger.Infow("server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
