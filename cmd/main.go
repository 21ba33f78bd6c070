package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"tutor-rag-platform/internal/ai"
	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/telemetry"
	"tutor-rag-platform/middleware"
	"tutor-rag-platform/routes"
	"tutor-rag-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("tutor-rag-platform", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Failed to init tracing:", err)
	}
	defer shutdownTracer()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	completion, err := ai.NewCompletionClient(cfg)
	if err != nil {
		log.Fatal("Failed to init completion client:", err)
	}
	defer completion.Close()

	embeddings, err := ai.NewEmbeddingClient(cfg)
	if err != nil {
		log.Fatal("Failed to init embedding client:", err)
	}
	defer embeddings.Close()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Domain services
	store := services.NewVectorStore(mongoClient, cfg)
	router := services.NewChapterRouter(completion, cfg.CompletionModel, cfg.MaxRouterIterations)
	retriever := services.NewRetriever(embeddings, store, cfg.TopK, cfg.SimilarityThreshold, metrics)
	qa := services.NewQAService(completion, router, retriever, cfg, mongoClient, metrics)
	ingestion := services.NewIngestionService(cfg, mongoClient, store, embeddings, metrics)
	exporter := services.NewExportService(mongoClient, cfg)

	statsCron := services.NewStatsCron(mongoClient, cfg, time.Hour)
	if err := statsCron.Start(); err != nil {
		log.Fatal("Failed to start stats cron:", err)
	}
	defer statsCron.Stop()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.TracingMiddleware())
	engine.Use(middleware.EnrichTrace())
	engine.Use(middleware.MetricsMiddleware(metrics))
	engine.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	engine.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	roleMiddleware := middleware.NewRoleMiddleware()

	routes.SetupAuthRoutes(engine, cfg, mongoClient)
	routes.SetupChatRoutes(engine, cfg, redisClient, qa, authMiddleware)
	routes.SetupAdminRoutes(engine, cfg, mongoClient, asynqClient, store, ingestion, exporter, authMiddleware, roleMiddleware)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	logger.Info("server exited")
}
