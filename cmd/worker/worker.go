package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"tutor-rag-platform/internal/ai"
	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/queue"
	"tutor-rag-platform/internal/telemetry"
	"tutor-rag-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("tutor-rag-worker", cfg.OTLPEndpoint)
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

	embeddings, err := ai.NewEmbeddingClient(cfg)
	if err != nil {
		log.Fatal("Failed to init embedding client:", err)
	}
	defer embeddings.Close()

	store := services.NewVectorStore(mongoClient, cfg)
	ingestion := services.NewIngestionService(cfg, mongoClient, store, embeddings, metrics)
	processor := queue.NewTaskProcessor(ingestion)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestFile, processor.ProcessIngestFile)
	mux.HandleFunc(queue.TaskIngestDirectory, processor.ProcessIngestDirectory)

	go func() {
		logger.Info("ingest worker starting", "queues", "critical,default")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("Worker failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker")
	srv.Shutdown()
}
