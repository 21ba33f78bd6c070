package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tutor-rag-platform/internal/ai"
	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/services"
)

// Direct ingestion CLI for initial corpus loads, bypassing the queue.
func main() {
	var (
		path       = flag.String("path", "", "file or directory to ingest (defaults to NOTES_DIR)")
		classLevel = flag.Int("class", 9, "class level (9 or 10)")
		subject    = flag.String("subject", "Physics", "subject name")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	target := *path
	if target == "" {
		target = cfg.NotesDir
	}
	info, err := os.Stat(target)
	if err != nil {
		log.Fatalf("Cannot stat %s: %v", target, err)
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
	ingestion := services.NewIngestionService(cfg, mongoClient, store, embeddings, nil)

	ctx := context.Background()
	if info.IsDir() {
		reports, err := ingestion.IngestDirectory(ctx, target, *classLevel, *subject)
		if err != nil {
			log.Fatalf("Directory ingest failed: %v", err)
		}
		var total, failed int
		for _, r := range reports {
			total += r.InsertedCount
			if r.Error != "" {
				failed++
				fmt.Printf("FAILED  %s: %s\n", r.Filename, r.Error)
			} else {
				fmt.Printf("OK      %s: chapter %d, %d chunks\n", r.Filename, r.ChapterNumber, r.InsertedCount)
			}
		}
		fmt.Printf("\n%d files, %d chunks loaded, %d failures\n", len(reports), total, failed)
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	report, err := ingestion.IngestFile(ctx, target, *classLevel, *subject)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}
	fmt.Printf("OK %s: chapter %d (%s), %d chunks loaded in %dms\n",
		report.Filename, report.ChapterNumber, report.ChapterTitle,
		report.InsertedCount, report.DurationMillis)
}
