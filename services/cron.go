package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
)

// StatsCron periodically logs corpus health so operators notice stalled
// ingestion or empty subjects without querying Mongo by hand.
type StatsCron struct {
	scheduler *gocron.Scheduler
	chapters  *mongo.Collection
	chunks    *mongo.Collection
	chatLogs  *mongo.Collection
	interval  time.Duration
}

func NewStatsCron(client *mongo.Client, cfg *config.Config, interval time.Duration) *StatsCron {
	if interval <= 0 {
		interval = time.Hour
	}
	db := client.Database(cfg.DBName)
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &StatsCron{
		scheduler: s,
		chapters:  db.Collection("chapters"),
		chunks:    db.Collection("document_chunks"),
		chatLogs:  db.Collection("chat_logs"),
		interval:  interval,
	}
}

func (c *StatsCron) Start() error {
	if _, err := c.scheduler.Every(c.interval).Tag("corpus-stats").Do(c.logStats); err != nil {
		return err
	}
	c.scheduler.StartAsync()
	return nil
}

func (c *StatsCron) Stop() {
	c.scheduler.Stop()
}

func (c *StatsCron) logStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chapterCount, err := c.chapters.CountDocuments(ctx, bson.M{})
	if err != nil {
		logger.Warn("corpus stats: chapter count failed", "error", err)
		return
	}
	chunkCount, err := c.chunks.CountDocuments(ctx, bson.M{})
	if err != nil {
		logger.Warn("corpus stats: chunk count failed", "error", err)
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	questions, err := c.chatLogs.CountDocuments(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		logger.Warn("corpus stats: chat log count failed", "error", err)
		return
	}

	logger.Info("corpus stats",
		"chapters", chapterCount,
		"chunks", chunkCount,
		"questions_24h", questions)

	if chapterCount > 0 && chunkCount == 0 {
		logger.Warn("corpus stats: chapters exist but no chunks are stored")
	}
}
