package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Users collection indexes
	usersCollection := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := usersCollection.Indexes().CreateMany(context.Background(), userIndexes)
	if err != nil {
		return err
	}

	// Chapters: natural key is (class_level, subject, chapter_number).
	// The unique index makes get-or-create race-safe.
	chaptersCollection := db.Collection("chapters")
	chapterIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "class_level", Value: 1},
				{Key: "subject", Value: 1},
				{Key: "chapter_number", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = chaptersCollection.Indexes().CreateMany(context.Background(), chapterIndexes)
	if err != nil {
		return err
	}

	// Document chunks: filters used by $vectorSearch and the direct-query
	// fallback path.
	chunksCollection := db.Collection("document_chunks")
	chunkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chapter_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "class_level", Value: 1},
			{Key: "subject", Value: 1},
			{Key: "chapter_number", Value: 1},
		}},
		{Keys: bson.D{{Key: "chapter_id", Value: 1}, {Key: "chunk_index", Value: 1}}},
	}
	_, err = chunksCollection.Indexes().CreateMany(context.Background(), chunkIndexes)
	if err != nil {
		return err
	}

	// Chat logs
	chatLogsCollection := db.Collection("chat_logs")
	chatLogIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	_, err = chatLogsCollection.Indexes().CreateMany(context.Background(), chatLogIndexes)
	if err != nil {
		return err
	}

	// Source archives
	sourcesCollection := db.Collection("source_archives")
	sourceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chapter_id", Value: 1}, {Key: "filename", Value: 1}}},
	}
	_, err = sourcesCollection.Indexes().CreateMany(context.Background(), sourceIndexes)
	if err != nil {
		return err
	}

	return nil
}
