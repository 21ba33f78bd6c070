package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/models"
	"tutor-rag-platform/utils"
)

// Seeds the first admin account. Safe to re-run: an existing username
// is left untouched.
func main() {
	var (
		username = flag.String("username", "admin", "admin username")
		name     = flag.String("name", "Administrator", "display name")
		email    = flag.String("email", "", "admin email")
		password = flag.String("password", "", "admin password (required)")
	)
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
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

	users := mongoClient.Database(cfg.DBName).Collection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var existing models.User
	err = users.FindOne(ctx, bson.M{"username": *username}).Decode(&existing)
	if err == nil {
		fmt.Printf("User %q already exists (role %s), nothing to do\n", *username, existing.Role)
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Fatal("Failed to check existing user:", err)
	}

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	result, err := users.InsertOne(ctx, models.User{
		Username:     *username,
		Name:         *name,
		Email:        *email,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Fatal("Failed to create admin:", err)
	}
	fmt.Printf("Admin %q created (%v)\n", *username, result.InsertedID)
}
