package main

import (
	"context"
	"log"

	"campus-bus-api-server/config"
	"campus-bus-api-server/internal/api/routes"
	"campus-bus-api-server/internal/auth"
	"campus-bus-api-server/internal/database"
	"campus-bus-api-server/internal/s3"
	"campus-bus-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	auth.SetSecret(cfg.JWT.Secret)
	if err := auth.SetExpiration(cfg.JWT.Expiration); err != nil {
		log.Fatalf("Invalid JWT expiration: %v", err)
	}

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	if err := database.Seed(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create S3 uploader: %v", err)
	}

	wsHub := socket.NewHub()

	router := routes.SetupRouter(cfg, db, s3Uploader, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
