package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tetlixi/backend/internal/api"
	"github.com/tetlixi/backend/internal/config"
	"github.com/tetlixi/backend/internal/database"
	"github.com/tetlixi/backend/internal/game"
	"github.com/tetlixi/backend/internal/migrations"
	"github.com/tetlixi/backend/internal/redis"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Ensure the game config row exists and the pool is seeded
	ctx := context.Background()
	if _, err := game.GetOrCreateConfig(ctx, db); err != nil {
		log.Fatalf("Failed to initialize game config: %v", err)
	}

	var prizeCount int
	if err := db.GetContext(ctx, &prizeCount, `SELECT COUNT(*) FROM prizes`); err != nil {
		log.Fatalf("Failed to inspect prize pool: %v", err)
	}
	if prizeCount == 0 && os.Getenv("SEED_POOL_ON_START") == "true" {
		result, err := game.ResetGame(ctx, db, nil)
		if err != nil {
			log.Fatalf("Failed to seed prize pool: %v", err)
		}
		log.Printf("[GAME] Seeded empty pool with %d prizes", result.PrizeCount)
	}

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting lixi server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
