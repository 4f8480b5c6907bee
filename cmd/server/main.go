package main

import (
	"context"
	"log"

	"anoa.com/momentum/internal/bootstrap"
	"anoa.com/momentum/internal/config"
	"anoa.com/momentum/internal/server"
	"anoa.com/momentum/pkg/database"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := bootstrap.SeedBadges(db); err != nil {
		log.Fatalf("failed to seed badges: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	// Redis is optional: without it live notifications and leaderboard
	// caching degrade, everything else keeps working.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, continuing without cache: %v", err)
			redisClient = nil
		}
	}

	srv := server.NewServer(db, redisClient, cfg)
	if err := srv.SyncCatalog(context.Background()); err != nil {
		log.Fatalf("failed to sync achievement catalog: %v", err)
	}

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
