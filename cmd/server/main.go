package main

import (
	"log"

	"bibliomaniacs.org/bookreviews/internal/config"
	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/server"
	"bibliomaniacs.org/bookreviews/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedAdminEmails(db, cfg.AdminEmails); err != nil {
		log.Fatalf("failed to seed admin allowlist: %v", err)
	}

	// The server degrades gracefully without Redis: no query cache, no live
	// notification stream.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, running without cache and live notifications")
	}

	srv := server.NewServer(cfg, db, redisClient)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Review{},
		&entity.BookOfWeek{},
		&entity.AdminEmail{},
	)
}

func seedAdminEmails(db *gorm.DB, emails []string) error {
	for _, email := range emails {
		entry := entity.AdminEmail{Email: email}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
