// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/repository"
	"yatube/internal/seed"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups upserts the fixture groups so a fresh database has something to post into.
	SeedGroups bool
}

// Runtime holds the connected dependencies. Redis is nil when unreachable.
type Runtime struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.Storage
}

// InitRuntime connects to the database, Redis and the image store.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client disables the page cache and token revocation.
	rdb := cache.Connect(cfg.RedisURL)

	store, err := storage.New(cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	if opts.SeedGroups {
		groups, err := seed.Groups(db)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to seed groups: %w", err)
		}
		log.Printf("Seeded %d groups", len(groups))

		// The upsert bypasses the group cache, so drop what a previous run stored.
		svc := service.NewGroupService(repository.NewGroupRepository(db), rdb)
		if err := svc.Forget(context.Background(), groups...); err != nil {
			log.Printf("Failed to clear cached groups: %v", err)
		}
	}

	return &Runtime{DB: db, Redis: rdb, Storage: store}, nil
}
