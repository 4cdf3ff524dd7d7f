package bootstrap

import (
	"fmt"

	"linkup/internal/cache"
	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
	SeedUsers    int
	SeedPosts    int
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		users := opts.SeedUsers
		if users <= 0 {
			users = 25
		}
		posts := opts.SeedPosts
		if posts <= 0 {
			posts = 100
		}
		if err := seed.Seed(db, seed.Options{NumUsers: users, NumPosts: posts}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
