package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IVYLIFE/Authly/config"
	"github.com/IVYLIFE/Authly/db"
	"github.com/IVYLIFE/Authly/internal/auth/domain"
	"github.com/IVYLIFE/Authly/internal/auth/repository/mongodb"
	"github.com/IVYLIFE/Authly/internal/auth/repository/postgres"
	"github.com/IVYLIFE/Authly/internal/ratelimit"
)

// openStore connects the configured credential store and prepares its schema.
// The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewPostgresRepository(pool), pool.Close, nil

	case config.StoreMongo:
		database, err := db.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			if err := database.Client().Disconnect(context.Background()); err != nil {
				log.Error("mongo disconnect failed", "error", err)
			}
		}
		repo := mongodb.NewMongoRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// newLoginLimiter shares counters through Redis when an address is configured
// and falls back to process memory otherwise.
func newLoginLimiter(cfg *config.Config, log *slog.Logger) ratelimit.Limiter {
	if cfg.RateLimitRedisAddr == "" {
		return ratelimit.NewMemoryLimiter()
	}
	limiter, err := ratelimit.NewRedisLimiter(cfg.RateLimitRedisAddr, cfg.RateLimitRedisPassword, cfg.RateLimitRedisDB, log)
	if err != nil {
		log.Warn("redis rate limiter unavailable, using in-memory limiter", "addr", cfg.RateLimitRedisAddr, "error", err)
		return ratelimit.NewMemoryLimiter()
	}
	return limiter
}
