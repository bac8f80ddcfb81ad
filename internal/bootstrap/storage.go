// Package bootstrap opens the storage stack shared by the server and crmctl.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/cache"
	"github.com/seu-repo/imob-crm/internal/adapter/storage/memory"
	"github.com/seu-repo/imob-crm/internal/adapter/storage/postgres"
	"github.com/seu-repo/imob-crm/internal/adapter/storage/redis"
	"github.com/seu-repo/imob-crm/internal/adapter/storage/snapshot"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

// Storage is the opened persistence layer. Redis is nil unless the storage
// driver or the id allocator needs it.
type Storage struct {
	Store   *snapshot.Store
	Backend ports.SnapshotStore
	IDs     ports.IDAllocator
	Redis   *goredis.Client

	closers []func() error
	log     *zap.Logger
}

// OpenStorage connects the configured snapshot backend and id allocator and
// loads the collections.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	s := &Storage{log: log}

	needRedis := cfg.Storage.Driver == "redis" || cfg.Storage.IDAllocator == "redis"
	if needRedis {
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		s.Redis = client
		if cfg.Storage.Driver != "redis" {
			s.closers = append(s.closers, client.Close)
		}
	}

	switch cfg.Storage.Driver {
	case "memory", "":
		s.Backend = memory.NewSnapshotStore()
	case "redis":
		// The snapshot store owns the client and closes it.
		s.Backend = redis.NewSnapshotStore(s.Redis, cfg.Storage.KeyPrefix, log)
	case "postgres", "sqlite":
		db, err := postgres.NewConnection(cfg.Storage.Driver, cfg.Database, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				postgres.Close(db)
				s.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		s.Backend = postgres.NewSnapshotStore(db, log)
	default:
		s.Close()
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
	s.closers = append([]func() error{s.Backend.Close}, s.closers...)

	if cfg.Storage.IDAllocator == "redis" {
		s.IDs = redis.NewIDAllocator(s.Redis, cfg.Storage.KeyPrefix)
	} else {
		s.IDs = memory.NewIDAllocator()
	}

	store, err := snapshot.Open(ctx, s.Backend, s.IDs, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = store

	log.Info("Storage opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("id_allocator", cfg.Storage.IDAllocator),
	)
	return s, nil
}

// Cache returns the Redis cache when a Redis client is open, the in-process
// cache otherwise.
func (s *Storage) Cache(cfg *config.Config) ports.Cache {
	if s.Redis != nil {
		return cache.NewRedisCache(s.Redis, cfg.Storage.KeyPrefix, s.log)
	}
	return cache.NewLocalCache(cfg.Cache.CleanupInterval, s.log)
}

func (s *Storage) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.log.Warn("Failed to close storage", zap.Error(err))
		}
	}
	s.closers = nil
}
