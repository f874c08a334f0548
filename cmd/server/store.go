package main

import (
	"context"
	"fmt"
	"log/slog"

	"crm/internal/contact/service"
	"crm/internal/contact/store"
	"crm/internal/platform/config"
	"crm/internal/platform/mongo"
	"crm/internal/platform/postgres"
	"crm/internal/platform/redis"
)

// contactStore is a service.Store that owns a connection to close on exit.
type contactStore interface {
	service.Store
	Close() error
}

var (
	_ contactStore = (*store.InMemory)(nil)
	_ contactStore = (*store.MongoStore)(nil)
	_ contactStore = (*store.PostgresStore)(nil)
	_ contactStore = (*store.RedisStore)(nil)
)

// openStore connects the backend selected by cfg.Store.Driver and prepares
// its indexes or schema.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (contactStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory contact store, data is lost on restart")
		return store.NewInMemory(), nil

	case config.DriverMongo:
		coll, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s := store.NewMongo(coll)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("connected to mongodb", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		return s, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s := store.NewPostgres(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		logger.Info("connected to postgres")
		return s, nil

	case config.DriverRedis:
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if rc == nil {
			return nil, fmt.Errorf("redis store selected but REDIS_URL is empty")
		}
		logger.Info("connected to redis")
		return &redisStore{RedisStore: store.NewRedis(rc.Client), client: rc}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// redisStore closes the shared client, which RedisStore does not own.
type redisStore struct {
	*store.RedisStore
	client *redis.Client
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
