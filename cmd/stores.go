package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

type stores struct {
	catalog   catalog.Store
	sessions  session.Store
	orders    order.Repository
	uow       order.UnitOfWork
	processed dedup.Store
	sequences sequence.Repository
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Database.Backend != config.StorePostgres {
		products := catalog.NewMemoryStore()
		orders := order.NewMemoryRepository()
		log.Info("using in-memory stores")
		return &stores{
			catalog:   products,
			sessions:  session.NewMemoryStore(),
			orders:    orders,
			uow:       order.NewMemoryUnitOfWork(products, orders),
			processed: dedup.NewMemoryStore(),
			sequences: sequence.NewMemoryRepository(),
			close:     func() {},
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(cfg.Database.DSN, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
	}

	products := catalog.NewPostgresStore(pool)
	orders := order.NewPostgresRepository(pool)
	return &stores{
		catalog:   products,
		sessions:  session.NewPostgresStore(pool),
		orders:    orders,
		uow:       order.NewPostgresUnitOfWork(pool, products, orders),
		processed: dedup.NewPostgresStore(pool),
		sequences: sequence.NewPostgresRepository(pool),
		close:     pool.Close,
	}, nil
}

func newLocker(ctx context.Context, cfg *config.Config) (session.Locker, func(), error) {
	if cfg.Lock.Backend != config.LockRedis {
		return session.NewLocalLocker(cfg.Lock.Wait), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Lock.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return session.NewRedisLocker(client, cfg.Lock.Wait, cfg.Lock.TTL), func() { _ = client.Close() }, nil
}
