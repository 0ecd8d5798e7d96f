package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailcanvas/pkg/broadcast"
	"github.com/dmitrymomot/mailcanvas/pkg/config"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/httpserver"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/mongo"
	"github.com/dmitrymomot/mailcanvas/pkg/pg"
	"github.com/dmitrymomot/mailcanvas/pkg/ratelimiter"
	"github.com/dmitrymomot/mailcanvas/pkg/redis"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

// dependencies tracks opened connections, their health checks and the
// functions that release them.
type dependencies struct {
	log     *slog.Logger
	redis   *goredis.Client
	redisNS string
	checks  []httpserver.Check
	closers []func(context.Context) error
}

func (d *dependencies) close() {
	ctx := context.Background()
	for _, fn := range slices.Backward(d.closers) {
		if err := fn(ctx); err != nil {
			d.log.Warn("failed to release dependency", logger.Error(err))
		}
	}
}

// redisClient connects once and shares the client between the template
// store and the broadcaster.
func (d *dependencies) redisClient(ctx context.Context) (*goredis.Client, error) {
	if d.redis != nil {
		return d.redis, nil
	}
	var cfg redis.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.redis = client
	d.redisNS = cfg.KeyPrefix
	d.checks = append(d.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	d.closers = append(d.closers, func(context.Context) error { return client.Close() })
	return client, nil
}

func (d *dependencies) templateBackend(ctx context.Context, cfg appConfig, storage file.Storage) (templatestore.Backend, error) {
	switch cfg.TemplateStore {
	case storeMemory:
		return templatestore.NewMemoryBackend(), nil

	case storeFile, "":
		return file.NewKV(storage, cfg.TemplateStoreDir), nil

	case storeRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return redis.NewStorage(client, redis.WithPrefix(d.redisNS)), nil

	case storeMongo:
		var mcfg mongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		d.checks = append(d.checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})
		d.closers = append(d.closers, client.Disconnect)
		return mongo.NewKVStore(client.Database(mcfg.Database).Collection(mcfg.KVCollection)), nil

	case storePostgres:
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func(context.Context) error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, pcfg, d.log); err != nil {
			return nil, err
		}
		d.checks = append(d.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
		return pg.NewKVStore(pool), nil

	default:
		return nil, fmt.Errorf("unknown template store %q", cfg.TemplateStore)
	}
}

func (d *dependencies) broadcaster(ctx context.Context, cfg appConfig, buffer int) (broadcast.Broadcaster[composer.Change], error) {
	switch cfg.Broadcast {
	case broadcastMemory, "":
		b := broadcast.NewMemoryBroadcaster[composer.Change](buffer)
		d.closers = append(d.closers, func(context.Context) error { return b.Close() })
		return b, nil

	case broadcastRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		b := broadcast.NewRedisBroadcaster[composer.Change](client, d.redisNS+"changes:", buffer, d.log)
		d.closers = append(d.closers, func(context.Context) error { return b.Close() })
		return b, nil

	default:
		return nil, fmt.Errorf("unknown broadcast driver %q", cfg.Broadcast)
	}
}

// sendLimiter keeps test-send buckets in the same place as session changes,
// so every instance sharing sessions also shares the limits.
func (d *dependencies) sendLimiter(ctx context.Context, cfg appConfig) (*ratelimiter.Bucket, error) {
	var limitCfg ratelimiter.Config
	if err := config.Load(&limitCfg); err != nil {
		return nil, err
	}

	var store ratelimiter.Store
	switch cfg.Broadcast {
	case broadcastRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		store = ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(d.redisNS+"sends:"))
	default:
		mem := ratelimiter.NewMemoryStore()
		d.closers = append(d.closers, func(context.Context) error { return mem.Close() })
		store = mem
	}
	return ratelimiter.NewBucket(store, limitCfg)
}
