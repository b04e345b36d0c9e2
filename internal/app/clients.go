package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/kiosk-backend/internal/clients/redis"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/realtime/bus"
)

type Clients struct {
	Bucket    gcp.BucketService
	Redis     *goredis.Client
	SSEBus    bus.Bus
	TreeCache redis.TreeCache
}

// wireClients opens the media bucket and, when REDIS_ADDR is set, redis.
// Without redis the SSE bus is process-local and the tree is not cached.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	if !cfg.Redis.Enabled() {
		log.Info("REDIS_ADDR not set; using local SSE bus and no tree cache")
		return Clients{
			Bucket:    bucket,
			SSEBus:    bus.NewLocalBus(),
			TreeCache: redis.NoopTreeCache(),
		}, nil
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	sseBus, err := bus.NewRedisBus(log, rdb, cfg.Redis.Channel)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	log.Info("Redis connected", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	return Clients{
		Bucket:    bucket,
		Redis:     rdb,
		SSEBus:    sseBus,
		TreeCache: redis.NewTreeCache(log, rdb, cfg.Redis.TreeTTL),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
