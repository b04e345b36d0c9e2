package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	TreeTTL  time.Duration
}

// ConfigFromEnv returns a zero Addr when REDIS_ADDR is unset; callers treat
// that as "run without redis".
func ConfigFromEnv() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		Channel:  envutil.String("REDIS_CHANNEL", "kiosk:events"),
		TreeTTL:  envutil.Seconds("TREE_CACHE_TTL_SECONDS", 30*time.Second),
	}
}

func (c Config) Enabled() bool { return c.Addr != "" }

func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
