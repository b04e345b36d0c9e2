package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const treeKey = "kiosk:tree:v1"

// TreeCache holds the assembled active tree. A miss returns (nil, false, nil).
type TreeCache interface {
	Get(ctx context.Context) ([]*kiosk.Node, bool, error)
	Set(ctx context.Context, roots []*kiosk.Node) error
	Invalidate(ctx context.Context) error
}

type treeCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewTreeCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) TreeCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &treeCache{log: log.With("component", "TreeCache"), rdb: rdb, ttl: ttl}
}

func (c *treeCache) Get(ctx context.Context) ([]*kiosk.Node, bool, error) {
	raw, err := c.rdb.Get(ctx, treeKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var roots []*kiosk.Node
	if err := json.Unmarshal(raw, &roots); err != nil {
		c.log.Warn("Discarding unreadable cached tree", "error", err)
		_ = c.rdb.Del(ctx, treeKey).Err()
		return nil, false, nil
	}
	return roots, true, nil
}

func (c *treeCache) Set(ctx context.Context, roots []*kiosk.Node) error {
	raw, err := json.Marshal(roots)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, treeKey, raw, c.ttl).Err()
}

func (c *treeCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, treeKey).Err()
}

type noopTreeCache struct{}

// NoopTreeCache always misses.
func NoopTreeCache() TreeCache { return noopTreeCache{} }

func (noopTreeCache) Get(context.Context) ([]*kiosk.Node, bool, error) { return nil, false, nil }
func (noopTreeCache) Set(context.Context, []*kiosk.Node) error         { return nil }
func (noopTreeCache) Invalidate(context.Context) error                 { return nil }
