package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dashboardTTL = 60 * time.Second

// Cache holds per-user dashboard payloads in Redis. Every method is a
// no-op when Redis is not configured, so the server keeps working
// without it.
type Cache struct {
	redis *redis.Client
}

func New(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

func dashboardKey(userID string) string {
	return "dashboard:" + userID
}

func (c *Cache) GetDashboard(ctx context.Context, userID string) ([]byte, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	payload, err := c.redis.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *Cache) SetDashboard(ctx context.Context, userID string, payload []byte) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Set(ctx, dashboardKey(userID), payload, dashboardTTL).Err()
}

// InvalidateDashboard drops the cached payload. Activity and race
// writes call this so the next dashboard read reflects them.
func (c *Cache) InvalidateDashboard(ctx context.Context, userID string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, dashboardKey(userID)).Err()
}
