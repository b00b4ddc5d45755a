package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"custos/internal/compliance/models"
	platformredis "custos/internal/platform/redis"
	id "custos/pkg/domain"
)

// Cache is the dashboard read-through cache. Implementations must treat
// misses as (nil, nil); errors are reserved for transport failures.
type Cache interface {
	Get(ctx context.Context, orgID id.OrganizationID) (*models.Dashboard, error)
	Set(ctx context.Context, dashboard *models.Dashboard, ttl time.Duration) error
}

// RedisCache stores dashboards as JSON under a per-organization key.
type RedisCache struct {
	client *platformredis.Client
}

func NewRedisCache(client *platformredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(orgID id.OrganizationID) string {
	return "custos:dashboard:" + orgID.String()
}

func (c *RedisCache) Get(ctx context.Context, orgID id.OrganizationID) (*models.Dashboard, error) {
	raw, err := c.client.Get(ctx, cacheKey(orgID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard cache get: %w", err)
	}
	var dashboard models.Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		// A corrupt entry is a miss; the write path will replace it.
		return nil, nil
	}
	return &dashboard, nil
}

func (c *RedisCache) Set(ctx context.Context, dashboard *models.Dashboard, ttl time.Duration) error {
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("dashboard cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(dashboard.OrganizationID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("dashboard cache set: %w", err)
	}
	return nil
}
