package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/redis/go-redis/v9"
)

const catalogVersionKey = "catalog:version"

// CatalogCache keeps product lists in Redis. Writes to the catalog bump a
// version counter so stale lists are never read again and simply expire.
type CatalogCache interface {
	Get(ctx context.Context, category models.Category) ([]models.Product, bool, error)
	Set(ctx context.Context, category models.Category, products []models.Product) error
	Invalidate(ctx context.Context) error
}

type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func (c *RedisCatalogCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func catalogKey(version int64, category models.Category) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("catalog:v:%d:%s", version, category)
}

func (c *RedisCatalogCache) Get(ctx context.Context, category models.Category) ([]models.Product, bool, error) {
	v, err := c.version(ctx)
	if err != nil {
		return nil, false, err
	}
	data, err := c.client.Get(ctx, catalogKey(v, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *RedisCatalogCache) Set(ctx context.Context, category models.Category, products []models.Product) error {
	v, err := c.version(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(v, category), data, c.ttl).Err()
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, catalogVersionKey).Err()
}
