package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/redis/go-redis/v9"
)

type CartRepository interface {
	// Get returns an empty cart when none is stored under id.
	Get(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
}

type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func cartKey(id string) string {
	return "cart:" + id
}

func (r *RedisCartRepository) Get(ctx context.Context, id string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Cart{ID: id, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	cart.ID = id
	return &cart, nil
}

// Save writes the cart and refreshes its expiry.
func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKey(cart.ID), data, r.ttl).Err()
}

func (r *RedisCartRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, cartKey(id)).Err()
}
