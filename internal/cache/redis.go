package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "cart-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A miss is a valid answer, only transport errors should trip the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})

	return &RedisCache{
		client:  client,
		breaker: breaker,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, email string) (*domain.Cart, error) {
	key := cacheKey(email)

	data, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, email string, cart *domain.Cart) error {
	key := cacheKey(email)
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	ret := r.client.Set(ctx, key, string(jsonCart), ttl)
	if ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, email string) error {
	key := cacheKey(email)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(email string) string {
	return fmt.Sprintf("cart:%s", email)
}
