package redis

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"loltools/pkg/config"

	"github.com/redis/go-redis/v9"
)

// Type for the client.
type RedisClient struct {
	*redis.Client
	ttl time.Duration
}

var (
	once     sync.Once
	instance *RedisClient
)

// Return the only existing instance of the client.
// The configuration of the first call is the one used.
func GetClient(cfg config.RedisConfiguration) *RedisClient {
	once.Do(func() {
		instance = NewClient(cfg)
	})
	return instance
}

// NewClient creates a new client, outside of the shared instance.
func NewClient(cfg config.RedisConfiguration) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 1,
		PoolTimeout:  30 * time.Second,
	})

	return &RedisClient{
		Client: client,
	}
}

// WithTTL returns a copy of the client whose SetKey expires the keys.
func (r *RedisClient) WithTTL(ttl time.Duration) *RedisClient {
	return &RedisClient{
		Client: r.Client,
		ttl:    ttl,
	}
}

// Close the client connection.
func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// Wrapper to return the Result directly.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.Client.Get(ctx, key).Result()
}

// Wrapper to already return the .Err()
func (r *RedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// GetKey returns the value and false when the key doesn't exist.
func (r *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	value, err := r.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetKey sets the value with the client TTL.
func (r *RedisClient) SetKey(ctx context.Context, key string, value string) error {
	return r.Set(ctx, key, value, r.ttl)
}
