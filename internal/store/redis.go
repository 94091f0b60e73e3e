package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "quicklists:"

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisBackend stores each key as a plain string value. SET replaces the value in one
// step, which gives the whole-collection atomicity the adapter needs.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis backend: missing address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisBackend(client, opts.KeyPrefix), nil
}

// NewRedisBackend wraps an existing client. The backend owns the client from here on.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
