package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// DefaultPrefix namespaces keys in shared backends.
const DefaultPrefix = "maskpaint:"

// Redis stores values as plain strings under prefixed keys.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultPrefix
	}
	return &Redis{client: client, keyPrefix: keyPrefix}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int, keyPrefix string) (*Redis, error) {
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     4,
		MinIdleConns: 1,
		MaxConnAge:   30 * time.Minute,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	logrus.WithField("addr", addr).Debug("redis store connected")
	return NewRedis(client, keyPrefix), nil
}

func (r *Redis) key(k string) string { return r.keyPrefix + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis: get %s: %w", r.key(key), err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", r.key(key), err)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
