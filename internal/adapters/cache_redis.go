package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/redis/go-redis/v9"

	"sdkmigrate/internal/ports"
)

const defaultRedisPrefix = "sdkmigrate:"

// RedisCacheAdapter stores cache entries in Redis so several runs can share
// registry lookups.
type RedisCacheAdapter struct {
	client *redis.Client
	prefix string
}

// NewRedisCacheAdapter connects to addr and verifies the connection.
func NewRedisCacheAdapter(ctx context.Context, addr string, prefix string) (*RedisCacheAdapter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("redis is unreachable").
			WithCause(err)
	}
	return NewRedisCacheAdapterWithClient(client, prefix), nil
}

func NewRedisCacheAdapterWithClient(client *redis.Client, prefix string) *RedisCacheAdapter {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisCacheAdapter{client: client, prefix: prefix}
}

var _ ports.SharedCacheStore = (*RedisCacheAdapter)(nil)

func (a *RedisCacheAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := a.client.Get(ctx, a.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("redis get failed").
			WithCause(err)
	}
	return data, true, nil
}

func (a *RedisCacheAdapter) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := a.client.Set(ctx, a.prefix+key, data, ttl).Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("redis set failed").
			WithCause(err)
	}
	return nil
}

func (a *RedisCacheAdapter) Close() error {
	return a.client.Close()
}
