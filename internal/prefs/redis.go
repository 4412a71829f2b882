package prefs

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/redis"
)

const keyPrefix = "edi-console:pref:"

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// RedisStore keeps flags in Redis with no expiry.
type RedisStore struct {
	client kv
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	v, err := r.client.Get(ctx, keyPrefix+key)
	if redis.IsNilError(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return decode(v), true, nil
}

func (r *RedisStore) SetBool(ctx context.Context, key string, value bool) error {
	return r.client.Set(ctx, keyPrefix+key, encode(value), 0)
}

// Ping checks the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
