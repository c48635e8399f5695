package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries of one logical cache in Redis under a shared prefix.
// Expiry is delegated to Redis.
type RedisStore struct {
	rdb        *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewStore returns a store for the named cache, e.g. "soil" -> "<prefix>:soil:<hash>".
func (r *Redis) NewStore(name string) *RedisStore {
	ttl := time.Duration(r.Cfg.DefaultTTL) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	prefix := r.Cfg.Prefix
	if name != "" {
		prefix = prefix + ":" + name
	}
	return &RedisStore{
		rdb:        r.Client,
		prefix:     prefix,
		defaultTTL: ttl,
	}
}

func (c *RedisStore) Key(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", c.prefix, hex.EncodeToString(sum[:]))
}

func (c *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.rdb.Set(ctx, c.Key(key), data, ttl).Err()
}
