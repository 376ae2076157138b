package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionCache stores resolved users keyed by session token.
type SessionCache interface {
	Get(ctx context.Context, token string) (*User, bool, error)
	Set(ctx context.Context, token string, user *User, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// NoopSessionCache never stores anything.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(context.Context, string) (*User, bool, error)        { return nil, false, nil }
func (NoopSessionCache) Set(context.Context, string, *User, time.Duration) error { return nil }
func (NoopSessionCache) Delete(context.Context, string) error                    { return nil }

// RedisSessionCache keeps resolved users in Redis under a hash of the token, so raw
// tokens never reach the cache.
type RedisSessionCache struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisSessionCache constructs a RedisSessionCache.
func NewRedisSessionCache(rdb goredis.UniversalClient) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb, prefix: "timeflow:session:"}
}

// Get implements SessionCache.
func (c *RedisSessionCache) Get(ctx context.Context, token string) (*User, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// Set implements SessionCache.
func (c *RedisSessionCache) Set(ctx context.Context, token string, user *User, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(token), raw, ttl).Err()
}

// Delete implements SessionCache.
func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, c.key(token)).Err()
}

func (c *RedisSessionCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}
