package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked refresh tokens. Entries expire together
// with the token they revoke, so the set never needs manual cleanup.
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist returns a redis-backed blacklist.
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) key(jti string) string {
	return fmt.Sprintf("auth:blacklist:%s", jti)
}

// Revoke marks a token id as revoked for the remainder of its lifetime.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to record.
		return nil
	}
	revokedAt := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	return b.client.Set(ctx, b.key(jti), revokedAt, ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
