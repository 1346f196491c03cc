package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore caches the Daraja OAuth access token in Redis so that
// concurrent server instances share one token instead of each fetching
// their own.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

const accessTokenKey = "mpesa:access_token"

// GetToken retrieves the cached access token. Returns "" on cache miss.
func (s *TokenStore) GetToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, accessTokenKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // Cache miss
		}
		return "", err
	}
	return token, nil
}

// SetToken stores the access token with the given TTL.
func (s *TokenStore) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, accessTokenKey, token, ttl).Err()
}
