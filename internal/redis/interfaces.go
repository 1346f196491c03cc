package redis

import (
	"context"
	"time"
)

// TokenCacheInterface defines the interface for access-token caching.
type TokenCacheInterface interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string, ttl time.Duration) error
}

// CallbackLockInterface defines the interface for callback deduplication locking.
type CallbackLockInterface interface {
	AcquireCallbackLock(ctx context.Context, checkoutRequestID string, ttl time.Duration) (bool, error)
	ReleaseCallbackLock(ctx context.Context, checkoutRequestID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TokenCacheInterface   = (*TokenStore)(nil)
	_ CallbackLockInterface = (*CallbackLockStore)(nil)
)
