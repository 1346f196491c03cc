package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CallbackLockStore handles per-checkout locking in Redis. Safaricom
// retries result callbacks until acknowledged, so the lock keeps a
// retried delivery from being processed twice.
type CallbackLockStore struct {
	client *redis.Client
}

// NewCallbackLockStore creates a new CallbackLockStore.
func NewCallbackLockStore(client *redis.Client) *CallbackLockStore {
	return &CallbackLockStore{client: client}
}

// AcquireCallbackLock attempts to acquire the processing lock for the given
// CheckoutRequestID. Returns true if the lock was acquired, false if already held.
func (s *CallbackLockStore) AcquireCallbackLock(ctx context.Context, checkoutRequestID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:callback:%s", checkoutRequestID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCallbackLock releases the processing lock for the given CheckoutRequestID.
func (s *CallbackLockStore) ReleaseCallbackLock(ctx context.Context, checkoutRequestID string) error {
	key := fmt.Sprintf("lock:callback:%s", checkoutRequestID)

	return s.client.Del(ctx, key).Err()
}
