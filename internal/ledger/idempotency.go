package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"itrust/pkg/domain"
)

// IdempotencyCache stores committed vouch results keyed by the caller's
// idempotency key so client retries replay the original commit instead of
// double-spending. Keys are voucher-scoped; entries expire after the
// configured window.
type IdempotencyCache interface {
	Find(ctx context.Context, voucherID domain.AccountID, key string) (*VouchResult, error)
	Save(ctx context.Context, voucherID domain.AccountID, key string, result *VouchResult) error
}

const idempotencyKeyPrefix = "vouch:idem:"

// RedisIdempotencyCache is the production cache shared across instances.
type RedisIdempotencyCache struct {
	client *redis.Client
	window time.Duration
}

func NewRedisIdempotencyCache(client *redis.Client, window time.Duration) *RedisIdempotencyCache {
	return &RedisIdempotencyCache{client: client, window: window}
}

func (c *RedisIdempotencyCache) Find(ctx context.Context, voucherID domain.AccountID, key string) (*VouchResult, error) {
	raw, err := c.client.Get(ctx, redisIdemKey(voucherID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	var result VouchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached vouch result: %w", err)
	}
	return &result, nil
}

func (c *RedisIdempotencyCache) Save(ctx context.Context, voucherID domain.AccountID, key string, result *VouchResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode vouch result: %w", err)
	}
	// NX: the first commit under a key wins; a concurrent duplicate must
	// not overwrite it.
	return c.client.SetNX(ctx, redisIdemKey(voucherID, key), raw, c.window).Err()
}

func redisIdemKey(voucherID domain.AccountID, key string) string {
	return idempotencyKeyPrefix + voucherID.String() + ":" + key
}

// MemoryIdempotencyCache backs single-node and test setups.
type MemoryIdempotencyCache struct {
	window time.Duration
	clock  Clock

	mu      sync.Mutex
	entries map[string]memoryIdemEntry
}

type memoryIdemEntry struct {
	result    VouchResult
	expiresAt time.Time
}

func NewMemoryIdempotencyCache(window time.Duration) *MemoryIdempotencyCache {
	return &MemoryIdempotencyCache{
		window:  window,
		clock:   time.Now,
		entries: make(map[string]memoryIdemEntry),
	}
}

func (c *MemoryIdempotencyCache) Find(_ context.Context, voucherID domain.AccountID, key string) (*VouchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[redisIdemKey(voucherID, key)]
	if !ok || c.clock().After(entry.expiresAt) {
		return nil, nil
	}
	result := entry.result
	return &result, nil
}

func (c *MemoryIdempotencyCache) Save(_ context.Context, voucherID domain.AccountID, key string, result *VouchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := redisIdemKey(voucherID, key)
	if entry, ok := c.entries[k]; ok && c.clock().Before(entry.expiresAt) {
		return nil
	}
	c.entries[k] = memoryIdemEntry{result: *result, expiresAt: c.clock().Add(c.window)}
	return nil
}
