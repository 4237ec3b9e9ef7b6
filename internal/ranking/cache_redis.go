package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"itrust/internal/account"
	"itrust/pkg/domain"
)

// snapshotKey holds the serialized leaderboard shared across instances.
const snapshotKey = "ranking:snapshot"

// SnapshotCache is the optional cross-instance snapshot layer. Both
// methods are best-effort: a cache miss or failure just means recompute.
type SnapshotCache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// RedisSnapshotCache stores the snapshot as JSON under a short TTL.
type RedisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(client *redis.Client) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

type cachedEntry struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	AvatarRef    string `json:"avatarRef,omitempty"`
	BalanceMilli int64  `json:"balanceMilli"`
	Reputation   int64  `json:"reputation"`
	JoinOrder    int64  `json:"joinOrder"`
	Rank         int    `json:"rank"`
}

type cachedSnapshot struct {
	Entries    []cachedEntry `json:"entries"`
	ComputedAt time.Time     `json:"computedAt"`
}

func (c *RedisSnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ranking cache get: %w", err)
	}
	var cached cachedSnapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode ranking snapshot: %w", err)
	}

	accounts := make([]*account.Account, 0, len(cached.Entries))
	for _, e := range cached.Entries {
		id, err := domain.ParseAccountID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("corrupt ranking snapshot: %w", err)
		}
		accounts = append(accounts, &account.Account{
			ID:           id,
			DisplayName:  e.DisplayName,
			AvatarRef:    e.AvatarRef,
			TrustBalance: domain.TrustFromMilli(e.BalanceMilli),
			Reputation:   e.Reputation,
			JoinOrder:    e.JoinOrder,
		})
	}
	return newSnapshot(accounts, cached.ComputedAt), nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *Snapshot, ttl time.Duration) error {
	cached := cachedSnapshot{
		Entries:    make([]cachedEntry, 0, len(snap.Entries)),
		ComputedAt: snap.ComputedAt,
	}
	for _, e := range snap.Entries {
		cached.Entries = append(cached.Entries, cachedEntry{
			ID:           e.Account.ID.String(),
			DisplayName:  e.Account.DisplayName,
			AvatarRef:    e.Account.AvatarRef,
			BalanceMilli: e.Account.TrustBalance.Milli(),
			Reputation:   e.Account.Reputation,
			JoinOrder:    e.Account.JoinOrder,
			Rank:         e.Rank,
		})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode ranking snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey, raw, ttl).Err()
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey).Err()
}
