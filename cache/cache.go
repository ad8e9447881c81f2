package cache

import (
	"context"
	"encoding/json"
	"time"

	"fiveaside/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Connect opens a redis client and verifies the connection.
func Connect(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// PoolCache caches per-match pool totals for display reads. Failures degrade
// to a miss; callers fall back to the ledger.
type PoolCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPoolCache creates a pool cache with the given TTL.
func NewPoolCache(client *redis.Client, ttl time.Duration) *PoolCache {
	return &PoolCache{client: client, ttl: ttl}
}

func poolKey(matchID string) string { return "pool:" + matchID }

// Get returns the cached pool for a match and whether it was present.
func (c *PoolCache) Get(ctx context.Context, matchID string) (models.Pool, bool) {
	data, err := c.client.Get(ctx, poolKey(matchID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("matchID", matchID).Warn("Pool cache read failed")
		}
		return models.Pool{}, false
	}

	var pool models.Pool
	if err := json.Unmarshal(data, &pool); err != nil {
		log.WithError(err).WithField("matchID", matchID).Warn("Pool cache entry corrupt")
		return models.Pool{}, false
	}

	return pool, true
}

// Set caches the pool for a match.
func (c *PoolCache) Set(ctx context.Context, matchID string, pool models.Pool) {
	data, err := json.Marshal(pool)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, poolKey(matchID), data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("matchID", matchID).Warn("Pool cache write failed")
	}
}

// Invalidate drops the cached pool after a write to the wager ledger.
func (c *PoolCache) Invalidate(ctx context.Context, matchID string) {
	if err := c.client.Del(ctx, poolKey(matchID)).Err(); err != nil {
		log.WithError(err).WithField("matchID", matchID).Warn("Pool cache invalidation failed")
	}
}

// SettlementLock is a best-effort advisory lock that keeps multiple feed
// consumers from attempting the same settlement at once. Correctness does not
// depend on it; the settlement transaction's row locks do the real work.
type SettlementLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettlementLock creates a settlement lock with the given hold TTL.
func NewSettlementLock(client *redis.Client, ttl time.Duration) *SettlementLock {
	return &SettlementLock{client: client, ttl: ttl}
}

// TryLock attempts to claim the settlement lock for a match. It returns true
// if this caller holds the lock. On redis errors it returns true so that
// settlement proceeds anyway.
func (l *SettlementLock) TryLock(ctx context.Context, matchID string) bool {
	ok, err := l.client.SetNX(ctx, "settle:"+matchID, 1, l.ttl).Result()
	if err != nil {
		log.WithError(err).WithField("matchID", matchID).Warn("Settlement lock unavailable")
		return true
	}
	return ok
}
