package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"portalcal/internal/model"
)

const (
	snapshotCacheKey   = "portalcal:snapshot"
	snapshotVersionKey = snapshotCacheKey + ":version"
)

func snapshotKey(version int64) string {
	return snapshotCacheKey + ":" + strconv.FormatInt(version, 10)
}

// Cache wraps a Store with a Redis-backed copy of the latest snapshot.
// Snapshots are stored under the current version and every write through the
// Cache bumps it, so a reader that loaded before a write can only populate a
// key nobody reads any more.
type Cache struct {
	*Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Store wrapper using the provided Redis client and TTL.
func NewCache(base *Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("store.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) Snapshot(ctx context.Context) (Snapshot, error) {
	version, err := c.version(ctx)
	if err != nil {
		return c.Store.Snapshot(ctx)
	}
	if snap, ok := c.loadSnapshot(ctx, version); ok {
		return snap, nil
	}
	snap, err := c.Store.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c.storeSnapshot(ctx, version, snap)
	return snap, nil
}

func (c *Cache) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	out, err := c.Store.CreateTask(ctx, t)
	if err == nil {
		c.Evict(ctx)
	}
	return out, err
}

func (c *Cache) UpdateTask(ctx context.Context, t model.Task) error {
	err := c.Store.UpdateTask(ctx, t)
	if err == nil {
		c.Evict(ctx)
	}
	return err
}

func (c *Cache) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	out, err := c.Store.ToggleTask(ctx, id)
	if err == nil {
		c.Evict(ctx)
	}
	return out, err
}

func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	err := c.Store.DeleteTask(ctx, id)
	if err == nil {
		c.Evict(ctx)
	}
	return err
}

func (c *Cache) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	out, err := c.Store.CreateEvent(ctx, e)
	if err == nil {
		c.Evict(ctx)
	}
	return out, err
}

func (c *Cache) UpdateEvent(ctx context.Context, e model.Event) error {
	err := c.Store.UpdateEvent(ctx, e)
	if err == nil {
		c.Evict(ctx)
	}
	return err
}

func (c *Cache) DeleteEvent(ctx context.Context, id string) error {
	err := c.Store.DeleteEvent(ctx, id)
	if err == nil {
		c.Evict(ctx)
	}
	return err
}

func (c *Cache) UpsertFeedEvents(ctx context.Context, feedID string, events []model.Event) (int, error) {
	n, err := c.Store.UpsertFeedEvents(ctx, feedID, events)
	if err == nil {
		c.Evict(ctx)
	}
	return n, err
}

// version reads the snapshot generation. A missing key is generation 0.
func (c *Cache) version(ctx context.Context) (int64, error) {
	if c.redis == nil {
		return 0, errors.New("store: no redis client")
	}
	v, err := c.redis.Get(ctx, snapshotVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *Cache) loadSnapshot(ctx context.Context, version int64) (Snapshot, bool) {
	key := snapshotKey(version)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the database without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return Snapshot{}, false
	}
	return snap, true
}

func (c *Cache) storeSnapshot(ctx context.Context, version int64, snap Snapshot) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(snap)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, snapshotKey(version), data, c.ttl).Err()
}

// Evict moves the cache to a new snapshot generation and drops the old entry.
func (c *Cache) Evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	v, err := c.redis.Incr(ctx, snapshotVersionKey).Result()
	if err != nil {
		return
	}
	_, _ = c.redis.Del(ctx, snapshotKey(v-1)).Result()
}
