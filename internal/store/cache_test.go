package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"portalcal/internal/model"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(openTestStore(t), client, time.Minute), mr
}

// currentKey is the Redis key the next Snapshot call reads.
func currentKey(t *testing.T, c *Cache) string {
	t.Helper()
	v, err := c.version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	return snapshotKey(v)
}

func TestCacheSnapshotMissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.CreateTask(ctx, model.Task{Title: "Pay fees", DueDate: time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if mr.Exists(currentKey(t, c)) {
		t.Fatalf("snapshot cached before first read")
	}

	first, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if ttl := mr.TTL(currentKey(t, c)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	// A write that bypasses the cache is invisible until eviction.
	if _, err := c.Store.CreateTask(ctx, model.Task{Title: "Hidden", DueDate: time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("direct create: %v", err)
	}
	cached, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("cached snapshot: %v", err)
	}
	if !reflect.DeepEqual(cached, first) {
		t.Fatalf("cached snapshot differs: %+v vs %+v", cached, first)
	}

	c.Evict(ctx)
	fresh, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("fresh snapshot: %v", err)
	}
	if len(fresh.Tasks) != 2 {
		t.Fatalf("fresh tasks = %d, want 2", len(fresh.Tasks))
	}
}

func TestCacheWritesEvict(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	task, err := c.CreateTask(ctx, model.Task{Title: "Enroll", DueDate: time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !mr.Exists(currentKey(t, c)) {
		t.Fatalf("snapshot not cached")
	}

	if _, err := c.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if mr.Exists(currentKey(t, c)) {
		t.Fatalf("toggle did not evict the snapshot")
	}
	snap, err := c.Snapshot(ctx)
	if err != nil || !snap.Tasks[0].Completed {
		t.Fatalf("snapshot after toggle = %+v, %v", snap, err)
	}

	if _, err := c.UpsertFeedEvents(ctx, "guild", []model.Event{{Title: "Meeting", FeedUID: "m1", Date: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if mr.Exists(currentKey(t, c)) {
		t.Fatalf("feed upsert did not evict the snapshot")
	}
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	if err := mr.Set(snapshotKey(0), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	snap, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Tasks) != 0 || len(snap.Events) != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCacheStaleLoadDoesNotOutliveWrite(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	// A reader takes the generation and loads from the database...
	version, err := c.version(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	stale, err := c.Store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// ...a write lands and evicts before the reader populates the cache.
	if _, err := c.CreateTask(ctx, model.Task{Title: "Drop deadline", DueDate: time.Date(2025, time.March, 21, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	c.storeSnapshot(ctx, version, stale)
	if !mr.Exists(snapshotKey(version)) {
		t.Fatalf("stale snapshot was not written")
	}

	snap, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Drop deadline" {
		t.Fatalf("snapshot after write = %+v, want the new task", snap.Tasks)
	}
}

func TestCacheEvictDropsPreviousGeneration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !mr.Exists(snapshotKey(0)) {
		t.Fatalf("snapshot not cached under generation 0")
	}
	c.Evict(ctx)
	c.Evict(ctx)
	if mr.Exists(snapshotKey(0)) {
		t.Fatalf("generation 0 survived eviction")
	}
	if got := currentKey(t, c); got != snapshotKey(2) {
		t.Fatalf("current key = %q, want %q", got, snapshotKey(2))
	}
}
