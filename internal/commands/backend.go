package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"portalcal/internal/config"
	"portalcal/internal/feedsync"
	"portalcal/internal/ics"
	appLog "portalcal/internal/log"
	"portalcal/internal/store"
	"portalcal/internal/web"
)

// backend is the store every command works against: the SQLite store,
// optionally fronted by the Redis snapshot cache.
type backend interface {
	web.Store
	feedsync.Writer
}

// openBackend opens the database and, when Redis is configured and
// reachable, wraps it in the snapshot cache. The returned func closes both.
func openBackend(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Redis == nil || cfg.Redis.Addr == "" {
		return st, func() { st.Close() }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		appLog.Warn("redis unreachable, snapshot cache disabled", "addr", cfg.Redis.Addr, "error", err.Error())
		client.Close()
		return st, func() { st.Close() }, nil
	}
	appLog.Info("snapshot cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL.String())
	return store.NewCache(st, client, cfg.Redis.TTL), func() {
		client.Close()
		st.Close()
	}, nil
}

func newSyncer(cfg *config.Config, w feedsync.Writer) *feedsync.Syncer {
	cacheDir := filepath.Join(filepath.Dir(cfg.DBPath), "feed-cache")
	return feedsync.New(cfg, w, ics.NewFetcher(cacheDir, nil))
}
