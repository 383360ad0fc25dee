// Package feedsync imports organization ICS feeds into the store on a cron
// schedule.
package feedsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"portalcal/internal/config"
	"portalcal/internal/ics"
	appLog "portalcal/internal/log"
	"portalcal/internal/model"
)

// Writer receives the flattened events of one feed.
type Writer interface {
	UpsertFeedEvents(ctx context.Context, feedID string, events []model.Event) (int, error)
}

// FeedResult is the outcome of syncing a single feed.
type FeedResult struct {
	ID        string
	Events    int
	FromCache bool
	Truncated []string
	Err       error
}

type Syncer struct {
	fetcher  *ics.Fetcher
	store    Writer
	feeds    []config.FeedConfig
	loc      *time.Location
	horizon  time.Duration
	backfill time.Duration
	now      func() time.Time

	// mu keeps a slow manual sync and a cron tick from interleaving.
	mu sync.Mutex
}

func New(cfg *config.Config, store Writer, fetcher *ics.Fetcher) *Syncer {
	return &Syncer{
		fetcher:  fetcher,
		store:    store,
		feeds:    cfg.Feeds,
		loc:      cfg.Location(),
		horizon:  time.Duration(cfg.HorizonDays) * 24 * time.Hour,
		backfill: time.Duration(cfg.BackfillDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// RunOnce syncs every configured feed. A failing feed does not stop the
// others; its stored events are left untouched and its error is joined into
// the returned error.
func (s *Syncer) RunOnce(ctx context.Context) ([]FeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().In(s.loc)
	window := ics.ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      now.Add(-s.backfill),
		RangeEnd:        now.Add(s.horizon),
	}

	results := make([]FeedResult, 0, len(s.feeds))
	var errs []error
	for _, feed := range s.feeds {
		res := s.syncFeed(ctx, feed, window)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", feed.ID, res.Err))
			appLog.Error("feed sync failed", res.Err, "id", feed.ID)
		} else {
			appLog.Info("feed synced", "id", feed.ID, "events", res.Events, "from_cache", res.FromCache)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (s *Syncer) syncFeed(ctx context.Context, feed config.FeedConfig, window ics.ExpandConfig) FeedResult {
	res := FeedResult{ID: feed.ID}
	src := ics.Source{ID: feed.ID, Name: feed.Name, URL: feed.URL}

	fetched, err := s.fetcher.FetchOne(ctx, src)
	if err != nil {
		res.Err = err
		return res
	}
	res.FromCache = fetched.FromCache

	parsed, err := ics.ParseICS(src, fetched.Body, s.loc)
	if err != nil {
		res.Err = fmt.Errorf("parse: %w", err)
		return res
	}
	expanded, err := ics.ExpandOccurrences(parsed, window)
	if err != nil {
		res.Err = fmt.Errorf("expand: %w", err)
		return res
	}
	res.Truncated = expanded.Truncated

	n, err := s.store.UpsertFeedEvents(ctx, feed.ID, expanded.Events)
	if err != nil {
		res.Err = fmt.Errorf("store: %w", err)
		return res
	}
	res.Events = n
	return res
}

// Start runs RunOnce on the cron spec until ctx is cancelled. It returns
// once the schedule is installed; a bad spec is reported immediately. The
// returned channel is closed after cancellation, once the schedule has
// stopped and a sync in progress has returned.
func (s *Syncer) Start(ctx context.Context, spec string) (<-chan struct{}, error) {
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() {
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("feed sync schedule %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("feed sync scheduled", "spec", spec, "feeds", len(s.feeds))

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Debug("feed sync stopped")
	}()
	return done, nil
}
