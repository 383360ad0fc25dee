package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"portalcal/internal/calendar"
	"portalcal/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "portal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	due := time.Date(2025, time.March, 2, 23, 0, 0, 0, time.UTC)

	created, err := s.CreateTask(ctx, model.Task{Title: "Enrollment", DueDate: due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Priority != calendar.PriorityImportant {
		t.Fatalf("created = %+v", created)
	}

	got, err := s.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.DueDate.Equal(due) || got.Title != "Enrollment" {
		t.Fatalf("got = %+v", got)
	}

	toggled, err := s.ToggleTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("toggle did not complete the task")
	}
	toggled, err = s.ToggleTask(ctx, created.ID)
	if err != nil || toggled.Completed {
		t.Fatalf("second toggle = %+v, %v", toggled, err)
	}

	got.Title = "Enrollment Day"
	got.Priority = calendar.PriorityUrgent
	if err := s.UpdateTask(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil || len(tasks) != 1 || tasks[0].Title != "Enrollment Day" || tasks[0].Priority != calendar.PriorityUrgent {
		t.Fatalf("list = %+v, %v", tasks, err)
	}

	if err := s.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTask(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if err := s.DeleteTask(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.ToggleTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle missing: %v", err)
	}
}

func TestEventsAndFeedUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	manual, err := s.CreateEvent(ctx, model.Event{Title: "Tech Talk", Org: "Computer Science Guild", Date: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if manual.Source != model.SourceCustom {
		t.Fatalf("source = %q", manual.Source)
	}

	feed := []model.Event{
		{Title: "Week 1 meeting", FeedUID: "m1", Date: time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC)},
		{Title: "Week 2 meeting", FeedUID: "m2", Date: time.Date(2025, time.May, 12, 10, 0, 0, 0, time.UTC)},
	}
	if n, err := s.UpsertFeedEvents(ctx, "guild", feed); err != nil || n != 2 {
		t.Fatalf("upsert = %d, %v", n, err)
	}
	if n, err := s.UpsertFeedEvents(ctx, "guild", feed[:1]); err != nil || n != 1 {
		t.Fatalf("second upsert = %d, %v", n, err)
	}

	events, err := s.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want manual + one feed event", len(events))
	}
	if events[0].FeedID != "guild" || events[0].Source != model.SourceFeed {
		t.Fatalf("feed event = %+v", events[0])
	}
	if events[1].ID != manual.ID {
		t.Fatalf("manual event lost: %+v", events)
	}

	manual.Title = "Tech Talk: AI"
	if err := s.UpdateEvent(ctx, manual); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.UpdateEvent(ctx, model.Event{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if _, err := s.UpsertFeedEvents(ctx, "", nil); err == nil {
		t.Fatalf("expected error for empty feed id")
	}
}

func TestSnapshotItems(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	day := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

	if _, err := s.CreateTask(ctx, model.Task{Title: "Pay fees", DueDate: day}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := s.CreateEvent(ctx, model.Event{Title: "Opening Gala", Org: "Sciences Federation", Date: day}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	items := snap.Items()
	if len(items) != 2 || items[0].Kind != calendar.KindTask || items[1].Kind != calendar.KindEvent {
		t.Fatalf("items = %+v", items)
	}
	if calendar.PendingCount(items) != 1 {
		t.Fatalf("pending = %d", calendar.PendingCount(items))
	}
}

func TestPagesSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []model.Page{
		{Name: "UP Cebu School of Management", URL: "https://facebook.com/upcebusom", Type: model.PageAcademic},
		{Name: "Computer Science Guild", URL: "https://facebook.com/csg", Type: model.PageOrganization},
		{Name: "100%_Club", URL: "https://facebook.com/club", Type: model.PageInterest},
	} {
		if err := s.SavePage(ctx, p); err != nil {
			t.Fatalf("save %s: %v", p.Name, err)
		}
	}

	got, err := s.SearchPages(ctx, "guild")
	if err != nil || len(got) != 1 || got[0].Name != "Computer Science Guild" {
		t.Fatalf("search guild = %+v, %v", got, err)
	}
	got, err = s.SearchPages(ctx, "%_")
	if err != nil || len(got) != 1 || got[0].Name != "100%_Club" {
		t.Fatalf("search wildcard literal = %+v, %v", got, err)
	}
	all, err := s.SearchPages(ctx, "  ")
	if err != nil || len(all) != 3 {
		t.Fatalf("empty search = %d, %v", len(all), err)
	}

	if err := s.SavePage(ctx, model.Page{Name: "Computer Science Guild", URL: "https://facebook.com/csguild", Type: model.PageFederation}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	p, err := s.GetPage(ctx, "Computer Science Guild")
	if err != nil || p.URL != "https://facebook.com/csguild" || p.Type != model.PageFederation {
		t.Fatalf("get = %+v, %v", p, err)
	}
	if err := s.DeletePage(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestUpdatePageRename(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	chess := model.Page{Name: "Chess Club", URL: "https://facebook.com/chess", Type: model.PageInterest}
	math := model.Page{Name: "Math Society", URL: "https://facebook.com/math", Type: model.PageAcademic}
	for _, p := range []model.Page{chess, math} {
		if err := s.SavePage(ctx, p); err != nil {
			t.Fatalf("save %s: %v", p.Name, err)
		}
	}

	taken := chess
	taken.Name = "Math Society"
	if err := s.UpdatePage(ctx, "Chess Club", taken); !errors.Is(err, ErrExists) {
		t.Fatalf("rename onto existing name: %v", err)
	}
	if got, err := s.GetPage(ctx, "Math Society"); err != nil || got != math {
		t.Fatalf("math society = %+v, %v", got, err)
	}
	if got, err := s.GetPage(ctx, "Chess Club"); err != nil || got != chess {
		t.Fatalf("chess club = %+v, %v", got, err)
	}

	renamed := chess
	renamed.Name = "Chess Society"
	if err := s.UpdatePage(ctx, "Chess Club", renamed); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := s.GetPage(ctx, "Chess Club"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old name still present: %v", err)
	}
	all, err := s.ListPages(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("pages = %+v, %v", all, err)
	}

	if err := s.UpdatePage(ctx, "Nope", model.Page{Name: "Nope", URL: "https://facebook.com/nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}
