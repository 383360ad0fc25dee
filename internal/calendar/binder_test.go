package calendar

import (
	"testing"
	"time"
)

func task(id string, when time.Time, title string, done bool) Item {
	return Item{ID: id, Kind: KindTask, Date: when, Title: title, Completed: done}
}

func event(id string, when time.Time, title string, keywords ...string) Item {
	return Item{ID: id, Kind: KindEvent, Date: when, Title: title, Keywords: keywords}
}

func TestSameDayIgnoresTimeOfDay(t *testing.T) {
	item := time.Date(2025, time.March, 2, 23, 0, 0, 0, time.UTC)
	cell := DayCell{Date: date(2025, time.March, 2), IsCurrentMonth: true}

	if !CellHasItem(cell, []Item{task("t1", item, "late", false)}) {
		t.Fatalf("expected 23:00 item to bind to its day")
	}
	if CellHasItem(DayCell{Date: date(2025, time.March, 3)}, []Item{task("t1", item, "late", false)}) {
		t.Fatalf("item bound to the following day")
	}
}

func TestSameDayUsesCellLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)
	// 2025-03-01 20:00 UTC is 2025-03-02 04:00 in UTC+8.
	it := task("t1", time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC), "x", false)
	cell := DayCell{Date: time.Date(2025, time.March, 2, 0, 0, 0, 0, manila)}
	if !CellHasItem(cell, []Item{it}) {
		t.Fatalf("expected item to bind in the display zone")
	}
}

func TestItemsForCellPaddingAndOrder(t *testing.T) {
	items := []Item{
		task("a", time.Date(2025, time.February, 24, 9, 0, 0, 0, time.UTC), "a", false),
		event("b", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), "b"),
		task("c", time.Date(2025, time.February, 24, 8, 0, 0, 0, time.UTC), "c", true),
	}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())

	// Feb 24 is the second padding cell of the March 2025 grid.
	padding := cells[1]
	if padding.IsCurrentMonth {
		t.Fatalf("cell 1 should be padding")
	}
	got := ItemsForCell(padding, items)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("items for padding cell = %+v", got)
	}
	if got := ItemsForCell(cells[0], items); len(got) != 0 {
		t.Fatalf("Feb 23 should be empty, got %+v", got)
	}
}

func TestBindPreviewAndMore(t *testing.T) {
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	items := []Item{
		task("1", day.Add(1*time.Hour), "one", true),
		task("2", day.Add(2*time.Hour), "two", true),
		task("3", day.Add(3*time.Hour), "three", false),
		event("4", day.Add(4*time.Hour), "four"),
	}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())
	bound := Bind(cells, items, BindOptions{})

	var target BoundCell
	for _, bc := range bound {
		if SameDay(bc.Date, day) {
			target = bc
		}
	}
	if len(target.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(target.Items))
	}
	if len(target.Preview) != 2 || target.Preview[0].ID != "1" || target.Preview[1].ID != "2" {
		t.Fatalf("preview = %+v", target.Preview)
	}
	if target.More != 2 {
		t.Fatalf("more = %d, want 2", target.More)
	}
	if !target.HasItems || !target.HasPending {
		t.Fatalf("flags = items:%v pending:%v", target.HasItems, target.HasPending)
	}
	if len(bound) != len(cells) {
		t.Fatalf("bound %d cells, want %d", len(bound), len(cells))
	}
}

func TestBindPendingFilter(t *testing.T) {
	day := date(2025, time.March, 5)
	items := []Item{
		task("done", day, "done", true),
		event("talk", day, "talk"),
	}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())

	all := Bind(cells, items, BindOptions{})
	pending := Bind(cells, items, BindOptions{Filter: PendingOnly})
	idx := LeadingPadding(YearMonth{2025, time.March}, time.Sunday) + 4

	if !all[idx].HasItems || all[idx].HasPending {
		t.Fatalf("all: %+v", all[idx])
	}
	if pending[idx].HasItems || len(pending[idx].Items) != 0 {
		t.Fatalf("pending filter should leave the day empty: %+v", pending[idx])
	}
}

func TestBindPaddingPolicy(t *testing.T) {
	items := []Item{task("a", date(2025, time.February, 24), "a", false)}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())

	shown := Bind(cells, items, BindOptions{Padding: PaddingShow})[1]
	if !shown.HasItems || !shown.HasPending || len(shown.Preview) != 1 {
		t.Fatalf("show policy: %+v", shown)
	}

	hidden := Bind(cells, items, BindOptions{Padding: PaddingHide})[1]
	if hidden.HasItems || hidden.HasPending || len(hidden.Preview) != 0 || hidden.More != 0 {
		t.Fatalf("hide policy should suppress indicators: %+v", hidden)
	}
	if len(hidden.Items) != 1 {
		t.Fatalf("hide policy must keep the bound items, got %d", len(hidden.Items))
	}
}

func TestBindPreviewLimit(t *testing.T) {
	day := date(2025, time.March, 20)
	items := []Item{event("1", day, "a"), event("2", day, "b"), event("3", day, "c")}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())
	idx := LeadingPadding(YearMonth{2025, time.March}, time.Sunday) + 19

	if bc := Bind(cells, items, BindOptions{PreviewLimit: 5})[idx]; len(bc.Preview) != 3 || bc.More != 0 {
		t.Fatalf("limit 5: %+v", bc)
	}
	if bc := Bind(cells, items, BindOptions{PreviewLimit: -1})[idx]; len(bc.Preview) != 0 || bc.More != 3 {
		t.Fatalf("limit -1: %+v", bc)
	}
}

func TestBindMatchesItemsForCell(t *testing.T) {
	var items []Item
	base := date(2025, time.February, 20)
	for i := 0; i < 60; i++ {
		items = append(items, task(string(rune('a'+i%26)), base.Add(time.Duration(i)*13*time.Hour), "x", i%3 == 0))
	}
	cells := BuildMonthGrid(YearMonth{2025, time.March}, time.Time{}, utcGrid())
	bound := Bind(cells, items, BindOptions{})
	for i, c := range cells {
		want := ItemsForCell(c, items)
		if len(want) != len(bound[i].Items) {
			t.Fatalf("cell %s: bind %d items, ItemsForCell %d", c.Date, len(bound[i].Items), len(want))
		}
		for j := range want {
			if want[j].Date != bound[i].Items[j].Date {
				t.Fatalf("cell %s: order differs at %d", c.Date, j)
			}
		}
	}
}

func TestParsePaddingPolicy(t *testing.T) {
	if p, err := ParsePaddingPolicy(""); err != nil || p != PaddingShow {
		t.Fatalf("empty: %q %v", p, err)
	}
	if p, err := ParsePaddingPolicy("HIDE"); err != nil || p != PaddingHide {
		t.Fatalf("HIDE: %q %v", p, err)
	}
	if _, err := ParsePaddingPolicy("blink"); err == nil {
		t.Fatalf("expected error")
	}
}
