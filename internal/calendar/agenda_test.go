package calendar

import (
	"reflect"
	"testing"
	"time"
)

func sampleEvents() []Item {
	return []Item{
		event("1", date(2025, time.May, 15), "Annual Research Symposium 2025", "UP Cebu Official", "Join the academic community"),
		event("2", date(2025, time.May, 13), "Science Week: Opening Gala", "Sciences Federation", "A night of celebration"),
		event("3", date(2025, time.May, 10), "Tech Talk", "Computer Science Guild", "Generative AI and Ethics"),
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBuildAgendaSearch(t *testing.T) {
	got := BuildAgenda(sampleEvents(), AgendaOptions{Query: "gala"})
	if !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Fatalf("gala search = %v", ids(got))
	}

	got = BuildAgenda(sampleEvents(), AgendaOptions{Query: "GUILD"})
	if !reflect.DeepEqual(ids(got), []string{"3"}) {
		t.Fatalf("organizer search = %v", ids(got))
	}

	// Spaces are part of the query.
	got = BuildAgenda(sampleEvents(), AgendaOptions{Query: "   "})
	if len(got) != 0 {
		t.Fatalf("whitespace search = %v, want none", ids(got))
	}
	regala := []Item{event("r", date(2025, time.May, 1), "Regala Night", "Alumni", "")}
	if got := BuildAgenda(regala, AgendaOptions{Query: " gala"}); len(got) != 0 {
		t.Fatalf("leading space matched mid-word: %v", ids(got))
	}
	if got := BuildAgenda(sampleEvents(), AgendaOptions{Query: " gala"}); !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Fatalf("leading space search = %v", ids(got))
	}

	got = BuildAgenda(sampleEvents(), AgendaOptions{Query: "celebration", Sort: SortNewest})
	if !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Fatalf("description search = %v", ids(got))
	}

	if got := BuildAgenda(sampleEvents(), AgendaOptions{Query: "nothing like this"}); len(got) != 0 {
		t.Fatalf("expected empty agenda, got %v", ids(got))
	}
}

func TestBuildAgendaSortOrders(t *testing.T) {
	newest := BuildAgenda(sampleEvents(), AgendaOptions{Sort: SortNewest})
	oldest := BuildAgenda(sampleEvents(), AgendaOptions{Sort: SortOldest})

	if !reflect.DeepEqual(ids(newest), []string{"1", "2", "3"}) {
		t.Fatalf("newest = %v", ids(newest))
	}
	for i := range oldest {
		if oldest[i].ID != newest[len(newest)-1-i].ID {
			t.Fatalf("oldest %v is not the reverse of newest %v", ids(oldest), ids(newest))
		}
	}
	if def := BuildAgenda(sampleEvents(), AgendaOptions{}); !reflect.DeepEqual(ids(def), ids(oldest)) {
		t.Fatalf("default order = %v, want oldest first", ids(def))
	}
}

func TestBuildAgendaStableTies(t *testing.T) {
	same := date(2025, time.June, 1)
	items := []Item{
		event("x", same, "x"),
		event("y", same, "y"),
		event("early", date(2025, time.May, 1), "early"),
		event("z", same, "z"),
	}
	if got := ids(BuildAgenda(items, AgendaOptions{Sort: SortOldest})); !reflect.DeepEqual(got, []string{"early", "x", "y", "z"}) {
		t.Fatalf("oldest = %v", got)
	}
	if got := ids(BuildAgenda(items, AgendaOptions{Sort: SortNewest})); !reflect.DeepEqual(got, []string{"x", "y", "z", "early"}) {
		t.Fatalf("newest = %v", got)
	}
}

func TestBuildAgendaIdempotentAndPure(t *testing.T) {
	items := sampleEvents()
	before := append([]Item(nil), items...)
	opts := AgendaOptions{Sort: SortNewest, Query: "e"}

	once := BuildAgenda(items, opts)
	twice := BuildAgenda(once, opts)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent: %v vs %v", ids(once), ids(twice))
	}
	if !reflect.DeepEqual(items, before) {
		t.Fatalf("input was modified")
	}
	if again := BuildAgenda(items, opts); !reflect.DeepEqual(once, again) {
		t.Fatalf("repeated call differs")
	}
}

func TestBuildAgendaCompletion(t *testing.T) {
	items := []Item{
		task("open", date(2025, time.March, 3), "Enrollment Day", false),
		task("done", date(2025, time.March, 1), "Submit form 5", true),
		event("ev", date(2025, time.March, 2), "Orientation"),
	}
	if got := ids(BuildAgenda(items, AgendaOptions{Completion: CompletionPending})); !reflect.DeepEqual(got, []string{"ev", "open"}) {
		t.Fatalf("pending = %v", got)
	}
	if got := ids(BuildAgenda(items, AgendaOptions{Completion: CompletionCompleted})); !reflect.DeepEqual(got, []string{"done"}) {
		t.Fatalf("completed = %v", got)
	}
	if got := ids(BuildAgenda(items, AgendaOptions{})); !reflect.DeepEqual(got, []string{"done", "ev", "open"}) {
		t.Fatalf("any = %v", got)
	}
	if n := PendingCount(items); n != 1 {
		t.Fatalf("pending count = %d, want 1", n)
	}
}

func TestBuildAgendaSkipsUndated(t *testing.T) {
	items := []Item{event("nodate", time.Time{}, "floating"), event("ok", date(2025, time.March, 1), "ok")}
	if got := ids(BuildAgenda(items, AgendaOptions{})); !reflect.DeepEqual(got, []string{"ok"}) {
		t.Fatalf("agenda = %v", got)
	}
	if got := BuildAgenda(nil, AgendaOptions{}); got == nil || len(got) != 0 {
		t.Fatalf("empty input should yield an empty, non-nil agenda")
	}
}

func TestParseAgendaOptions(t *testing.T) {
	if s, err := ParseSortOrder("NEWEST", KindTask); err != nil || s != SortNewest {
		t.Fatalf("sort: %q %v", s, err)
	}
	if s, err := ParseSortOrder("oldest", KindEvent); err != nil || s != SortOldest {
		t.Fatalf("explicit sort on events: %q %v", s, err)
	}
	for kind, want := range map[Kind]SortOrder{
		KindEvent: SortNewest,
		KindTask:  SortOldest,
		"":        SortOldest,
	} {
		if s, err := ParseSortOrder("", kind); err != nil || s != want {
			t.Fatalf("default sort for %q = %q %v, want %q", kind, s, err, want)
		}
	}
	if _, err := ParseSortOrder("random", ""); err == nil {
		t.Fatalf("expected error for unknown sort")
	}
	for in, want := range map[string]CompletionFilter{
		"":          CompletionAny,
		"false":     CompletionPending,
		"true":      CompletionCompleted,
		"completed": CompletionCompleted,
	} {
		got, err := ParseCompletionFilter(in)
		if err != nil || got != want {
			t.Fatalf("completion %q = %q, %v", in, got, err)
		}
	}
}
