package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPreviewLimit is how many item titles a cell shows before collapsing
// the rest into "+K more".
const DefaultPreviewLimit = 2

// SameDay reports calendar-day equality: year, month and day match. Time of
// day is ignored. Each value is read in its own location, so convert both to
// the display zone first.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// CellHasItem reports whether any item falls on the cell's date. Padding
// cells are real dates and match items of the adjacent month.
func CellHasItem(cell DayCell, items []Item) bool {
	loc := cell.Date.Location()
	for _, it := range items {
		if SameDay(it.Date.In(loc), cell.Date) {
			return true
		}
	}
	return false
}

// ItemsForCell returns the items dated on the cell's day, in input order.
func ItemsForCell(cell DayCell, items []Item) []Item {
	loc := cell.Date.Location()
	var out []Item
	for _, it := range items {
		if SameDay(it.Date.In(loc), cell.Date) {
			out = append(out, it)
		}
	}
	return out
}

// PaddingPolicy decides whether padding cells show item indicators.
type PaddingPolicy string

const (
	// PaddingShow lets padding cells show indicators for adjacent-month items.
	PaddingShow PaddingPolicy = "show"
	// PaddingHide keeps padding cells visually empty. Their Items are still
	// bound, so a detail view opened on them lists everything.
	PaddingHide PaddingPolicy = "hide"
)

// ParsePaddingPolicy accepts "show" and "hide"; empty means show.
func ParsePaddingPolicy(s string) (PaddingPolicy, error) {
	switch PaddingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaddingShow:
		return PaddingShow, nil
	case PaddingHide:
		return PaddingHide, nil
	default:
		return "", fmt.Errorf("calendar: unknown padding policy %q", s)
	}
}

// BindOptions controls Bind.
type BindOptions struct {
	// PreviewLimit caps the titles listed directly in a cell. Zero means
	// DefaultPreviewLimit; a negative value shows none.
	PreviewLimit int

	// Filter, if set, runs before binding; items it rejects are not bound.
	Filter func(Item) bool

	Padding PaddingPolicy
}

func (o BindOptions) previewLimit() int {
	switch {
	case o.PreviewLimit == 0:
		return DefaultPreviewLimit
	case o.PreviewLimit < 0:
		return 0
	default:
		return o.PreviewLimit
	}
}

// BoundCell is a day cell together with the items dated on it.
type BoundCell struct {
	DayCell

	// Items is the full bound set, in input order.
	Items []Item `json:"items"`

	// Preview holds at most PreviewLimit items for inline display; More
	// counts the ones left out.
	Preview []Item `json:"preview"`
	More    int    `json:"more"`

	HasItems   bool `json:"has_items"`
	HasPending bool `json:"has_pending"`
}

// Bind associates items with grid cells by calendar-day equality. It indexes
// the items once, so the cost is linear in cells plus items.
func Bind(cells []DayCell, items []Item, opts BindOptions) []BoundCell {
	out := make([]BoundCell, len(cells))
	if len(cells) == 0 {
		return out
	}

	loc := cells[0].Date.Location()
	byDay := make(map[dayKey][]Item, len(items))
	for _, it := range items {
		if it.Date.IsZero() {
			continue
		}
		if opts.Filter != nil && !opts.Filter(it) {
			continue
		}
		k := keyOf(it.Date.In(loc))
		byDay[k] = append(byDay[k], it)
	}

	limit := opts.previewLimit()
	for i, cell := range cells {
		bound := byDay[keyOf(cell.Date.In(loc))]
		bc := BoundCell{DayCell: cell, Items: bound}
		if bc.Items == nil {
			bc.Items = []Item{}
		}
		if cell.IsCurrentMonth || opts.Padding != PaddingHide {
			decorate(&bc, limit)
		} else {
			bc.Preview = []Item{}
		}
		out[i] = bc
	}
	return out
}

func decorate(bc *BoundCell, limit int) {
	bc.HasItems = len(bc.Items) > 0
	for _, it := range bc.Items {
		if it.IsPending() {
			bc.HasPending = true
			break
		}
	}
	n := len(bc.Items)
	if n > limit {
		n = limit
	}
	bc.Preview = bc.Items[:n:n]
	bc.More = len(bc.Items) - n
}

// PendingOnly is a Filter that keeps open tasks.
func PendingOnly(it Item) bool {
	return it.IsPending()
}

// OfKind returns a Filter that keeps items of the given kind. An empty kind
// keeps everything.
func OfKind(k Kind) func(Item) bool {
	return func(it Item) bool {
		return k == "" || it.Kind == k
	}
}
