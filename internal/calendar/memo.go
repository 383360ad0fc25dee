package calendar

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"slices"
	"sync"
	"time"
)

const defaultMemoSize = 64

type gridKey struct {
	month     YearMonth
	weekStart time.Weekday
	loc       string
	today     dayKey
}

type agendaKey struct {
	fingerprint string
	opts        AgendaOptions
}

// Memo caches grid and agenda results. Both builders are pure, so a result
// can be reused whenever its inputs repeat: grids are keyed by month, week
// start, zone and today's date; agendas by the snapshot fingerprint and the
// options. It is safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	max     int
	grids   map[gridKey][]DayCell
	agendas map[agendaKey][]Item

	hits   int
	misses int
}

// NewMemo returns a Memo holding at most size entries per kind. A full table
// is dropped wholesale rather than evicted entry by entry.
func NewMemo(size int) *Memo {
	if size <= 0 {
		size = defaultMemoSize
	}
	return &Memo{
		max:     size,
		grids:   make(map[gridKey][]DayCell),
		agendas: make(map[agendaKey][]Item),
	}
}

// Grid is a memoized BuildMonthGrid. The returned slice is a copy.
func (m *Memo) Grid(ym YearMonth, today time.Time, opts GridOptions) []DayCell {
	ym = ym.Normalize()
	loc := opts.location()
	key := gridKey{
		month:     ym,
		weekStart: opts.WeekStart,
		loc:       loc.String(),
	}
	if !today.IsZero() {
		key.today = keyOf(today.In(loc))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cells, ok := m.grids[key]; ok {
		m.hits++
		return slices.Clone(cells)
	}
	m.misses++
	cells := BuildMonthGrid(ym, today, opts)
	if len(m.grids) >= m.max {
		clear(m.grids)
	}
	m.grids[key] = cells
	return slices.Clone(cells)
}

// Agenda is a memoized BuildAgenda. The returned slice is a copy.
func (m *Memo) Agenda(items []Item, opts AgendaOptions) []Item {
	key := agendaKey{fingerprint: Fingerprint(items), opts: opts}

	m.mu.Lock()
	defer m.mu.Unlock()
	if out, ok := m.agendas[key]; ok {
		m.hits++
		return slices.Clone(out)
	}
	m.misses++
	out := BuildAgenda(items, opts)
	if len(m.agendas) >= m.max {
		clear(m.agendas)
	}
	m.agendas[key] = out
	return slices.Clone(out)
}

// Render is Render with memoized grid and agenda steps.
func (m *Memo) Render(state ViewState, items []Item, today time.Time, opts RenderOptions) View {
	return render(m, state, items, today, opts)
}

// Stats reports cache hits and misses since creation.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Fingerprint hashes every field of every item, in order. Two snapshots with
// the same fingerprint produce the same agenda for the same options.
func Fingerprint(items []Item) string {
	h := sha256.New()
	var buf [8]byte
	writeString := func(s string) {
		binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	for _, it := range items {
		writeString(it.ID)
		writeString(string(it.Kind))
		writeString(it.Title)
		binary.BigEndian.PutUint64(buf[:], uint64(it.Date.Unix()))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(it.Date.Nanosecond()))
		h.Write(buf[:])
		if it.Completed {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		binary.BigEndian.PutUint64(buf[:], uint64(len(it.Keywords)))
		h.Write(buf[:])
		for _, kw := range it.Keywords {
			writeString(kw)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
