package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "portalcal/internal/log"
	"portalcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// ExpandConfig controls how feed recurrences are flattened.
type ExpandConfig struct {
	// DisplayLocation is the zone occurrences are converted to. All-day
	// occurrences keep their calendar date in this zone.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrences kept, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps a single RRULE. Zero means 500.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds flattened, one-off events ordered by date.
type ExpandResult struct {
	Events []model.Event
	// Truncated lists UIDs whose recurrence hit the cap.
	Truncated []string
}

// ExpandOccurrences flattens parsed feed entries into one event per
// occurrence inside the range. RRULE, EXDATE and RECURRENCE-ID overrides are
// applied here, so nothing downstream ever sees a recurring item.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	var uids []string
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range uids {
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			if hitCap {
				result.Truncated = append(result.Truncated, uid)
				appLog.Warn("feed recurrence truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
			}
			result.Events = append(result.Events, occ...)
		}
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		return result.Events[i].Date.Before(result.Events[j].Date)
	})
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return nil, false
		}
		return []model.Event{makeEvent(ev, ev.Start, cfg.DisplayLocation)}, false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	opt, err := rrule.StrToROption(ev.RawRRule)
	if err != nil {
		appLog.Error("feed RRULE unparseable", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	opt.Dtstart = ev.Start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		appLog.Error("feed RRULE rejected", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, start := range starts {
		key := ev.UID + "@" + start.UTC().Format(time.RFC3339)
		inst := ev
		if o, ok := findOverride(overrides, start); ok {
			inst = o
			start = o.Start
		}
		e := makeEvent(inst, start, cfg.DisplayLocation)
		e.FeedUID = key
		out = append(out, e)
	}
	return out, hitCap
}

func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeEvent(ev ParsedEvent, start time.Time, displayLoc *time.Location) model.Event {
	date := start.In(displayLoc)
	if ev.AllDay {
		y, m, d := start.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, displayLoc)
	}
	desc := ev.Description
	if ev.Location != "" {
		if desc != "" {
			desc += "\n"
		}
		desc += ev.Location
	}
	e := model.Event{
		Title:       ev.Summary,
		Description: desc,
		Org:         ev.Source.Name,
		Date:        date,
		AllDay:      ev.AllDay,
		Source:      model.SourceFeed,
		SourceLink:  ev.URL,
		FeedID:      ev.Source.ID,
		FeedUID:     ev.UID,
	}
	if e.Title == "" {
		e.Title = "(untitled)"
	}
	return e
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(aStart) {
		aEnd = aStart
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
