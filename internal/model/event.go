package model

import (
	"strings"
	"time"

	"portalcal/internal/calendar"
)

// EventSource tells where an announcement came from.
type EventSource string

const (
	SourceCustom   EventSource = "CUSTOM"
	SourceFacebook EventSource = "FACEBOOK"
	// SourceFeed marks events imported from an organization's ICS feed.
	SourceFeed EventSource = "FEED"
)

// Event is an announcement with a date, shown on the calendar and in the
// events feed.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Org         string      `json:"org"`
	Date        time.Time   `json:"date"`
	AllDay      bool        `json:"all_day,omitempty"`
	Source      EventSource `json:"source"`
	SourceLink  string      `json:"source_link,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`

	// FeedID and FeedUID identify imported events: the configured feed and
	// the occurrence key within it.
	FeedID  string `json:"feed_id,omitempty"`
	FeedUID string `json:"feed_uid,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item projects the event for the calendar engine. Organizer and description
// are searchable keywords.
func (e Event) Item() calendar.Item {
	var kw []string
	if e.Org != "" {
		kw = append(kw, e.Org)
	}
	if e.Description != "" {
		kw = append(kw, e.Description)
	}
	return calendar.Item{
		ID:       e.ID,
		Kind:     calendar.KindEvent,
		Date:     e.Date,
		Title:    e.Title,
		Keywords: kw,
	}
}

// NewEvent contains information needed to create an Event by hand.
type NewEvent struct {
	Title       string      `json:"title" validate:"notblank"`
	Description string      `json:"description"`
	Org         string      `json:"org" validate:"notblank"`
	Date        string      `json:"date" validate:"required"`
	Source      EventSource `json:"source" validate:"omitempty,oneof=CUSTOM FACEBOOK"`
	SourceLink  string      `json:"source_link" validate:"omitempty,url"`
	ImageURL    string      `json:"image_url" validate:"omitempty,url"`
}

// Build validates ne and returns the event it describes. Dates without an
// offset are read in now's location. Past dates are allowed.
func (ne *NewEvent) Build(now time.Time) (Event, error) {
	ne.Title = cleanString(ne.Title)
	ne.Org = cleanString(ne.Org)
	ne.Description = strings.TrimSpace(ne.Description)
	ne.SourceLink = strings.TrimSpace(ne.SourceLink)
	ne.ImageURL = strings.TrimSpace(ne.ImageURL)
	if ne.Source == "" {
		ne.Source = SourceCustom
	}

	if err := Validate.Struct(ne); err != nil {
		return Event{}, err
	}
	date, err := calendar.ParseDate(ne.Date, now.Location())
	if err != nil {
		return Event{}, NewValidationError(err, FieldError{Field: "date", Error: "date is not a valid date"})
	}

	return Event{
		Title:       ne.Title,
		Description: ne.Description,
		Org:         ne.Org,
		Date:        date,
		Source:      ne.Source,
		SourceLink:  ne.SourceLink,
		ImageURL:    ne.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update replaces the editable fields of orig with ne's, validating ne as a
// whole the way Build does.
func (ne *NewEvent) Update(orig Event, now time.Time) (Event, error) {
	ev, err := ne.Build(now)
	if err != nil {
		return Event{}, err
	}
	ev.ID = orig.ID
	ev.FeedID = orig.FeedID
	ev.FeedUID = orig.FeedUID
	ev.CreatedAt = orig.CreatedAt
	return ev, nil
}
