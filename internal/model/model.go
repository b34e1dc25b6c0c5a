package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// DefaultDuration is the effective duration applied when an event has a
// start instant but no explicit end.
const DefaultDuration = 60 * time.Minute

// Event is the canonical structured event produced by the extraction
// pipeline. It is created by the response normalizer (or by direct user
// edit) and handed to the calendar store on commit; the store assigns its
// own identity on save.
type Event struct {
	// ID is an opaque unique identifier assigned at creation.
	ID string

	// Title is required; an Event without a title is not valid.
	Title string

	// Start is the event start. For all-day events only the date part is
	// meaningful.
	Start time.Time

	// End is optional. When nil, EffectiveEnd derives a display/commit end.
	End *time.Time

	// AllDay marks a date-scoped event; Start/End are treated as calendar
	// dates, not instants.
	AllDay bool

	Location string
	Notes    string

	// URL is an optional reference link attached to the event.
	URL string

	// Recurrence is an optional RRULE string (e.g. "FREQ=WEEKLY;BYDAY=MO").
	// It is validated at normalization time and dropped if unparseable.
	Recurrence string

	// CalendarID optionally names the destination calendar; resolved at
	// commit time when empty.
	CalendarID string

	// SourceText is the original input the event was extracted from, kept
	// for user audit. It is never sent back to a provider.
	SourceText string
}

// EffectiveEnd returns the end used for display and commit: the explicit
// end when present, the whole start day for all-day events, and otherwise
// start plus DefaultDuration.
func (e *Event) EffectiveEnd() time.Time {
	if e.AllDay {
		// All-day events span their own date; an explicit end is ignored
		// for duration purposes.
		return e.Start
	}
	if e.End != nil {
		return *e.End
	}
	return e.Start.Add(DefaultDuration)
}

// Valid reports whether the record satisfies the minimum contract for
// commit: a non-empty title and a usable start.
func (e *Event) Valid() bool {
	return e.Title != "" && !e.Start.IsZero()
}

// ProviderResponse mirrors the superset of fields any parsing backend may
// emit. Every field is optional by contract; the normalizer decides which
// absences are fatal.
type ProviderResponse struct {
	Title      string `json:"title"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	Recurrence string `json:"recurrence"`

	// IsAllDay is a pointer so an explicit false can be told apart from
	// an absent field.
	IsAllDay *bool `json:"is_all_day"`
}

// NewID returns a random 16-byte hex identifier.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms; a fixed marker
		// beats threading an error through every caller.
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(b[:])
}
