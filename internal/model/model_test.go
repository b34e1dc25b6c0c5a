package model

import (
	"testing"
	"time"
)

func TestEffectiveEnd(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local)
	explicit := start.Add(2 * time.Hour)

	cases := []struct {
		name string
		ev   Event
		want time.Time
	}{
		{"explicit end", Event{Start: start, End: &explicit}, explicit},
		{"default duration", Event{Start: start}, start.Add(DefaultDuration)},
		{"all-day spans its own date", Event{Start: start, AllDay: true}, start},
		// An end supplied on an all-day event is ignored for duration.
		{"all-day ignores explicit end", Event{Start: start, End: &explicit, AllDay: true}, start},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ev.EffectiveEnd(); !got.Equal(tc.want) {
				t.Errorf("EffectiveEnd = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local)
	if (&Event{Start: start}).Valid() {
		t.Error("event without title must not be valid")
	}
	if (&Event{Title: "X"}).Valid() {
		t.Error("event without start must not be valid")
	}
	if !(&Event{Title: "X", Start: start}).Valid() {
		t.Error("titled event with start must be valid")
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("consecutive IDs must differ")
	}
	if len(a) != 32 {
		t.Errorf("ID length = %d, want 32 hex chars", len(a))
	}
}
