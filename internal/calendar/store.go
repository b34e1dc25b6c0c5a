// Package calendar persists extracted events. The Store interface models
// the external calendar store; the commit service drives the permission,
// fallback and save protocol against it.
package calendar

import (
	"context"
	"errors"

	"textcal/internal/model"
)

// Info identifies one writable calendar in the store.
type Info struct {
	// ID is the store's identifier for the calendar.
	ID string
	// Name is the human-facing label.
	Name string
}

// Store is the external calendar store collaborator.
type Store interface {
	// RequestAccess asks for write access. Idempotent; a denial is
	// terminal until the user changes system settings.
	RequestAccess(ctx context.Context) (bool, error)

	// Calendars enumerates writable calendars only.
	Calendars(ctx context.Context) ([]Info, error)

	// DefaultCalendar returns the store's default target, with ok=false
	// when the store has none.
	DefaultCalendar(ctx context.Context) (Info, bool)

	// Save persists the event into the given calendar. The store assigns
	// its own identity to the saved entry.
	Save(ctx context.Context, cal Info, ev *model.Event) error
}

// ErrAccessDenied means the store refused write access.
var ErrAccessDenied = errors.New("calendar access denied")

// CreateError wraps any failure to create the calendar entry after access
// was granted.
type CreateError struct {
	Detail string
	Err    error
}

func (e *CreateError) Error() string {
	if e.Err != nil {
		return "event creation failed: " + e.Detail + ": " + e.Err.Error()
	}
	return "event creation failed: " + e.Detail
}

func (e *CreateError) Unwrap() error { return e.Err }
