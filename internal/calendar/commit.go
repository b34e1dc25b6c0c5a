package calendar

import (
	"context"

	appLog "textcal/internal/log"
	"textcal/internal/model"
	"textcal/internal/notify"
)

// Committer persists validated events through a Store.
//
// There is no idempotency key: committing the same record twice creates
// two calendar entries. The store's native identity semantics are left
// untouched on purpose.
type Committer struct {
	store    Store
	notifier notify.Notifier
}

// NewCommitter returns a commit service over the given store. notifier
// may be nil to disable post-commit notifications.
func NewCommitter(store Store, notifier notify.Notifier) *Committer {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Committer{store: store, notifier: notifier}
}

// CreateEvent runs the commit protocol:
//
//  1. request access; denial is terminal
//  2. resolve the destination calendar: the record's own target when it
//     maps to a live writable calendar, else the store default
//  3. save; all-day events span a single day in the store, never the
//     timed 60-minute default
//  4. notify best-effort; a notification failure never fails the commit
func (c *Committer) CreateEvent(ctx context.Context, ev *model.Event) error {
	granted, err := c.store.RequestAccess(ctx)
	if err != nil {
		return &CreateError{Detail: "access request failed", Err: err}
	}
	if !granted {
		return ErrAccessDenied
	}

	target, err := c.resolveCalendar(ctx, ev.CalendarID)
	if err != nil {
		return err
	}

	if err := c.store.Save(ctx, target, ev); err != nil {
		return &CreateError{Detail: "store save failed", Err: err}
	}

	appLog.Info("event committed", "title", ev.Title, "calendar", target.ID, "all_day", ev.AllDay)
	c.notifier.Send("Event added", ev.Title+" → "+target.Name)

	return nil
}

// resolveCalendar maps the record's destination identifier onto a live
// writable calendar, falling back to the store default.
func (c *Committer) resolveCalendar(ctx context.Context, wanted string) (Info, error) {
	cals, err := c.store.Calendars(ctx)
	if err != nil {
		return Info{}, &CreateError{Detail: "calendar enumeration failed", Err: err}
	}

	if wanted != "" {
		for _, cal := range cals {
			if cal.ID == wanted {
				return cal, nil
			}
		}
		appLog.Warn("destination calendar not found, falling back to default", "wanted", wanted)
	}

	if def, ok := c.store.DefaultCalendar(ctx); ok {
		return def, nil
	}
	return Info{}, &CreateError{Detail: "no calendar available"}
}
