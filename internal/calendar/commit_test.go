package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"textcal/internal/model"
)

type fakeStore struct {
	granted    bool
	accessErr  error
	calendars  []Info
	defaultCal *Info

	saved     []*model.Event
	savedInto []Info
	saveErr   error
}

func (f *fakeStore) RequestAccess(context.Context) (bool, error) { return f.granted, f.accessErr }
func (f *fakeStore) Calendars(context.Context) ([]Info, error)   { return f.calendars, nil }
func (f *fakeStore) DefaultCalendar(context.Context) (Info, bool) {
	if f.defaultCal == nil {
		return Info{}, false
	}
	return *f.defaultCal, true
}
func (f *fakeStore) Save(_ context.Context, cal Info, ev *model.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, ev)
	f.savedInto = append(f.savedInto, cal)
	return nil
}

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Send(summary, body string) {
	r.sent = append(r.sent, summary+": "+body)
}

func testEvent() *model.Event {
	return &model.Event{
		ID:    model.NewID(),
		Title: "Dentist",
		Start: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
	}
}

func TestCommitAccessDenied(t *testing.T) {
	c := NewCommitter(&fakeStore{granted: false}, nil)
	err := c.CreateEvent(context.Background(), testEvent())
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}
}

func TestCommitUsesRequestedCalendar(t *testing.T) {
	work := Info{ID: "work", Name: "work"}
	st := &fakeStore{
		granted:    true,
		calendars:  []Info{{ID: "personal", Name: "personal"}, work},
		defaultCal: &Info{ID: "personal", Name: "personal"},
	}
	c := NewCommitter(st, nil)

	ev := testEvent()
	ev.CalendarID = "work"
	if err := c.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(st.savedInto) != 1 || st.savedInto[0].ID != "work" {
		t.Errorf("saved into %+v, want work", st.savedInto)
	}
}

func TestCommitFallsBackToDefault(t *testing.T) {
	st := &fakeStore{
		granted:    true,
		calendars:  []Info{{ID: "personal", Name: "personal"}},
		defaultCal: &Info{ID: "personal", Name: "personal"},
	}
	c := NewCommitter(st, nil)

	ev := testEvent()
	ev.CalendarID = "does-not-exist"
	if err := c.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(st.savedInto) != 1 || st.savedInto[0].ID != "personal" {
		t.Errorf("saved into %+v, want default", st.savedInto)
	}
}

func TestCommitNoCalendarAvailable(t *testing.T) {
	st := &fakeStore{granted: true}
	c := NewCommitter(st, nil)

	ev := testEvent()
	ev.CalendarID = "does-not-exist"
	err := c.CreateEvent(context.Background(), ev)
	var ce *CreateError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CreateError", err)
	}
	if !strings.Contains(ce.Error(), "no calendar available") {
		t.Errorf("detail = %q", ce.Error())
	}
}

func TestCommitWrapsSaveFailure(t *testing.T) {
	st := &fakeStore{
		granted:    true,
		defaultCal: &Info{ID: "personal", Name: "personal"},
		saveErr:    errors.New("disk full"),
	}
	c := NewCommitter(st, nil)

	err := c.CreateEvent(context.Background(), testEvent())
	var ce *CreateError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CreateError", err)
	}
	if !errors.Is(err, st.saveErr) {
		t.Error("store error should stay unwrappable")
	}
}

func TestCommitNotifiesOnSuccessOnly(t *testing.T) {
	n := &recordingNotifier{}
	st := &fakeStore{granted: true, defaultCal: &Info{ID: "personal", Name: "personal"}}
	c := NewCommitter(st, n)

	if err := c.CreateEvent(context.Background(), testEvent()); err != nil {
		t.Fatal(err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("notifications = %v, want exactly one", n.sent)
	}

	n.sent = nil
	st.saveErr = errors.New("nope")
	if err := c.CreateEvent(context.Background(), testEvent()); err == nil {
		t.Fatal("expected save failure")
	}
	if len(n.sent) != 0 {
		t.Errorf("failed commit must not notify, got %v", n.sent)
	}
}

// No idempotency: committing the same record twice creates two entries.
func TestCommitTwiceCreatesTwoEntries(t *testing.T) {
	st := &fakeStore{granted: true, defaultCal: &Info{ID: "personal", Name: "personal"}}
	c := NewCommitter(st, nil)

	ev := testEvent()
	if err := c.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if err := c.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(st.saved) != 2 {
		t.Errorf("saved %d entries, want 2", len(st.saved))
	}
}
