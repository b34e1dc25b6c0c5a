package calendar

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "textcal/internal/log"
	"textcal/internal/model"
)

// ICSStore is a calendar store backed by a directory of .ics files, one
// file per calendar. The file base name is the calendar identifier.
type ICSStore struct {
	dir string

	// defaultName is the calendar used when an event names no target.
	// Empty means the store has no default.
	defaultName string
}

// NewICSStore returns a store rooted at dir with the given default
// calendar name.
func NewICSStore(dir, defaultName string) *ICSStore {
	return &ICSStore{dir: dir, defaultName: defaultName}
}

// RequestAccess ensures the calendar directory exists and is writable.
// A permission failure is a denial, not an error; it stays denied until
// the user fixes the directory.
func (s *ICSStore) RequestAccess(context.Context) (bool, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, err
	}

	probe, err := os.CreateTemp(s.dir, ".textcal-access-*")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, err
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return true, nil
}

// Calendars lists the writable .ics files in the store directory. The
// default calendar is always included even before its file exists, since
// it is created lazily on first save.
func (s *ICSStore) Calendars(context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	infos := make([]Info, 0, len(entries)+1)
	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ics") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if !writable(path) {
			appLog.Debug("skipping read-only calendar", "path", path)
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".ics")
		infos = append(infos, Info{ID: name, Name: name})
		seen[name] = true
	}

	if s.defaultName != "" && !seen[s.defaultName] {
		infos = append(infos, Info{ID: s.defaultName, Name: s.defaultName})
	}

	return infos, nil
}

// DefaultCalendar returns the configured default, ok=false when none is
// configured.
func (s *ICSStore) DefaultCalendar(context.Context) (Info, bool) {
	if s.defaultName == "" {
		return Info{}, false
	}
	return Info{ID: s.defaultName, Name: s.defaultName}, true
}

// Save appends the event to the calendar's .ics file, creating the file
// on first use. The write is atomic (temp file + rename).
func (s *ICSStore) Save(ctx context.Context, cal Info, ev *model.Event) error {
	if !ev.Valid() {
		return errors.New("event is not valid")
	}

	path := filepath.Join(s.dir, cal.ID+".ics")

	vcal, err := s.loadOrCreate(path)
	if err != nil {
		return err
	}

	ve := vcal.AddEvent(ev.ID + "@textcal")
	now := time.Now()
	ve.SetCreatedTime(now)
	ve.SetDtStampTime(now)
	ve.SetSummary(ev.Title)

	if ev.AllDay {
		// All-day entries span exactly their own date: the end boundary
		// equals the start boundary, never the timed default duration.
		ve.SetAllDayStartAt(ev.Start)
		ve.SetAllDayEndAt(ev.Start)
	} else {
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.EffectiveEnd())
	}

	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	if ev.Notes != "" {
		ve.SetDescription(ev.Notes)
	}
	if ev.URL != "" {
		ve.SetURL(ev.URL)
	}
	if ev.Recurrence != "" {
		ve.AddRrule(ev.Recurrence)
	}

	return s.writeAtomic(path, vcal.Serialize())
}

// loadOrCreate parses an existing calendar file or starts a fresh one.
func (s *ICSStore) loadOrCreate(path string) (*ical.Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			vcal := ical.NewCalendar()
			vcal.SetProductId("-//textcal//textcal//EN")
			vcal.SetVersion("2.0")
			return vcal, nil
		}
		return nil, err
	}

	vcal, err := ical.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	return vcal, nil
}

func (s *ICSStore) writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".textcal-cal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// writable probes whether the file can be opened for writing.
func writable(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
