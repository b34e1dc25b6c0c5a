// Package watch scans an inbox directory on a cron schedule and hands new
// files to the extraction pipeline. Processed files are renamed with a
// ".done" suffix so a restart does not replay them.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"

	appLog "textcal/internal/log"
)

// Handler processes one inbox file. It owns the single-flight decision:
// returning extract.ErrBusy (or any error) leaves the file in place for a
// later tick.
type Handler func(ctx context.Context, path string) error

// Watcher periodically scans a directory for new files.
type Watcher struct {
	dir      string
	schedule string
	handle   Handler
}

// New returns a watcher over dir using the given cron schedule
// (standard 5-field form, e.g. "*/2 * * * *").
func New(dir, schedule string, handle Handler) *Watcher {
	return &Watcher{dir: dir, schedule: schedule, handle: handle}
}

// Start runs the cron loop until ctx is canceled. One scan runs
// immediately at startup so a pre-filled inbox is not left waiting for
// the first tick.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.scan(ctx) }); err != nil {
		return err
	}

	appLog.Info("inbox watcher starting", "dir", w.dir, "schedule", w.schedule)
	w.scan(ctx)
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("inbox watcher stopped")
	return nil
}

// scan processes every unprocessed regular file in the inbox, oldest
// name first. Files are handled one at a time; the pipeline would drop
// concurrent triggers anyway.
func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		appLog.Error("inbox scan failed", err, "dir", w.dir)
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.IsDir() || strings.HasSuffix(e.Name(), ".done") || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		path := filepath.Join(w.dir, e.Name())
		if err := w.handle(ctx, path); err != nil {
			// Leave the file for the next tick; the handler already
			// logged the cause.
			appLog.Debug("inbox file not processed", "path", path, "reason", err)
			continue
		}

		if err := os.Rename(path, path+".done"); err != nil {
			appLog.Error("failed to mark inbox file done", err, "path", path)
		}
	}
}
