package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport for page screenshots. Tall enough to catch invitation
// pages without scrolling.
const (
	defaultWidth   = 1280
	defaultHeight  = 2000
	defaultTimeout = 30 * time.Second
)

// URLSource captures a web page as a PNG screenshot via headless
// Chromium, to be run through text recognition afterwards.
type URLSource struct {
	// URL of the page to capture.
	URL string

	// Width / Height are the viewport dimensions in pixels; zero selects
	// the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero selects the default.
	Timeout time.Duration
}

// Acquire launches Chromium, navigates to the URL, waits for the document
// body, and screenshots the full page.
func (s URLSource) Acquire(parentCtx context.Context) (Payload, error) {
	if s.URL == "" {
		return Payload{}, fmt.Errorf("capture: URL is required")
	}

	width := s.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := s.Height
	if height <= 0 {
		height = defaultHeight
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(s.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return Payload{}, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	return Payload{Image: png}, nil
}
