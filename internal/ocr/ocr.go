// Package ocr implements the text-recognition backends that turn an image
// into plain text. An empty-but-successful result is returned as-is; the
// pipeline decides whether empty text is fatal.
package ocr

import "context"

// Recognizer is a text-recognition backend.
type Recognizer interface {
	// Name returns the recognizer name used in configuration and errors.
	Name() string

	// RecognizeText extracts the visible text from an encoded image
	// (PNG or JPEG bytes).
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// RecognitionError wraps any failure to convert an image into text.
type RecognitionError struct {
	Detail string
	Err    error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return "text recognition failed: " + e.Detail + ": " + e.Err.Error()
	}
	return "text recognition failed: " + e.Detail
}

func (e *RecognitionError) Unwrap() error { return e.Err }
