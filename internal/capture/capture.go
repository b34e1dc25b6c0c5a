// Package capture acquires pipeline input: raw text, an image file, or a
// screenshot of a web page rendered by headless Chromium.
package capture

import (
	"context"
	"net/http"
	"os"
	"strings"
)

// Payload is the acquired input. Exactly one of Text and Image is set.
type Payload struct {
	Text  string
	Image []byte
}

// IsImage reports whether the payload needs text recognition.
func (p Payload) IsImage() bool { return len(p.Image) > 0 }

// Source acquires a single input payload.
type Source interface {
	Acquire(ctx context.Context) (Payload, error)
}

// TextSource wraps literal text (stdin, flag value, inbox text file).
type TextSource string

func (s TextSource) Acquire(context.Context) (Payload, error) {
	return Payload{Text: string(s)}, nil
}

// FileSource reads a file and sniffs whether it is an image or text.
type FileSource string

func (s FileSource) Acquire(context.Context) (Payload, error) {
	data, err := os.ReadFile(string(s))
	if err != nil {
		return Payload{}, err
	}
	if isImage(string(s), data) {
		return Payload{Image: data}, nil
	}
	return Payload{Text: string(data)}, nil
}

// isImage decides by extension first, content sniffing second. Only the
// raster formats the recognizers accept count.
func isImage(name string, data []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return true
	}
	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg":
		return true
	}
	return false
}
