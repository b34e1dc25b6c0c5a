package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Tesseract runs the local tesseract binary. Given identical image bytes
// and settings the output is deterministic.
type Tesseract struct {
	// Languages is the hint list joined with '+' for the -l flag,
	// e.g. ["eng", "kor"] -> "eng+kor".
	Languages []string

	// Binary overrides the executable name; empty means "tesseract" from
	// PATH.
	Binary string
}

// NewTesseract returns a recognizer with the given language hints.
func NewTesseract(languages []string) *Tesseract {
	return &Tesseract{Languages: languages}
}

func (t *Tesseract) Name() string { return "tesseract" }

// RecognizeText pipes the image through tesseract in stdin/stdout mode.
// Automatic page segmentation with the LSTM engine favors accuracy over
// speed; the raw output is then cleaned up with correction heuristics.
func (t *Tesseract) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", &RecognitionError{Detail: "empty image"}
	}

	bin := t.Binary
	if bin == "" {
		bin = "tesseract"
	}
	langs := "eng"
	if len(t.Languages) > 0 {
		langs = strings.Join(t.Languages, "+")
	}

	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout", "-l", langs, "--psm", "3", "--oem", "1")
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "tesseract run failed"
		}
		return "", &RecognitionError{Detail: detail, Err: err}
	}

	return cleanupText(stdout.String()), nil
}

// cleanupText applies text-correction heuristics to raw OCR output:
// normalized line endings, de-hyphenated line breaks, per-line trimming
// and collapsed blank runs.
func cleanupText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	// Join words broken across lines by a trailing hyphen.
	s = strings.ReplaceAll(s, "-\n", "")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")
		if ln == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
