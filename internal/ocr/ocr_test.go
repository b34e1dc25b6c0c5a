package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"textcal/internal/provider"
)

func TestCleanupText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  hello \n", "hello"},
		{"crlf", "a\r\nb", "a\nb"},
		{"dehyphenates", "meet-\ning room", "meeting room"},
		{"collapses blanks", "a\n\n\n\nb", "a\n\nb"},
		{"trailing spaces per line", "a  \nb\t", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanupText(tc.in); got != tc.want {
				t.Errorf("cleanupText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTesseractEmptyImage(t *testing.T) {
	rec := NewTesseract(nil)
	_, err := rec.RecognizeText(context.Background(), nil)
	var re *RecognitionError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RecognitionError", err)
	}
}

func TestVisionRecognize(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req visionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Think {
			t.Error("reasoning must stay disabled")
		}
		if len(req.Images) != 1 || req.Images[0] != base64.StdEncoding.EncodeToString(img) {
			t.Error("image not base64-encoded into request")
		}
		json.NewEncoder(w).Encode(visionResponse{Response: "  Team lunch Friday 12:30  \n"})
	}))
	defer srv.Close()

	v := NewVision(srv.URL, "llava")
	text, err := v.RecognizeText(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Team lunch Friday 12:30" {
		t.Errorf("text = %q, want trimmed transcription", text)
	}
}

func TestVisionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewVision(srv.URL, "llava")
	_, err := v.RecognizeText(context.Background(), []byte("img"))
	var re *RecognitionError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RecognitionError", err)
	}
}

func TestVisionUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	v := NewVision(srv.URL, "llava")
	_, err := v.RecognizeText(context.Background(), []byte("img"))
	if !errors.Is(err, provider.ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestVisionEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(visionResponse{Response: "   "})
	}))
	defer srv.Close()

	v := NewVision(srv.URL, "llava")
	text, err := v.RecognizeText(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("empty recognition result must succeed, got %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}
