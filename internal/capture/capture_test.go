package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// pngHeader is the 8-byte PNG signature plus padding so content sniffing
// has something to chew on.
var pngHeader = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

func TestTextSource(t *testing.T) {
	p, err := TextSource("dinner friday 7pm").Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.IsImage() || p.Text != "dinner friday 7pm" {
		t.Errorf("payload = %+v", p)
	}
}

func TestFileSourceText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("standup at 9"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := FileSource(path).Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.IsImage() || p.Text != "standup at 9" {
		t.Errorf("payload = %+v", p)
	}
}

func TestFileSourceImageByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := FileSource(path).Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsImage() {
		t.Error("png file should be an image payload")
	}
}

func TestFileSourceImageBySniffing(t *testing.T) {
	// No telling extension; the PNG signature decides.
	path := filepath.Join(t.TempDir(), "clipboard")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := FileSource(path).Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsImage() {
		t.Error("sniffed PNG should be an image payload")
	}
}

func TestFileSourceMissing(t *testing.T) {
	_, err := FileSource(filepath.Join(t.TempDir(), "nope.txt")).Acquire(context.Background())
	if err == nil {
		t.Fatal("missing file must error")
	}
}

func TestURLSourceRequiresURL(t *testing.T) {
	_, err := URLSource{}.Acquire(context.Background())
	if err == nil {
		t.Fatal("empty URL must error")
	}
}
