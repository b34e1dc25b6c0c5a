package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScanProcessesAndMarksDone(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var handled []string
	w := New(dir, "* * * * *", func(_ context.Context, path string) error {
		handled = append(handled, filepath.Base(path))
		return nil
	})
	w.scan(context.Background())

	if len(handled) != 2 {
		t.Fatalf("handled = %v, want both files", handled)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".done" {
			t.Errorf("file %s not marked done", e.Name())
		}
	}
}

func TestScanLeavesFailedFilesForNextTick(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "busy.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := New(dir, "* * * * *", func(context.Context, string) error {
		return errors.New("pipeline busy")
	})
	w.scan(context.Background())

	if _, err := os.Stat(filepath.Join(dir, "busy.txt")); err != nil {
		t.Fatal("failed file must stay in place for the next tick")
	}
}

func TestScanSkipsDoneAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"done.txt.done", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var handled int
	w := New(dir, "* * * * *", func(context.Context, string) error {
		handled++
		return nil
	})
	w.scan(context.Background())

	if handled != 0 {
		t.Errorf("handled = %d, want 0", handled)
	}
}
