package writer

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"pic2any/contracts"
	"pic2any/formats"
)

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/a/b/photo.HEIC", "photo"},
		{"photo.jpeg", "photo"},
		{"/a/archive.page.tiff", "archive.page"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFramePathSingleVsMulti(t *testing.T) {
	w := New("/out/pic")

	if got := w.FramePath("scan", 0, 1, "png"); got != filepath.Join("/out/pic", "scan.png") {
		t.Errorf("single-frame path = %q", got)
	}
	if got := w.FramePath("scan", 0, 3, "png"); got != filepath.Join("/out/pic", "scan", "scan_page1.png") {
		t.Errorf("multi-frame page 1 path = %q", got)
	}
	if got := w.FramePath("scan", 2, 3, "png"); got != filepath.Join("/out/pic", "scan", "scan_page3.png") {
		t.Errorf("multi-frame page 3 path = %q", got)
	}
}

func TestEnsureRootIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pic")
	w := New(root)
	if err := w.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	if err := w.EnsureRoot(); err != nil {
		t.Fatalf("second EnsureRoot failed: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestEnsureRootWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	w := New(filepath.Join(blocker, "pic"))
	err := w.EnsureRoot()
	var werr *contracts.WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
}

func TestWriteFrameSingle(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "pic"))
	if err := w.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	f, _ := formats.Lookup("png")

	dest, err := w.WriteFrame("img", 0, 1, image.NewNRGBA(image.Rect(0, 0, 2, 2)), f, formats.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dest) != "img.png" {
		t.Errorf("dest = %q", dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestWriteFrameMultiCreatesSubfolder(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "pic"))
	if err := w.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	f, _ := formats.Lookup("png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	for i := 0; i < 2; i++ {
		dest, err := w.WriteFrame("anim", i, 2, img, f, formats.Options{})
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(w.Root, "anim", "anim_page"+string(rune('1'+i))+".png")
		if dest != want {
			t.Errorf("dest = %q, want %q", dest, want)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}
}

func TestWriteFrameOverwritesDeterministically(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "pic"))
	if err := w.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	f, _ := formats.Lookup("png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	first, err := w.WriteFrame("img", 0, 1, img, f, formats.Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.WriteFrame("img", 0, 1, img, f, formats.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("paths differ across reruns: %q vs %q", first, second)
	}
}

func TestWritePDF(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "pic"))
	if err := w.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	frames := []image.Image{
		image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		image.NewNRGBA(image.Rect(0, 0, 4, 4)),
	}
	dest, err := w.WritePDF("doc", frames, 95)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dest) != "doc.pdf" {
		t.Errorf("dest = %q", dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || string(data[:4]) != "%PDF" {
		t.Error("output is not a PDF")
	}
}
