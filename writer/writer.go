// Package writer computes destination paths and persists encoded frames.
package writer

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"pic2any/contracts"
	"pic2any/formats"
)

type Writer struct {
	Root string
}

func New(root string) *Writer {
	return &Writer{Root: root}
}

// EnsureRoot creates the batch output directory. Create-if-absent: an
// already existing directory is not an error.
func (w *Writer) EnsureRoot() error {
	if err := os.MkdirAll(w.Root, 0755); err != nil {
		return &contracts.WriteError{Path: w.Root, Err: err}
	}
	return nil
}

// Stem returns the input file name without directory or extension.
func Stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// FramePath computes the destination deterministically: single-frame inputs
// go flat under the root, multi-frame inputs get a per-source subfolder and
// 1-based page suffixes.
func (w *Writer) FramePath(stem string, pageIndex, frameCount int, ext string) string {
	if frameCount > 1 {
		name := fmt.Sprintf("%s_page%d.%s", stem, pageIndex+1, ext)
		return filepath.Join(w.Root, stem, name)
	}
	return filepath.Join(w.Root, stem+"."+ext)
}

// WriteFrame encodes img and persists it at the planned path, creating the
// per-source subfolder when needed. Existing outputs are overwritten.
func (w *Writer) WriteFrame(stem string, pageIndex, frameCount int, img image.Image, f *formats.Format, opt formats.Options) (string, error) {
	dest := w.FramePath(stem, pageIndex, frameCount, f.Ext)

	if frameCount > 1 {
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", &contracts.WriteError{Path: filepath.Dir(dest), Err: err}
		}
	}

	var buf bytes.Buffer
	if err := f.Encode(&buf, img, opt); err != nil {
		return "", &contracts.WriteError{Path: dest, Err: err}
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return "", &contracts.WriteError{Path: dest, Err: err}
	}
	return dest, nil
}

// WritePDF persists all frames of one input as a single multi-page PDF
// directly under the root.
func (w *Writer) WritePDF(stem string, frames []image.Image, quality int) (string, error) {
	dest := filepath.Join(w.Root, stem+".pdf")

	var buf bytes.Buffer
	if err := formats.EncodePDF(&buf, frames, quality); err != nil {
		return "", &contracts.WriteError{Path: dest, Err: err}
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return "", &contracts.WriteError{Path: dest, Err: err}
	}
	return dest, nil
}
