package batch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	ico "github.com/sergeymakinen/go-ico"

	"pic2any/contracts"
)

func writePNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeAnimatedGIF(t *testing.T, dir, name string, frameCount int) string {
	t.Helper()
	palette := []color.Color{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < frameCount; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
		frame.SetColorIndex(i%4, 0, 1)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunOneOutcomePerInput(t *testing.T) {
	dir := t.TempDir()
	good1 := writePNG(t, dir, "a.png", color.NRGBA{R: 255, A: 255})
	corrupt := filepath.Join(dir, "b.png")
	if err := os.WriteFile(corrupt, []byte("not a png at all"), 0644); err != nil {
		t.Fatal(err)
	}
	good2 := writePNG(t, dir, "c.png", color.NRGBA{G: 255, A: 255})

	o := New(4, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{
		Files:  []string{good1, corrupt, good2},
		Format: "jpg",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(summary.Outcomes) != 3 || summary.Total != 3 {
		t.Fatalf("got %d outcomes, want 3", len(summary.Outcomes))
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("succeeded/failed = %d/%d, want 2/1", summary.Succeeded, summary.Failed)
	}

	seen := map[string]contracts.ConversionOutcome{}
	for _, out := range summary.Outcomes {
		if _, dup := seen[out.Input]; dup {
			t.Fatalf("duplicate outcome for %s", out.Input)
		}
		seen[out.Input] = out
	}
	if seen[corrupt].OK {
		t.Error("corrupt file reported as success")
	}
	if seen[corrupt].Err == "" {
		t.Error("failed outcome carries no message")
	}
	for _, p := range []string{good1, good2} {
		out := seen[p]
		if !out.OK || len(out.Outputs) != 1 {
			t.Errorf("outcome for %s: %+v", p, out)
			continue
		}
		if _, err := os.Stat(out.Outputs[0]); err != nil {
			t.Errorf("missing output %s: %v", out.Outputs[0], err)
		}
	}
}

func TestRunDefaultOutputRoot(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "a.png", color.NRGBA{B: 255, A: 255})

	o := New(1, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "png"})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "pic")
	if summary.OutputRoot != want {
		t.Errorf("output root = %q, want %q", summary.OutputRoot, want)
	}
	if _, err := os.Stat(filepath.Join(want, "a.png")); err != nil {
		t.Errorf("expected flat output under pic: %v", err)
	}
}

func TestRunProgressMonotone(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		files = append(files, writePNG(t, dir, name, color.NRGBA{R: 100, A: 255}))
	}

	events := make(chan contracts.Event, 256)
	o := New(4, nil, events)
	if _, err := o.Run(contracts.ConversionRequest{Files: files, Format: "bmp"}); err != nil {
		t.Fatal(err)
	}
	close(events)

	var recorded []int
	for ev := range events {
		if ev.Stage == contracts.StageRecorded {
			recorded = append(recorded, ev.Done)
			if ev.Outcome == nil {
				t.Error("recorded event missing outcome")
			}
		}
	}
	if len(recorded) != len(files) {
		t.Fatalf("got %d recorded events, want %d", len(recorded), len(files))
	}
	for i, done := range recorded {
		if done != i+1 {
			t.Errorf("progress[%d] = %d, want %d", i, done, i+1)
		}
	}
}

func TestRunMultiFrameLayout(t *testing.T) {
	dir := t.TempDir()
	input := writeAnimatedGIF(t, dir, "anim.gif", 3)

	o := New(2, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "png"})
	if err != nil {
		t.Fatal(err)
	}
	out := summary.Outcomes[0]
	if !out.OK || len(out.Outputs) != 3 {
		t.Fatalf("outcome: %+v", out)
	}
	for i, p := range out.Outputs {
		want := filepath.Join(dir, "pic", "anim", "anim_page"+string(rune('1'+i))+".png")
		if p != want {
			t.Errorf("output[%d] = %q, want %q", i, p, want)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestRunRerunOverExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "a.png", color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	req := contracts.ConversionRequest{Files: []string{input}, Format: "png"}

	o := New(1, nil, nil)
	for i := 0; i < 2; i++ {
		summary, err := o.Run(req)
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		if summary.Failed != 0 {
			t.Fatalf("run %d failed outcomes: %+v", i+1, summary.Outcomes)
		}
	}
}

func TestRunTransparentSourceToJPEG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4)) // fully transparent
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "clear.png")
	if err := os.WriteFile(input, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	o := New(1, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "jpg"})
	if err != nil {
		t.Fatal(err)
	}
	out := summary.Outcomes[0]
	if !out.OK {
		t.Fatalf("transparent source should convert, got: %s", out.Err)
	}
	f, err := os.Open(out.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, format, err := image.Decode(f)
	if err != nil || format != "jpeg" {
		t.Fatalf("output not a decodable jpeg: %v (%s)", err, format)
	}
	_, _, _, a := decoded.At(0, 0).RGBA()
	if a != 0xffff {
		t.Errorf("jpeg output has non-opaque pixel, alpha=%d", a)
	}
}

func TestRunIconOutputStoredResolution(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "wide.png", color.NRGBA{R: 40, G: 80, B: 120, A: 255})

	o := New(1, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "ico", IconSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	out := summary.Outcomes[0]
	if !out.OK {
		t.Fatalf("ico conversion failed: %s", out.Err)
	}
	data, err := os.ReadFile(out.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := ico.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ico output not decodable: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 64 {
		t.Errorf("stored resolution %v, want 64x64", decoded.Bounds())
	}
}

func TestRunPDFAggregate(t *testing.T) {
	dir := t.TempDir()
	input := writeAnimatedGIF(t, dir, "doc.gif", 2)

	o := New(1, nil, nil)
	summary, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	out := summary.Outcomes[0]
	if !out.OK || len(out.Outputs) != 1 {
		t.Fatalf("outcome: %+v", out)
	}
	if filepath.Base(out.Outputs[0]) != "doc.pdf" {
		t.Errorf("output = %q, want doc.pdf under root", out.Outputs[0])
	}
	data, err := os.ReadFile(out.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("aggregate output is not a PDF")
	}
}

func TestRunRefusesToStart(t *testing.T) {
	o := New(1, nil, nil)

	_, err := o.Run(contracts.ConversionRequest{Format: "png"})
	var perr *contracts.InvalidParameterError
	if !errors.As(err, &perr) {
		t.Errorf("empty file list: expected InvalidParameterError, got %v", err)
	}

	_, err = o.Run(contracts.ConversionRequest{Files: []string{"x.png"}, Format: "xcf"})
	if !errors.As(err, &perr) {
		t.Errorf("unknown format: expected InvalidParameterError, got %v", err)
	}

	_, err = o.Run(contracts.ConversionRequest{Files: []string{"x.png"}, Format: "ico", IconSize: 47})
	if !errors.As(err, &perr) {
		t.Errorf("bad icon size: expected InvalidParameterError, got %v", err)
	}
}

func TestStateLifecycle(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "a.png", color.NRGBA{A: 255})

	o := New(1, nil, nil)
	if o.State() != contracts.BatchIdle {
		t.Errorf("initial state = %v, want idle", o.State())
	}
	if _, err := o.Run(contracts.ConversionRequest{Files: []string{input}, Format: "png"}); err != nil {
		t.Fatal(err)
	}
	if o.State() != contracts.BatchCompleted {
		t.Errorf("final state = %v, want completed", o.State())
	}
}
