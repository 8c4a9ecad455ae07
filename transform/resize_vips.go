//go:build vips

package transform

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var vipsInit sync.Once

// libvips-accelerated square resize. Falls back to the pure path if the
// round trip through vips fails for a given frame.
func resizeSquare(img image.Image, edge int) image.Image {
	vipsInit.Do(func() { vips.Startup(nil) })

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	defer ref.Close()

	hscale := float64(edge) / float64(ref.Width())
	vscale := float64(edge) / float64(ref.Height())
	if err := ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	out, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return imaging.Resize(img, edge, edge, imaging.Lanczos)
	}
	return decoded
}
