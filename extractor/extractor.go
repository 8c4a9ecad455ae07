// Package extractor opens input containers and produces ordered sequences of
// raw frames. Single-image containers yield one frame; GIF and TIFF yield one
// frame per animation frame / IFD page.
package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/samuel/go-pcx/pcx"
	ico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"
	xtiff "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pic2any/contracts"
	"pic2any/utils"
)

// Extract decodes path into an ordered, non-empty frame sequence. Every
// failure mode comes back as a *contracts.DecodeError.
func Extract(path string) ([]contracts.FrameRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contracts.DecodeError{Path: path, Err: err}
	}

	var frames []contracts.FrameRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		frames, err = extractHEIF(data)
	case ".gif":
		frames, err = extractGIF(data)
	case ".tiff", ".tif":
		frames, err = extractTIFF(data)
	case ".ico":
		frames, err = extractOne(data, func(r *bytes.Reader) (image.Image, error) { return ico.Decode(r) })
	case ".pcx":
		frames, err = extractOne(data, func(r *bytes.Reader) (image.Image, error) { return pcx.Decode(r) })
	case ".tga":
		frames, err = extractOne(data, func(r *bytes.Reader) (image.Image, error) { return tga.Decode(r) })
	default:
		frames, err = extractGeneric(data)
	}
	if err == nil && len(frames) == 0 {
		err = fmt.Errorf("no decodable frames")
	}
	if err != nil {
		// ImageMagick fallback, present only under the imagick build tag.
		mf, merr := magickExtract(data)
		if merr != nil || len(mf) == 0 {
			return nil, &contracts.DecodeError{Path: path, Err: err}
		}
		frames = mf
	}

	orientation := utils.Orientation(data)
	for i := range frames {
		frames[i].Orientation = orientation
	}
	return frames, nil
}

func extractOne(data []byte, decode func(*bytes.Reader) (image.Image, error)) ([]contracts.FrameRecord, error) {
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return []contracts.FrameRecord{{Image: img, Mode: modeName(img), PageIndex: 0}}, nil
}

func extractGeneric(data []byte) ([]contracts.FrameRecord, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return []contracts.FrameRecord{{Image: img, Mode: modeName(img), PageIndex: 0}}, nil
}

// extractGIF composes each animation frame onto the logical canvas so that
// partial frames come out as complete images.
func extractGIF(data []byte) ([]contracts.FrameRecord, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	frames := make([]contracts.FrameRecord, 0, len(g.Image))
	for i, src := range g.Image {
		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		snapshot := image.NewNRGBA(canvas.Bounds())
		draw.Draw(snapshot, canvas.Bounds(), canvas, image.Point{}, draw.Src)
		frames = append(frames, contracts.FrameRecord{Image: snapshot, Mode: "NRGBA", PageIndex: i})
	}
	return frames, nil
}

// extractTIFF probes successive IFD pages. A decode failure after at least
// one good page ends the probe; everything decoded so far is returned.
func extractTIFF(data []byte) ([]contracts.FrameRecord, error) {
	pages, err := splitTIFFPages(data)
	if err != nil {
		// Not walkable as a multi-page container; try a plain decode.
		return extractGeneric(data)
	}

	var frames []contracts.FrameRecord
	for i, page := range pages {
		img, err := xtiff.Decode(bytes.NewReader(page))
		if err != nil {
			if len(frames) > 0 {
				break
			}
			return nil, err
		}
		frames = append(frames, contracts.FrameRecord{Image: img, Mode: modeName(img), PageIndex: i})
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("tiff has no decodable pages")
	}
	return frames, nil
}

func modeName(img image.Image) string {
	switch img.(type) {
	case *image.NRGBA:
		return "NRGBA"
	case *image.NRGBA64:
		return "NRGBA64"
	case *image.RGBA:
		return "RGBA"
	case *image.RGBA64:
		return "RGBA64"
	case *image.Gray:
		return "Gray"
	case *image.Gray16:
		return "Gray16"
	case *image.Paletted:
		return "Paletted"
	case *image.YCbCr:
		return "YCbCr"
	case *image.CMYK:
		return "CMYK"
	default:
		return "Unknown"
	}
}
