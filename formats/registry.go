// Package formats maps output format tokens to encoders and holds the
// per-format behavior knobs (quality, alpha handling, aggregation).
package formats

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chai2010/webp"
	ico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"pic2any/contracts"
)

type Options struct {
	Quality  int
	IconSize int
}

type Format struct {
	Token     string
	Ext       string
	Opaque    bool // target cannot store alpha; frames are flattened first
	Lossy     bool
	Quality   int
	Aggregate bool // all frames of one input go into a single output file
	encode    func(w io.Writer, img image.Image, opt Options) error
}

func (f *Format) Encode(w io.Writer, img image.Image, opt Options) error {
	if opt.Quality == 0 {
		opt.Quality = f.Quality
	}
	return f.encode(w, img, opt)
}

var registry = map[string]*Format{
	"jpg": {
		Token: "jpg", Ext: "jpg", Opaque: true, Lossy: true, Quality: 95,
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: opt.Quality})
		},
	},
	"png": {
		Token: "png", Ext: "png",
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return png.Encode(w, img)
		},
	},
	"webp": {
		Token: "webp", Ext: "webp", Lossy: true, Quality: 80,
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return webp.Encode(w, img, &webp.Options{Quality: float32(opt.Quality)})
		},
	},
	"bmp": {
		Token: "bmp", Ext: "bmp", Opaque: true,
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return bmp.Encode(w, img)
		},
	},
	"gif": {
		Token: "gif", Ext: "gif",
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return gif.Encode(w, img, &gif.Options{NumColors: 256})
		},
	},
	"tiff": {
		Token: "tiff", Ext: "tiff",
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		},
	},
	"ico": {
		Token: "ico", Ext: "ico",
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return ico.Encode(w, img)
		},
	},
	"pdf": {
		Token: "pdf", Ext: "pdf", Opaque: true, Lossy: true, Quality: 95, Aggregate: true,
		// Aggregate formats are encoded through EncodePDF; this entry only
		// carries the path/flatten knobs.
		encode: func(w io.Writer, img image.Image, opt Options) error {
			return EncodePDF(w, []image.Image{img}, opt.Quality)
		},
	},
}

// Lookup resolves an output format token, case-insensitively.
func Lookup(token string) (*Format, error) {
	f, ok := registry[strings.ToLower(strings.TrimPrefix(token, "."))]
	if !ok {
		return nil, &contracts.InvalidParameterError{Name: "output format", Value: token}
	}
	return f, nil
}

// Tokens lists the selectable output tokens in stable order.
func Tokens() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var inputExts = map[string]bool{
	".heic": true, ".heif": true,
	".jpg": true, ".jpeg": true,
	".png": true, ".bmp": true, ".gif": true,
	".tiff": true, ".tif": true,
	".webp": true, ".ico": true,
	".pcx": true, ".tga": true,
}

// InputAllowed reports whether a file name or bare extension (any case)
// is on the input allow-list.
func InputAllowed(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = "." + name
	}
	return inputExts[strings.ToLower(ext)]
}

// InputExtensions returns the allow-list with leading dots, sorted.
func InputExtensions() []string {
	out := make([]string, 0, len(inputExts))
	for e := range inputExts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// IconSizes are the edge lengths accepted for ico output.
var IconSizes = []int{16, 32, 64, 128, 256}

func ValidIconSize(n int) bool {
	for _, s := range IconSizes {
		if n == s {
			return true
		}
	}
	return false
}
