//go:build imagick

package extractor

import (
	"bytes"
	"fmt"
	"image/png"
	"sync"

	"gopkg.in/gographics/imagick.v2/imagick"

	"pic2any/contracts"
)

var magickInit sync.Once

// magickExtract hands a container the pure-Go registry rejected to
// ImageMagick, one frame per sub-image.
func magickExtract(data []byte) ([]contracts.FrameRecord, error) {
	magickInit.Do(func() { imagick.Initialize() })

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if err := mw.ReadImageBlob(data); err != nil {
		return nil, fmt.Errorf("magick read: %w", err)
	}
	n := int(mw.GetNumberImages())
	frames := make([]contracts.FrameRecord, 0, n)
	for i := 0; i < n; i++ {
		mw.SetIteratorIndex(i)
		if err := mw.SetImageFormat("PNG"); err != nil {
			return nil, fmt.Errorf("magick frame %d: %w", i, err)
		}
		img, err := png.Decode(bytes.NewReader(mw.GetImageBlob()))
		if err != nil {
			return nil, fmt.Errorf("magick frame %d: %w", i, err)
		}
		frames = append(frames, contracts.FrameRecord{Image: img, Mode: modeName(img), PageIndex: i})
	}
	return frames, nil
}
