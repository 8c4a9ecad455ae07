//go:build libheif

package extractor

import (
	"fmt"

	"github.com/strukturag/libheif/go/heif"

	"pic2any/contracts"
)

// HEIC containers always decode to exactly one frame: the primary image.
func extractHEIF(data []byte) ([]contracts.FrameRecord, error) {
	ctx, err := heif.NewContext()
	if err != nil {
		return nil, fmt.Errorf("heif context: %w", err)
	}
	if err := ctx.ReadFromMemory(data); err != nil {
		return nil, fmt.Errorf("heif read: %w", err)
	}
	handle, err := ctx.GetPrimaryImageHandle()
	if err != nil {
		return nil, fmt.Errorf("heif primary image: %w", err)
	}
	heifImg, err := handle.DecodeImage(heif.ColorspaceUndefined, heif.ChromaUndefined, nil)
	if err != nil {
		return nil, fmt.Errorf("heif decode: %w", err)
	}
	img, err := heifImg.GetImage()
	if err != nil {
		return nil, fmt.Errorf("heif convert: %w", err)
	}
	return []contracts.FrameRecord{{Image: img, Mode: modeName(img), PageIndex: 0}}, nil
}
