package utils

import (
	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// Orientation returns the EXIF orientation (1-8) recorded in the raw file
// bytes, or 1 when no usable tag is present. Cameras and phones store
// rotated captures with this tag instead of rotating the pixels.
func Orientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 1
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 1
	}

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 1
	}

	if tag, err := index.RootIfd.FindTagWithName("Orientation"); err == nil && len(tag) > 0 {
		if val, err := tag[0].Value(); err == nil {
			if v, ok := val.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
				return int(v[0])
			}
		}
	}
	return 1
}
