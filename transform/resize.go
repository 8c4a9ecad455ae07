//go:build !vips

package transform

import (
	"image"

	"github.com/disintegration/imaging"
)

func resizeSquare(img image.Image, edge int) image.Image {
	return imaging.Resize(img, edge, edge, imaging.Lanczos)
}
