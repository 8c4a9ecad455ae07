// Package transform prepares decoded frames for encoding: orientation
// normalization, alpha policy, color-mode conversion and the optional
// square icon resize.
package transform

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"pic2any/contracts"
	"pic2any/formats"
)

// Prepare applies, in order: EXIF orientation, alpha flattening for opaque
// targets, color-mode normalization, and the square resize for icon output.
// Aspect ratio distortion on resize is accepted, not corrected.
func Prepare(frame contracts.FrameRecord, f *formats.Format, iconSize int) (image.Image, error) {
	img := frame.Image
	if img == nil || img.Bounds().Empty() || img.ColorModel() == nil {
		return nil, &contracts.UnsupportedModeError{Mode: frame.Mode, Target: f.Token}
	}

	if frame.Orientation > 1 {
		img = applyOrientation(img, frame.Orientation)
	}

	if f.Opaque {
		img = flatten(img)
	} else {
		img = toNRGBA(img)
	}

	if f.Token == "ico" && iconSize > 0 {
		if !formats.ValidIconSize(iconSize) {
			return nil, &contracts.InvalidParameterError{Name: "icon size", Value: strconv.Itoa(iconSize)}
		}
		img = resizeSquare(img, iconSize)
	}
	return img, nil
}

// flatten discards any transparency by compositing onto a white background.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func toNRGBA(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.Gray:
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
