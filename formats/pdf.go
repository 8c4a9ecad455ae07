package formats

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/phpdave11/gofpdf"
)

// EncodePDF writes one PDF page per frame, page size matching the frame's
// pixel dimensions at 72 dpi. Frames must already be opaque.
func EncodePDF(w io.Writer, frames []image.Image, quality int) error {
	if quality <= 0 {
		quality = 95
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	pdf.SetMargins(0, 0, 0)

	for i, img := range frames {
		bounds := img.Bounds()
		wpt := float64(bounds.Dx())
		hpt := float64(bounds.Dy())

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wpt, Ht: hpt})
		imageID := fmt.Sprintf("page_%d", i+1)
		pdf.RegisterImageOptionsReader(
			imageID,
			gofpdf.ImageOptions{ImageType: "JPEG"},
			&buf,
		)
		pdf.ImageOptions(imageID, 0, 0, wpt, hpt, false, gofpdf.ImageOptions{ImageType: "JPEG"}, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
