//go:build !imagick

package extractor

import (
	"fmt"

	"pic2any/contracts"
)

func magickExtract(data []byte) ([]contracts.FrameRecord, error) {
	return nil, fmt.Errorf("imagemagick fallback not built in")
}
