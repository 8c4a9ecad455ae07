//go:build !libheif

package extractor

import (
	"fmt"

	"pic2any/contracts"
)

func extractHEIF(data []byte) ([]contracts.FrameRecord, error) {
	return nil, fmt.Errorf("heic support not built in (rebuild with -tags libheif)")
}
