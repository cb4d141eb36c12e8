// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagecount

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeCounter counts pages in-process: PDFs are parsed directly and raster
// images count as one page. No external tools required.
type NativeCounter struct{}

func (NativeCounter) Count(ctx context.Context, path string) (int, error) {
	format, err := SniffFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	switch {
	case format.IsImage():
		return 1, nil
	case format == FormatPDF:
		f, r, err := pdf.Open(path)
		if err != nil {
			return 0, fmt.Errorf("%w: parsing %s: %v", ErrDiscovery, path, err)
		}
		defer f.Close()

		n := r.NumPage()
		if n < 1 {
			return 0, fmt.Errorf("%w: %s reports %d pages", ErrDiscovery, path, n)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: unrecognized document format in %s", ErrDiscovery, path)
}
