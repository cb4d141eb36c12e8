// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagecount

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const pdfinfoBin = "pdfinfo"

// PdfinfoCounter shells out to pdfinfo (poppler-utils) and parses its
// "Pages:" line. Raster images skip the tool and count as one page.
type PdfinfoCounter struct {
	run func(ctx context.Context, path string) ([]byte, error)
}

// NewPdfinfoCounter returns a Counter backed by the pdfinfo binary.
func NewPdfinfoCounter() *PdfinfoCounter {
	return &PdfinfoCounter{
		run: func(ctx context.Context, path string) ([]byte, error) {
			return exec.CommandContext(ctx, pdfinfoBin, path).Output()
		},
	}
}

// Available reports whether the pdfinfo binary is on PATH.
func (c *PdfinfoCounter) Available() bool {
	_, err := exec.LookPath(pdfinfoBin)
	return err == nil
}

func (c *PdfinfoCounter) Count(ctx context.Context, path string) (int, error) {
	format, err := SniffFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	if format.IsImage() {
		return 1, nil
	}
	if format != FormatPDF {
		return 0, fmt.Errorf("%w: unrecognized document format in %s", ErrDiscovery, path)
	}

	out, err := c.run(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: running %s on %s: %v", ErrDiscovery, pdfinfoBin, path, err)
	}
	n, err := parsePages(out)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	return n, nil
}

// parsePages extracts the page count from pdfinfo output, which contains a
// line like "Pages:          120".
func parsePages(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parsing pages line %q: %w", line, err)
		}
		if n < 1 {
			return 0, fmt.Errorf("pdfinfo reports %d pages", n)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no Pages: line in pdfinfo output")
}
