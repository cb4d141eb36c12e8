// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagecount determines the total page count of a source document.
// Implements: prd001-planning R2 (discovery backends);
//
//	docs/ARCHITECTURE § Planning.
package pagecount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrDiscovery reports that the page count could not be determined.
var ErrDiscovery = errors.New("page count discovery failed")

// Counter reports the total page count of the document at path.
type Counter interface {
	Count(ctx context.Context, path string) (int, error)
}

// Format classifies a source document by its leading magic bytes.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatBMP     Format = "bmp"
	FormatUnknown Format = "unknown"
)

// IsImage reports whether the format is a single-page raster image.
func (f Format) IsImage() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatBMP:
		return true
	}
	return false
}

// Sniff classifies content by magic bytes: %PDF- for PDF, FF D8 FF for JPEG,
// the PNG signature, and BM for BMP.
func Sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case bytes.HasPrefix(head, []byte{0x89, 0x50, 0x4E, 0x47}):
		return FormatPNG
	case bytes.HasPrefix(head, []byte("BM")):
		return FormatBMP
	}
	return FormatUnknown
}

// SniffFile classifies the document at path by reading its leading bytes.
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("reading %s: %w", path, err)
	}
	return Sniff(head[:n]), nil
}

// Fixed returns a Counter that always reports n, for externally supplied
// page counts that bypass discovery.
func Fixed(n int) Counter {
	return fixedCounter(n)
}

type fixedCounter int

func (c fixedCounter) Count(ctx context.Context, path string) (int, error) {
	return int(c), nil
}
