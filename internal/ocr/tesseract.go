//go:build !cgo

// Package ocr extracts text from session images using Tesseract.
//
// Without cgo there are no Tesseract bindings; this stub reports the
// capability as unavailable.
package ocr

import (
	"image"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Available reports whether OCR support was compiled in.
func Available() bool { return false }

// ExtractText is unavailable in non-cgo builds.
func ExtractText(img image.Image, language string) (*Result, error) {
	return nil, fault.New(fault.UnsupportedFormat, "text extraction requires a build with cgo and Tesseract installed")
}
