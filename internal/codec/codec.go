// Package codec converts between pixel buffers and encoded image bytes.
//
// Decoding accepts PNG, JPEG, GIF, BMP, and WEBP. Encoding supports PNG,
// JPEG, GIF, and BMP; WEBP has no encoder in the toolchain and reports
// UnsupportedFormat.
package codec

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WEBP decoder

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Format names a supported image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	WEBP Format = "webp"
)

// DefaultJPEGQuality is used when a caller does not specify one.
const DefaultJPEGQuality = 95

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "webp":
		return WEBP, nil
	default:
		return "", fault.New(fault.UnsupportedFormat, "unsupported image format %q", s)
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// MimeType returns the MIME type for f.
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// Decode parses encoded image bytes into a pixel buffer.
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(fault.InvalidImage, err, "cannot decode image data")
	}
	return imaging.Clone(img), nil
}

// Encode serializes a pixel buffer in the given format. quality applies
// to JPEG only; values outside 1-100 fall back to the default.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fault.New(fault.InvalidImage, "cannot encode empty pixel buffer")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var f imaging.Format
	switch format {
	case PNG:
		f = imaging.PNG
	case JPEG:
		f = imaging.JPEG
	case GIF:
		f = imaging.GIF
	case BMP:
		f = imaging.BMP
	case WEBP:
		return nil, fault.New(fault.UnsupportedFormat, "webp encoding is not supported")
	default:
		return nil, fault.New(fault.UnsupportedFormat, "unsupported image format %q", format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(quality)); err != nil {
		return nil, fault.Wrap(fault.EncodeError, err, "failed to encode %s image", format)
	}
	return buf.Bytes(), nil
}
