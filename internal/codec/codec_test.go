package codec

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	img.SetNRGBA(3, 4, color.NRGBA{255, 0, 0, 255})
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"png", PNG},
		{"PNG", PNG},
		{"", PNG},
		{"jpg", JPEG},
		{"jpeg", JPEG},
		{" jpeg ", JPEG},
		{"gif", GIF},
		{"bmp", BMP},
		{"webp", WEBP},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): got %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseFormatUnknown(t *testing.T) {
	if _, err := ParseFormat("tiff"); !fault.Is(err, fault.UnsupportedFormat) {
		t.Errorf("unknown format: got %v, want UnsupportedFormat", err)
	}
}

func TestExtAndMimeType(t *testing.T) {
	if got := JPEG.Ext(); got != "jpg" {
		t.Errorf("JPEG.Ext(): got %s, want jpg", got)
	}
	if got := PNG.Ext(); got != "png" {
		t.Errorf("PNG.Ext(): got %s, want png", got)
	}
	if got := PNG.MimeType(); got != "image/png" {
		t.Errorf("PNG.MimeType(): got %s, want image/png", got)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	src := testImage(20, 10)

	data, err := Encode(src, PNG, 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Bounds().Dx() != 20 || decoded.Bounds().Dy() != 10 {
		t.Fatalf("dimensions: got %dx%d, want 20x10", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
	// PNG is lossless; the marker pixel must survive exactly.
	if got := decoded.NRGBAAt(3, 4); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("marker pixel: got %v", got)
	}
	if got := decoded.NRGBAAt(0, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel: got %v", got)
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := Encode(testImage(20, 10), JPEG, 90)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Encode produced no bytes")
	}
	// JPEG magic
	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("output is not JPEG: % x", data[:2])
	}
}

func TestEncodeWEBPUnsupported(t *testing.T) {
	if _, err := Encode(testImage(4, 4), WEBP, 0); !fault.Is(err, fault.UnsupportedFormat) {
		t.Errorf("webp encode: got %v, want UnsupportedFormat", err)
	}
}

func TestEncodeRejectsNil(t *testing.T) {
	if _, err := Encode(nil, PNG, 0); !fault.Is(err, fault.InvalidImage) {
		t.Errorf("nil image: got %v, want InvalidImage", err)
	}
}

func TestDecodeCorruptData(t *testing.T) {
	if _, err := Decode([]byte("this is not an image")); !fault.Is(err, fault.InvalidImage) {
		t.Errorf("corrupt data: got %v, want InvalidImage", err)
	}
	if _, err := Decode(nil); !fault.Is(err, fault.InvalidImage) {
		t.Errorf("empty data: got %v, want InvalidImage", err)
	}
}
