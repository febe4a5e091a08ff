package annotate

import (
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// fontPaths is the cross-platform probe order for a usable TrueType font.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",      // Linux
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf", // Linux bold
	"/System/Library/Fonts/SFNSText.ttf",                   // macOS
	"/Library/Fonts/Arial.ttf",                             // macOS user fonts
	"C:\\Windows\\Fonts\\arial.ttf",                        // Windows
	"C:\\Windows\\Fonts\\arialbd.ttf",                      // Windows bold
}

var (
	fontMu    sync.Mutex
	fontData  *opentype.Font
	fontTried bool
	faceCache = map[int]font.Face{}
)

// loadFace returns a font face at the requested pixel size, probing the
// platform font paths once and falling back to a fixed 7x13 bitmap face
// when no TrueType font is available (size is ignored by the fallback).
func loadFace(size int) font.Face {
	if size < 1 {
		size = 12
	}
	fontMu.Lock()
	defer fontMu.Unlock()

	if face, ok := faceCache[size]; ok {
		return face
	}

	if !fontTried {
		fontTried = true
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			f, err := opentype.Parse(data)
			if err != nil {
				continue
			}
			fontData = f
			break
		}
	}

	var face font.Face = basicfont.Face7x13
	if fontData != nil {
		if f, err := opentype.NewFace(fontData, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			face = f
		}
	}
	faceCache[size] = face
	return face
}
