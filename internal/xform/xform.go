// Package xform implements whole-image edits: crop, resize, rotate,
// flip, region blurring, tone adjustment, borders, and image diffing.
// Every function returns a fresh buffer and leaves its input unchanged.
package xform

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Crop extracts a region, clamping it to the image bounds first.
func Crop(img *image.NRGBA, x, y, w, h int) (*image.NRGBA, error) {
	b := img.Bounds()
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > b.Dx() {
		w = b.Dx() - x
	}
	if y+h > b.Dy() {
		h = b.Dy() - y
	}
	if w <= 0 || h <= 0 {
		return nil, fault.New(fault.InvalidArgument, "crop region has no overlap with the image")
	}
	return imaging.Crop(img, image.Rect(x, y, x+w, y+h)), nil
}

// Resize scales an image. Exactly one of the sizing arguments must be
// usable: a positive scale wins, otherwise width and/or height. When
// maintainAspect is set and only one dimension is given, the other is
// derived from the source aspect ratio.
func Resize(img *image.NRGBA, width, height int, scale float64, maintainAspect bool) (*image.NRGBA, error) {
	b := img.Bounds()
	var w, h int
	switch {
	case scale > 0:
		w = int(float64(b.Dx()) * scale)
		h = int(float64(b.Dy()) * scale)
	case width > 0 && height > 0 && !maintainAspect:
		w, h = width, height
	case width > 0:
		w = width
		h = b.Dy()
		if maintainAspect {
			h = int(float64(b.Dy()) * float64(width) / float64(b.Dx()))
		}
	case height > 0:
		h = height
		w = b.Dx()
		if maintainAspect {
			w = int(float64(b.Dx()) * float64(height) / float64(b.Dy()))
		}
	default:
		return nil, fault.New(fault.InvalidArgument, "resize requires width, height, or scale")
	}
	if w < 1 || h < 1 {
		return nil, fault.New(fault.InvalidArgument, "resize target %dx%d has zero area", w, h)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Rotate turns an image counter-clockwise by 90, 180, or 270 degrees.
func Rotate(img *image.NRGBA, angle int) (*image.NRGBA, error) {
	switch angle {
	case 90:
		return imaging.Rotate90(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate270(img), nil
	default:
		return nil, fault.New(fault.InvalidArgument, "rotation angle must be 90, 180, or 270")
	}
}

// Flip mirrors an image horizontally or vertically.
func Flip(img *image.NRGBA, direction string) (*image.NRGBA, error) {
	switch direction {
	case "horizontal", "":
		return imaging.FlipH(img), nil
	case "vertical":
		return imaging.FlipV(img), nil
	default:
		return nil, fault.New(fault.InvalidArgument, "flip direction must be horizontal or vertical")
	}
}

// BlurRegion obscures a rectangular region with a gaussian blur, or with
// pixelation when pixelate is set. Used to hide sensitive content.
func BlurRegion(img *image.NRGBA, x, y, w, h, strength int, pixelate bool) (*image.NRGBA, error) {
	if strength < 1 || strength > 50 {
		return nil, fault.New(fault.InvalidArgument, "blur strength must be between 1 and 50")
	}
	region := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	if region.Empty() {
		return nil, fault.New(fault.InvalidArgument, "blur region has no overlap with the image")
	}

	patch := imaging.Crop(img, region)
	var obscured image.Image
	if pixelate {
		pixelSize := strength / 2
		if pixelSize < 1 {
			pixelSize = 1
		}
		smallW := patch.Bounds().Dx() / pixelSize
		smallH := patch.Bounds().Dy() / pixelSize
		if smallW < 1 {
			smallW = 1
		}
		if smallH < 1 {
			smallH = 1
		}
		small := transform.Resize(patch, smallW, smallH, transform.NearestNeighbor)
		obscured = transform.Resize(small, patch.Bounds().Dx(), patch.Bounds().Dy(), transform.NearestNeighbor)
	} else {
		obscured = blur.Gaussian(patch, float64(strength))
	}

	out := imaging.Clone(img)
	draw.Draw(out, region, obscured, obscured.Bounds().Min, draw.Src)
	return out, nil
}

// AdjustBrightness scales brightness by a multiplicative factor
// (0.5 = darker, 1.0 = unchanged, 1.5 = brighter).
func AdjustBrightness(img *image.NRGBA, factor float64) (*image.NRGBA, error) {
	if factor < 0 {
		return nil, fault.New(fault.InvalidArgument, "brightness factor must be non-negative")
	}
	return imaging.AdjustBrightness(img, (factor-1)*100), nil
}

// AdjustContrast scales contrast by a multiplicative factor.
func AdjustContrast(img *image.NRGBA, factor float64) (*image.NRGBA, error) {
	if factor < 0 {
		return nil, fault.New(fault.InvalidArgument, "contrast factor must be non-negative")
	}
	return imaging.AdjustContrast(img, (factor-1)*100), nil
}

// Border expands the canvas by width pixels on every side, filled with
// the border color.
func Border(img *image.NRGBA, width int, c color.NRGBA) (*image.NRGBA, error) {
	if width < 1 {
		return nil, fault.New(fault.InvalidArgument, "border width must be positive")
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*width, b.Dy()+2*width))
	draw.Draw(out, out.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(width, width, width+b.Dx(), width+b.Dy()), img, b.Min, draw.Src)
	return out, nil
}

// DiffResult reports how two equally-sized images differ.
type DiffResult struct {
	DiffPixels int
	Percentage float64
	Identical  bool

	// Image is the first image with differing pixels recolored, or nil
	// when highlighting was not requested.
	Image *image.NRGBA
}

// Diff compares two images pixel by pixel. A pixel counts as different
// when the summed RGB channel delta exceeds threshold*3. When highlight
// is set, differing pixels are marked with diffColor on a copy of a.
func Diff(a, b *image.NRGBA, threshold int, highlight bool, diffColor color.NRGBA) (*DiffResult, error) {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return nil, fault.New(fault.InvalidArgument,
			"images must be the same size (%dx%d vs %dx%d); resize_image first",
			a.Bounds().Dx(), a.Bounds().Dy(), b.Bounds().Dx(), b.Bounds().Dy())
	}

	var marked *image.NRGBA
	if highlight {
		marked = imaging.Clone(a)
	}

	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	diff := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pa := a.NRGBAAt(a.Bounds().Min.X+x, a.Bounds().Min.Y+y)
			pb := b.NRGBAAt(b.Bounds().Min.X+x, b.Bounds().Min.Y+y)
			delta := absInt(int(pa.R)-int(pb.R)) + absInt(int(pa.G)-int(pb.G)) + absInt(int(pa.B)-int(pb.B))
			if delta > threshold*3 {
				diff++
				if marked != nil {
					marked.SetNRGBA(x, y, diffColor)
				}
			}
		}
	}

	total := w * h
	return &DiffResult{
		DiffPixels: diff,
		Percentage: float64(diff) / float64(total) * 100,
		Identical:  diff == 0,
		Image:      marked,
	}, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
