package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Kind identifies one annotation shape.
type Kind string

const (
	KindBox       Kind = "box"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindHighlight Kind = "highlight"
)

// Default style values shared with the tool schemas.
const (
	DefaultLineWidth        = 3
	DefaultFontSize         = 24
	DefaultHeadSize         = 15
	DefaultHighlightOpacity = 100
	fillAlpha               = 128 // 50% opacity for hex box fills
)

// Instruction is one validated annotation to apply to a pixel buffer.
// The meaning of the geometry fields depends on Kind:
//
//	Box, Highlight: X,Y top-left corner; W,H extent
//	Line, Arrow:    X,Y start; X2,Y2 end (arrow tip)
//	Circle:         X,Y center; Radius
//	Text:           X,Y top-left of the first glyph
type Instruction struct {
	Kind      Kind
	X, Y      int
	X2, Y2    int
	W, H      int
	Radius    int
	LineWidth int
	HeadSize  int
	FontSize  int
	Opacity   uint8
	Text      string
	Color     color.NRGBA
	Fill      *color.NRGBA
	Backdrop  *color.NRGBA
}

// Apply draws one instruction onto a copy of src and returns the copy.
// The input buffer is never mutated. Geometry outside the buffer is
// clamped: only in-bounds pixels are touched, nothing is cropped.
func Apply(src *image.NRGBA, in Instruction) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fault.New(fault.DrawError, "cannot draw on empty pixel buffer")
	}
	dst := imaging.Clone(src)

	switch in.Kind {
	case KindBox:
		drawBox(dst, in)
	case KindLine:
		drawLine(dst, in.X, in.Y, in.X2, in.Y2, in.LineWidth, in.Color)
	case KindArrow:
		drawLine(dst, in.X, in.Y, in.X2, in.Y2, in.LineWidth, in.Color)
		drawArrowHead(dst, in.X, in.Y, in.X2, in.Y2, in.HeadSize, in.Color)
	case KindCircle:
		drawCircle(dst, in.X, in.Y, in.Radius, in.LineWidth, in.Color, in.Fill)
	case KindText:
		drawText(dst, in)
	case KindHighlight:
		c := in.Color
		c.A = in.Opacity
		blendRect(dst, image.Rect(in.X, in.Y, in.X+in.W, in.Y+in.H), c)
	default:
		return nil, fault.New(fault.DrawError, "unknown annotation kind %q", in.Kind)
	}
	return dst, nil
}

// Callout draws a filled, numbered circle onto a copy of src: the
// auto-incrementing step markers used for tutorial-style screenshots.
func Callout(src *image.NRGBA, x, y, number, size int, bg, fg color.NRGBA) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fault.New(fault.DrawError, "cannot draw on empty pixel buffer")
	}
	if size < 2 {
		size = 2
	}
	dst := imaging.Clone(src)
	radius := size / 2
	// Ring thickness equal to the radius gives a solid opaque disc.
	drawCircle(dst, x, y, radius, radius, bg, nil)

	label := fmt.Sprintf("%d", number)
	face := loadFace(size * 6 / 10)
	w := font.MeasureString(face, label).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	drawString(dst, x-w/2, y-h/2, label, face, fg)
	return dst, nil
}

func drawBox(dst *image.NRGBA, in Instruction) {
	r := image.Rect(in.X, in.Y, in.X+in.W, in.Y+in.H)
	if in.Fill != nil {
		blendRect(dst, r, *in.Fill)
	}
	w := in.LineWidth
	// Four edge strips drawn inward from the outline.
	blendRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), in.Color)
	blendRect(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), in.Color)
	blendRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), in.Color)
	blendRect(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), in.Color)
}

// drawLine stamps a disc of the line width along the segment. A
// zero-length segment draws nothing.
func drawLine(dst *image.NRGBA, x1, y1, x2, y2, width int, c color.NRGBA) {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	radius := float64(width) / 2
	steps := int(dist) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stampDisc(dst, float64(x1)+dx*t, float64(y1)+dy*t, radius, c)
	}
}

func stampDisc(dst *image.NRGBA, cx, cy, radius float64, c color.NRGBA) {
	if radius < 0.5 {
		setPixel(dst, int(math.Round(cx)), int(math.Round(cy)), c)
		return
	}
	minX := int(math.Floor(cx - radius))
	maxX := int(math.Ceil(cx + radius))
	minY := int(math.Floor(cy - radius))
	maxY := int(math.Ceil(cy + radius))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			ddx := float64(x) - cx
			ddy := float64(y) - cy
			if ddx*ddx+ddy*ddy <= radius*radius {
				setPixel(dst, x, y, c)
			}
		}
	}
}

// drawArrowHead fills the triangular head at (x2,y2). Head barb angles
// match the original renderer: tip angle ± 0.8π.
func drawArrowHead(dst *image.NRGBA, x1, y1, x2, y2, headSize int, c color.NRGBA) {
	if x1 == x2 && y1 == y2 {
		return
	}
	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	size := float64(headSize)
	ax := float64(x2) + size*math.Cos(angle+math.Pi*0.8)
	ay := float64(y2) + size*math.Sin(angle+math.Pi*0.8)
	bx := float64(x2) + size*math.Cos(angle-math.Pi*0.8)
	by := float64(y2) + size*math.Sin(angle-math.Pi*0.8)
	fillTriangle(dst, float64(x2), float64(y2), ax, ay, bx, by, c)
}

func fillTriangle(dst *image.NRGBA, x0, y0, x1, y1, x2, y2 float64, c color.NRGBA) {
	minX := int(math.Floor(math.Min(x0, math.Min(x1, x2))))
	maxX := int(math.Ceil(math.Max(x0, math.Max(x1, x2))))
	minY := int(math.Floor(math.Min(y0, math.Min(y1, y2))))
	maxY := int(math.Ceil(math.Max(y0, math.Max(y1, y2))))

	edge := func(ax, ay, bx, by, px, py float64) float64 {
		return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			d0 := edge(x0, y0, x1, y1, px, py)
			d1 := edge(x1, y1, x2, y2, px, py)
			d2 := edge(x2, y2, x0, y0, px, py)
			neg := d0 < 0 || d1 < 0 || d2 < 0
			pos := d0 > 0 || d1 > 0 || d2 > 0
			if !(neg && pos) {
				setPixel(dst, x, y, c)
			}
		}
	}
}

// drawCircle draws a ring of lineWidth thickness just inside the radius,
// optionally filling the interior. A zero radius draws nothing.
func drawCircle(dst *image.NRGBA, cx, cy, radius, lineWidth int, c color.NRGBA, fill *color.NRGBA) {
	if radius <= 0 {
		return
	}
	outer := float64(radius)
	inner := outer - float64(lineWidth)
	if inner < 0 {
		inner = 0
	}
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			ddx := float64(x - cx)
			ddy := float64(y - cy)
			dist := math.Hypot(ddx, ddy)
			if dist > outer {
				continue
			}
			if dist >= inner {
				blendPixel(dst, x, y, c)
			} else if fill != nil {
				blendPixel(dst, x, y, *fill)
			}
		}
	}
}

func drawText(dst *image.NRGBA, in Instruction) {
	if in.Text == "" {
		return
	}
	face := loadFace(in.FontSize)
	if in.Backdrop != nil {
		w := font.MeasureString(face, in.Text).Ceil()
		m := face.Metrics()
		h := (m.Ascent + m.Descent).Ceil()
		const pad = 5
		blendRect(dst, image.Rect(in.X-pad, in.Y-pad, in.X+w+pad, in.Y+h+pad), *in.Backdrop)
	}
	drawString(dst, in.X, in.Y, in.Text, face, in.Color)
}

// drawString renders text with (x, y) as the top-left corner of the
// glyph box, matching the original renderer's coordinate convention.
func drawString(dst *image.NRGBA, x, y int, s string, face font.Face, c color.NRGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// --- pixel primitives ---

func setPixel(dst *image.NRGBA, x, y int, c color.NRGBA) {
	if !image.Pt(x, y).In(dst.Bounds()) {
		return
	}
	dst.SetNRGBA(x, y, c)
}

// blendPixel composites c over the existing pixel (source-over).
func blendPixel(dst *image.NRGBA, x, y int, c color.NRGBA) {
	if !image.Pt(x, y).In(dst.Bounds()) {
		return
	}
	if c.A == 255 {
		dst.SetNRGBA(x, y, c)
		return
	}
	if c.A == 0 {
		return
	}
	old := dst.NRGBAAt(x, y)
	a := uint32(c.A)
	ia := 255 - a
	dst.SetNRGBA(x, y, color.NRGBA{
		R: uint8((uint32(c.R)*a + uint32(old.R)*ia) / 255),
		G: uint8((uint32(c.G)*a + uint32(old.G)*ia) / 255),
		B: uint8((uint32(c.B)*a + uint32(old.B)*ia) / 255),
		A: uint8(255 - (ia*(255-uint32(old.A)))/255),
	})
}

func blendRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			blendPixel(dst, x, y, c)
		}
	}
}
