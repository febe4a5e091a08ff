package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

var (
	white  = color.NRGBA{255, 255, 255, 255}
	red    = color.NRGBA{255, 0, 0, 255}
	yellow = color.NRGBA{255, 255, 0, 255}
)

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

func mustApply(t *testing.T, src *image.NRGBA, in Instruction) *image.NRGBA {
	t.Helper()
	out, err := Apply(src, in)
	if err != nil {
		t.Fatalf("Apply(%s) failed: %v", in.Kind, err)
	}
	return out
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := whiteCanvas(50, 50)
	mustApply(t, src, Instruction{
		Kind: KindBox, X: 0, Y: 0, W: 50, H: 50, LineWidth: 3, Color: red,
	})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if src.NRGBAAt(x, y) != white {
				t.Fatalf("source pixel (%d, %d) was mutated", x, y)
			}
		}
	}
}

func TestBox(t *testing.T) {
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindBox, X: 10, Y: 10, W: 30, H: 20, LineWidth: 3, Color: red,
	})

	if got := out.NRGBAAt(10, 10); got != red {
		t.Errorf("top-left outline pixel: got %v, want %v", got, red)
	}
	if got := out.NRGBAAt(39, 29); got != red {
		t.Errorf("bottom-right outline pixel: got %v, want %v", got, red)
	}
	if got := out.NRGBAAt(25, 20); got != white {
		t.Errorf("unfilled interior pixel: got %v, want white", got)
	}
	if got := out.NRGBAAt(5, 5); got != white {
		t.Errorf("pixel outside the box: got %v, want white", got)
	}
}

func TestBoxFillOpaque(t *testing.T) {
	fill := red
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindBox, X: 10, Y: 10, W: 30, H: 20, LineWidth: 3, Color: red, Fill: &fill,
	})

	if got := out.NRGBAAt(25, 20); got != red {
		t.Errorf("opaque fill interior: got %v, want %v", got, red)
	}
}

func TestBoxFillSemiTransparentBlends(t *testing.T) {
	fill := color.NRGBA{255, 0, 0, 128}
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindBox, X: 10, Y: 10, W: 30, H: 20, LineWidth: 3, Color: red, Fill: &fill,
	})

	got := out.NRGBAAt(25, 20)
	if got == white || got == red {
		t.Errorf("semi-transparent fill should blend, got %v", got)
	}
}

func TestCircleFillOpaque(t *testing.T) {
	fill := red
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindCircle, X: 50, Y: 50, Radius: 20, LineWidth: 3, Color: red, Fill: &fill,
	})
	if got := out.NRGBAAt(50, 50); got != red {
		t.Errorf("filled center: got %v, want %v", got, red)
	}
}

func TestBoxClampsOutOfBounds(t *testing.T) {
	out := mustApply(t, whiteCanvas(50, 50), Instruction{
		Kind: KindBox, X: 40, Y: 40, W: 100, H: 100, LineWidth: 3, Color: red,
	})
	if got := out.NRGBAAt(40, 40); got != red {
		t.Errorf("in-bounds outline pixel: got %v, want %v", got, red)
	}
}

func TestLine(t *testing.T) {
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindLine, X: 10, Y: 50, X2: 90, Y2: 50, LineWidth: 3, Color: red,
	})
	if got := out.NRGBAAt(50, 50); got != red {
		t.Errorf("midpoint pixel: got %v, want %v", got, red)
	}
	if got := out.NRGBAAt(50, 80); got != white {
		t.Errorf("pixel off the line: got %v, want white", got)
	}
}

func TestZeroLengthLineIsNoop(t *testing.T) {
	src := whiteCanvas(50, 50)
	out := mustApply(t, src, Instruction{
		Kind: KindLine, X: 25, Y: 25, X2: 25, Y2: 25, LineWidth: 5, Color: red,
	})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if out.NRGBAAt(x, y) != white {
				t.Fatalf("zero-length line drew pixel (%d, %d)", x, y)
			}
		}
	}
}

func TestArrowHeadAtTip(t *testing.T) {
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindArrow, X: 10, Y: 50, X2: 80, Y2: 50, LineWidth: 3, HeadSize: 15, Color: red,
	})
	if got := out.NRGBAAt(80, 50); got != red {
		t.Errorf("tip pixel: got %v, want %v", got, red)
	}
	// Barbs sweep back from the tip, widening the stroke there.
	if got := out.NRGBAAt(72, 54); got != red {
		t.Errorf("barb pixel: got %v, want %v", got, red)
	}
}

func TestCircle(t *testing.T) {
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindCircle, X: 50, Y: 50, Radius: 20, LineWidth: 3, Color: red,
	})
	if got := out.NRGBAAt(70, 50); got != red {
		t.Errorf("ring pixel: got %v, want %v", got, red)
	}
	if got := out.NRGBAAt(50, 50); got != white {
		t.Errorf("unfilled center: got %v, want white", got)
	}
}

func TestZeroRadiusCircleIsNoop(t *testing.T) {
	out := mustApply(t, whiteCanvas(50, 50), Instruction{
		Kind: KindCircle, X: 25, Y: 25, Radius: 0, LineWidth: 3, Color: red,
	})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if out.NRGBAAt(x, y) != white {
				t.Fatalf("zero-radius circle drew pixel (%d, %d)", x, y)
			}
		}
	}
}

func TestHighlightBlends(t *testing.T) {
	out := mustApply(t, whiteCanvas(100, 100), Instruction{
		Kind: KindHighlight, X: 10, Y: 10, W: 40, H: 20, Opacity: 100, Color: yellow,
	})

	got := out.NRGBAAt(20, 15)
	if got == white {
		t.Error("highlight did not change the region")
	}
	if got == yellow {
		t.Error("highlight painted opaque instead of blending")
	}
	if got.A != 255 {
		t.Errorf("highlight must not thin the canvas alpha, got %d", got.A)
	}
	if got := out.NRGBAAt(60, 15); got != white {
		t.Errorf("pixel outside the highlight: got %v, want white", got)
	}
}

func TestText(t *testing.T) {
	out := mustApply(t, whiteCanvas(200, 100), Instruction{
		Kind: KindText, X: 10, Y: 10, Text: "Step 1", FontSize: 24, Color: red,
	})

	changed := false
	for y := 10; y < 60 && !changed; y++ {
		for x := 10; x < 120; x++ {
			if out.NRGBAAt(x, y) != white {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("text drew no pixels")
	}
}

func TestTextBackdrop(t *testing.T) {
	backdrop := color.NRGBA{0, 0, 0, 255}
	out := mustApply(t, whiteCanvas(200, 100), Instruction{
		Kind: KindText, X: 20, Y: 20, Text: "hi", FontSize: 24, Color: white, Backdrop: &backdrop,
	})
	// The backdrop pads 5px beyond the text origin.
	if got := out.NRGBAAt(16, 16); got != backdrop {
		t.Errorf("backdrop pixel: got %v, want %v", got, backdrop)
	}
}

func TestUnknownKind(t *testing.T) {
	_, err := Apply(whiteCanvas(10, 10), Instruction{Kind: Kind("sparkle")})
	if !fault.Is(err, fault.DrawError) {
		t.Errorf("unknown kind: got %v, want DrawError", err)
	}
}

func TestApplyRejectsEmptyBuffer(t *testing.T) {
	if _, err := Apply(nil, Instruction{Kind: KindBox}); !fault.Is(err, fault.DrawError) {
		t.Errorf("nil buffer: got %v, want DrawError", err)
	}
}

func TestCallout(t *testing.T) {
	out, err := Callout(whiteCanvas(100, 100), 50, 50, 3, 30, red, white)
	if err != nil {
		t.Fatalf("Callout failed: %v", err)
	}
	// The disc is solid at its rim, away from the number glyph.
	if got := out.NRGBAAt(62, 50); got != red {
		t.Errorf("disc pixel: got %v, want %v", got, red)
	}
	if got := out.NRGBAAt(50, 10); got != white {
		t.Errorf("pixel outside the disc: got %v, want white", got)
	}
}

func TestResolveColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.NRGBA
	}{
		{"named", "red", color.NRGBA{255, 0, 0, 255}},
		{"named uppercase", "RED", color.NRGBA{255, 0, 0, 255}},
		{"css green", "green", color.NRGBA{0, 128, 0, 255}},
		{"hex", "#ff8000", color.NRGBA{255, 128, 0, 255}},
		{"short hex", "#f00", color.NRGBA{255, 0, 0, 255}},
		{"hex with alpha", "#ff000080", color.NRGBA{255, 0, 0, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveColor(tt.input)
			if err != nil {
				t.Fatalf("ResolveColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveColor(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveFill(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.NRGBA
	}{
		{"hex is semi-transparent", "#ff0000", color.NRGBA{255, 0, 0, 128}},
		{"named stays opaque", "blue", color.NRGBA{0, 0, 255, 255}},
		{"explicit alpha kept", "#ff0000c0", color.NRGBA{255, 0, 0, 192}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFill(tt.input)
			if err != nil {
				t.Fatalf("ResolveFill(%q) failed: %v", tt.input, err)
			}
			if got == nil || *got != tt.want {
				t.Errorf("ResolveFill(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if got, err := ResolveFill(""); err != nil || got != nil {
		t.Errorf("ResolveFill(\"\"): got (%v, %v), want (nil, nil)", got, err)
	}
	if _, err := ResolveFill("notacolor"); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("ResolveFill(\"notacolor\"): got %v, want InvalidArgument", err)
	}
}

func TestResolveColorInvalid(t *testing.T) {
	for _, input := range []string{"", "notacolor", "#zzz", "#12345"} {
		if _, err := ResolveColor(input); !fault.Is(err, fault.InvalidArgument) {
			t.Errorf("ResolveColor(%q): got %v, want InvalidArgument", input, err)
		}
	}
}
