package server

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/screentools/screenshot-mcp/internal/annotate"
	"github.com/screentools/screenshot-mcp/internal/fault"
)

// === Annotation Handlers ===

type addBoxArgs struct {
	ImageID   string `json:"image_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Color     string `json:"color"`
	LineWidth int    `json:"line_width"`
	Fill      string `json:"fill"`
}

func (s *Server) handleAddBox(args json.RawMessage) (interface{}, error) {
	var a addBoxArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Width < 1 || a.Height < 1 {
		return nil, fault.New(fault.InvalidArgument, "box width and height must be positive")
	}
	lineWidth, err := styleWidth(a.LineWidth, annotate.DefaultLineWidth)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "red")
	if err != nil {
		return nil, err
	}

	fill, err := annotate.ResolveFill(a.Fill)
	if err != nil {
		return nil, err
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:      annotate.KindBox,
		X:         a.X,
		Y:         a.Y,
		W:         a.Width,
		H:         a.Height,
		LineWidth: lineWidth,
		Color:     c,
		Fill:      fill,
	}, fmt.Sprintf("Added box at (%d, %d) to %s", a.X, a.Y, a.ImageID))
}

type addLineArgs struct {
	ImageID   string `json:"image_id"`
	X1        int    `json:"x1"`
	Y1        int    `json:"y1"`
	X2        int    `json:"x2"`
	Y2        int    `json:"y2"`
	Color     string `json:"color"`
	LineWidth int    `json:"line_width"`
}

func (s *Server) handleAddLine(args json.RawMessage) (interface{}, error) {
	var a addLineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	lineWidth, err := styleWidth(a.LineWidth, annotate.DefaultLineWidth)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "red")
	if err != nil {
		return nil, err
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:      annotate.KindLine,
		X:         a.X1,
		Y:         a.Y1,
		X2:        a.X2,
		Y2:        a.Y2,
		LineWidth: lineWidth,
		Color:     c,
	}, fmt.Sprintf("Added line from (%d, %d) to (%d, %d) on %s", a.X1, a.Y1, a.X2, a.Y2, a.ImageID))
}

type addArrowArgs struct {
	ImageID   string `json:"image_id"`
	X1        int    `json:"x1"`
	Y1        int    `json:"y1"`
	X2        int    `json:"x2"`
	Y2        int    `json:"y2"`
	Color     string `json:"color"`
	LineWidth int    `json:"line_width"`
	HeadSize  int    `json:"head_size"`
}

func (s *Server) handleAddArrow(args json.RawMessage) (interface{}, error) {
	var a addArrowArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	lineWidth, err := styleWidth(a.LineWidth, annotate.DefaultLineWidth)
	if err != nil {
		return nil, err
	}
	headSize, err := styleWidth(a.HeadSize, annotate.DefaultHeadSize)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "red")
	if err != nil {
		return nil, err
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:      annotate.KindArrow,
		X:         a.X1,
		Y:         a.Y1,
		X2:        a.X2,
		Y2:        a.Y2,
		LineWidth: lineWidth,
		HeadSize:  headSize,
		Color:     c,
	}, fmt.Sprintf("Added arrow pointing at (%d, %d) on %s", a.X2, a.Y2, a.ImageID))
}

type addTextArgs struct {
	ImageID    string `json:"image_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Text       string `json:"text"`
	Color      string `json:"color"`
	FontSize   int    `json:"font_size"`
	Background string `json:"background"`
}

func (s *Server) handleAddText(args json.RawMessage) (interface{}, error) {
	var a addTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Text == "" {
		return nil, fault.New(fault.InvalidArgument, "text is required")
	}
	fontSize, err := styleWidth(a.FontSize, annotate.DefaultFontSize)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "red")
	if err != nil {
		return nil, err
	}

	var backdrop *color.NRGBA
	if a.Background != "" {
		bc, err := annotate.ResolveColor(a.Background)
		if err != nil {
			return nil, err
		}
		backdrop = &bc
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:     annotate.KindText,
		X:        a.X,
		Y:        a.Y,
		Text:     a.Text,
		FontSize: fontSize,
		Color:    c,
		Backdrop: backdrop,
	}, fmt.Sprintf("Added text %q at (%d, %d) on %s", a.Text, a.X, a.Y, a.ImageID))
}

type addCircleArgs struct {
	ImageID   string `json:"image_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Radius    int    `json:"radius"`
	Color     string `json:"color"`
	LineWidth int    `json:"line_width"`
	Fill      string `json:"fill"`
}

func (s *Server) handleAddCircle(args json.RawMessage) (interface{}, error) {
	var a addCircleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Radius < 0 {
		return nil, fault.New(fault.InvalidArgument, "circle radius must not be negative")
	}
	lineWidth, err := styleWidth(a.LineWidth, annotate.DefaultLineWidth)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "red")
	if err != nil {
		return nil, err
	}

	var fill *color.NRGBA
	if a.Fill != "" {
		fc, err := annotate.ResolveColor(a.Fill)
		if err != nil {
			return nil, err
		}
		fill = &fc
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:      annotate.KindCircle,
		X:         a.X,
		Y:         a.Y,
		Radius:    a.Radius,
		LineWidth: lineWidth,
		Color:     c,
		Fill:      fill,
	}, fmt.Sprintf("Added circle at (%d, %d) radius %d on %s", a.X, a.Y, a.Radius, a.ImageID))
}

type addHighlightArgs struct {
	ImageID string `json:"image_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Color   string `json:"color"`
	Opacity *int   `json:"opacity"`
}

func (s *Server) handleAddHighlight(args json.RawMessage) (interface{}, error) {
	var a addHighlightArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Width < 1 || a.Height < 1 {
		return nil, fault.New(fault.InvalidArgument, "highlight width and height must be positive")
	}
	opacity := annotate.DefaultHighlightOpacity
	if a.Opacity != nil {
		opacity = *a.Opacity
	}
	if opacity < 0 || opacity > 255 {
		return nil, fault.New(fault.InvalidArgument, "opacity must be between 0 and 255")
	}
	c, err := resolveColor(a.Color, "yellow")
	if err != nil {
		return nil, err
	}

	return s.applyAnnotation(a.ImageID, annotate.Instruction{
		Kind:    annotate.KindHighlight,
		X:       a.X,
		Y:       a.Y,
		W:       a.Width,
		H:       a.Height,
		Opacity: uint8(opacity),
		Color:   c,
	}, fmt.Sprintf("Highlighted region at (%d, %d) on %s", a.X, a.Y, a.ImageID))
}

type addNumberedCalloutArgs struct {
	ImageID         string `json:"image_id"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Number          int    `json:"number"`
	Size            int    `json:"size"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
}

type calloutResult struct {
	ImageID string `json:"image_id"`
	Number  int    `json:"number"`
	Message string `json:"message"`
}

func (s *Server) handleAddNumberedCallout(args json.RawMessage) (interface{}, error) {
	var a addNumberedCalloutArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Number < 0 {
		return nil, fault.New(fault.InvalidArgument, "callout number must not be negative")
	}
	size, err := styleWidth(a.Size, 30)
	if err != nil {
		return nil, err
	}
	bg, err := resolveColor(a.BackgroundColor, "red")
	if err != nil {
		return nil, err
	}
	fg, err := resolveColor(a.TextColor, "white")
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	// Number 0 means auto-assign from the session counter.
	number := a.Number
	if number == 0 {
		number = s.store.NextCallout()
	}
	out, err := annotate.Callout(rec.Pixels, a.X, a.Y, number, size, bg, fg)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplacePixels(a.ImageID, out); err != nil {
		return nil, err
	}
	return &calloutResult{
		ImageID: a.ImageID,
		Number:  number,
		Message: fmt.Sprintf("Added callout %d at (%d, %d) on %s", number, a.X, a.Y, a.ImageID),
	}, nil
}

func (s *Server) handleResetCalloutCounter(args json.RawMessage) (interface{}, error) {
	s.store.ResetCallouts()
	return &messageResult{Message: "Callout counter reset; the next auto-numbered callout is 1"}, nil
}

// styleWidth applies a default for an omitted style size and rejects
// negative values.
func styleWidth(v, fallback int) (int, error) {
	if v == 0 {
		return fallback, nil
	}
	if v < 0 {
		return 0, fault.New(fault.InvalidArgument, "style sizes must be positive")
	}
	return v, nil
}
