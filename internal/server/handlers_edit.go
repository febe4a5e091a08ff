package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/screentools/screenshot-mcp/internal/fault"
	"github.com/screentools/screenshot-mcp/internal/store"
	"github.com/screentools/screenshot-mcp/internal/xform"
)

// === Editing Handlers ===

type addBorderArgs struct {
	ImageID string `json:"image_id"`
	Width   int    `json:"width"`
	Color   string `json:"color"`
}

func (s *Server) handleAddBorder(args json.RawMessage) (interface{}, error) {
	var a addBorderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	width, err := styleWidth(a.Width, 10)
	if err != nil {
		return nil, err
	}
	c, err := resolveColor(a.Color, "black")
	if err != nil {
		return nil, err
	}

	out, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.Border(img, width, c)
	})
	if err != nil {
		return nil, err
	}
	b := out.Bounds()
	return &imageResult{
		ImageID: a.ImageID,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Added %dpx border to %s (now %dx%d)", width, a.ImageID, b.Dx(), b.Dy()),
	}, nil
}

type blurRegionArgs struct {
	ImageID  string `json:"image_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Strength int    `json:"strength"`
	Pixelate bool   `json:"pixelate"`
}

func (s *Server) handleBlurRegion(args json.RawMessage) (interface{}, error) {
	var a blurRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Width < 1 || a.Height < 1 {
		return nil, fault.New(fault.InvalidArgument, "blur region width and height must be positive")
	}
	if a.Strength == 0 {
		a.Strength = 10
	}

	_, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.BlurRegion(img, a.X, a.Y, a.Width, a.Height, a.Strength, a.Pixelate)
	})
	if err != nil {
		return nil, err
	}
	verb := "Blurred"
	if a.Pixelate {
		verb = "Pixelated"
	}
	return &annotationResult{
		ImageID: a.ImageID,
		Message: fmt.Sprintf("%s region at (%d, %d) on %s", verb, a.X, a.Y, a.ImageID),
	}, nil
}

type cropImageArgs struct {
	ImageID string `json:"image_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (s *Server) handleCropImage(args json.RawMessage) (interface{}, error) {
	var a cropImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Width < 1 || a.Height < 1 {
		return nil, fault.New(fault.InvalidArgument, "crop width and height must be positive")
	}

	out, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.Crop(img, a.X, a.Y, a.Width, a.Height)
	})
	if err != nil {
		return nil, err
	}
	b := out.Bounds()
	return &imageResult{
		ImageID: a.ImageID,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Cropped %s to %dx%d", a.ImageID, b.Dx(), b.Dy()),
	}, nil
}

type resizeImageArgs struct {
	ImageID        string  `json:"image_id"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Scale          float64 `json:"scale"`
	MaintainAspect *bool   `json:"maintain_aspect"`
}

func (s *Server) handleResizeImage(args json.RawMessage) (interface{}, error) {
	var a resizeImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	maintainAspect := true
	if a.MaintainAspect != nil {
		maintainAspect = *a.MaintainAspect
	}

	out, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.Resize(img, a.Width, a.Height, a.Scale, maintainAspect)
	})
	if err != nil {
		return nil, err
	}
	b := out.Bounds()
	return &imageResult{
		ImageID: a.ImageID,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Resized %s to %dx%d", a.ImageID, b.Dx(), b.Dy()),
	}, nil
}

type rotateImageArgs struct {
	ImageID string `json:"image_id"`
	Angle   int    `json:"angle"`
}

func (s *Server) handleRotateImage(args json.RawMessage) (interface{}, error) {
	var a rotateImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	out, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.Rotate(img, a.Angle)
	})
	if err != nil {
		return nil, err
	}
	b := out.Bounds()
	return &imageResult{
		ImageID: a.ImageID,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Rotated %s by %d degrees", a.ImageID, a.Angle),
	}, nil
}

type flipImageArgs struct {
	ImageID   string `json:"image_id"`
	Direction string `json:"direction"`
}

func (s *Server) handleFlipImage(args json.RawMessage) (interface{}, error) {
	var a flipImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	_, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.Flip(img, a.Direction)
	})
	if err != nil {
		return nil, err
	}
	direction := a.Direction
	if direction == "" {
		direction = "horizontal"
	}
	return &annotationResult{
		ImageID: a.ImageID,
		Message: fmt.Sprintf("Flipped %s %sly", a.ImageID, direction),
	}, nil
}

type adjustArgs struct {
	ImageID string   `json:"image_id"`
	Factor  *float64 `json:"factor"`
}

func (s *Server) handleAdjustBrightness(args json.RawMessage) (interface{}, error) {
	var a adjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	factor := 1.0
	if a.Factor != nil {
		factor = *a.Factor
	}

	_, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.AdjustBrightness(img, factor)
	})
	if err != nil {
		return nil, err
	}
	return &annotationResult{
		ImageID: a.ImageID,
		Message: fmt.Sprintf("Adjusted brightness of %s by factor %.2f", a.ImageID, factor),
	}, nil
}

func (s *Server) handleAdjustContrast(args json.RawMessage) (interface{}, error) {
	var a adjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	factor := 1.0
	if a.Factor != nil {
		factor = *a.Factor
	}

	_, err := s.applyEdit(a.ImageID, func(img *image.NRGBA) (*image.NRGBA, error) {
		return xform.AdjustContrast(img, factor)
	})
	if err != nil {
		return nil, err
	}
	return &annotationResult{
		ImageID: a.ImageID,
		Message: fmt.Sprintf("Adjusted contrast of %s by factor %.2f", a.ImageID, factor),
	}, nil
}

// === History Handlers ===

type imageIDArgs struct {
	ImageID string `json:"image_id"`
}

type undoResult struct {
	ImageID        string `json:"image_id"`
	RemainingUndos int    `json:"remaining_undos"`
	Message        string `json:"message"`
}

func (s *Server) handleUndo(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	remaining, err := s.store.Undo(a.ImageID)
	if err != nil {
		return nil, err
	}
	return &undoResult{
		ImageID:        a.ImageID,
		RemainingUndos: remaining,
		Message:        fmt.Sprintf("Undid last change to %s (%d undo steps remaining)", a.ImageID, remaining),
	}, nil
}

type undoCountResult struct {
	ImageID   string `json:"image_id"`
	UndoCount int    `json:"undo_count"`
}

func (s *Server) handleGetUndoCount(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	count, err := s.store.UndoCount(a.ImageID)
	if err != nil {
		return nil, err
	}
	return &undoCountResult{ImageID: a.ImageID, UndoCount: count}, nil
}

// === Analysis Handlers ===

type compareImagesArgs struct {
	ImageID1             string `json:"image_id_1"`
	ImageID2             string `json:"image_id_2"`
	Threshold            int    `json:"threshold"`
	HighlightDifferences bool   `json:"highlight_differences"`
}

type comparisonResult struct {
	Identical            bool    `json:"identical"`
	DiffPixels           int     `json:"diff_pixels"`
	DifferencePercentage float64 `json:"difference_percentage"`
	DiffImageID          string  `json:"diff_image_id,omitempty"`
	Message              string  `json:"message"`
}

func (s *Server) handleCompareImages(args json.RawMessage) (interface{}, error) {
	var a compareImagesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImageID1 == "" || a.ImageID2 == "" {
		return nil, fault.New(fault.InvalidArgument, "image_id_1 and image_id_2 are required")
	}
	if a.Threshold < 0 {
		return nil, fault.New(fault.InvalidArgument, "threshold must not be negative")
	}
	if a.Threshold == 0 {
		a.Threshold = 10
	}

	rec1, err := s.store.Get(a.ImageID1)
	if err != nil {
		return nil, err
	}
	rec2, err := s.store.Get(a.ImageID2)
	if err != nil {
		return nil, err
	}

	diffColor, _ := resolveColor("", "red")
	diff, err := xform.Diff(rec1.Pixels, rec2.Pixels, a.Threshold, a.HighlightDifferences, diffColor)
	if err != nil {
		return nil, err
	}

	result := &comparisonResult{
		Identical:            diff.Identical,
		DiffPixels:           diff.DiffPixels,
		DifferencePercentage: diff.Percentage,
	}
	if diff.Image != nil {
		id, err := s.store.Create(diff.Image, store.SourceDuplicated)
		if err != nil {
			return nil, err
		}
		result.DiffImageID = id
	}
	if diff.Identical {
		result.Message = fmt.Sprintf("%s and %s are identical", a.ImageID1, a.ImageID2)
	} else {
		result.Message = fmt.Sprintf("%s and %s differ in %.2f%% of pixels", a.ImageID1, a.ImageID2, diff.Percentage)
	}
	return result, nil
}
