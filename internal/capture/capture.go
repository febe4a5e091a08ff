// Package capture grabs screen pixels through the platform display APIs.
package capture

import (
	"image"

	"github.com/kbinani/screenshot"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Mode selects what part of the screen to capture.
type Mode string

const (
	ModeFullscreen Mode = "fullscreen"
	ModeRegion     Mode = "region"
	ModeWindow     Mode = "window"
)

// Request describes one capture.
type Request struct {
	Mode    Mode
	Display int // display index for fullscreen capture

	// Region bounds, required for ModeRegion.
	X, Y, Width, Height int
}

// Func is the capture backend signature; the dispatcher holds one so
// tests can substitute a fake display.
type Func func(Request) (image.Image, error)

// Capture grabs pixels from the host display.
func Capture(req Request) (image.Image, error) {
	switch req.Mode {
	case ModeFullscreen, "":
		return captureDisplay(req.Display)
	case ModeRegion:
		return captureRegion(req)
	case ModeWindow:
		// The display backend has no window enumeration; per-window
		// capture must fail loudly rather than fall back to fullscreen.
		return nil, fault.New(fault.CaptureUnavailable, "window capture is not supported on this host")
	default:
		return nil, fault.New(fault.InvalidArgument, "unknown capture mode %q", req.Mode)
	}
}

func captureDisplay(display int) (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fault.New(fault.CaptureUnavailable, "no active displays found")
	}
	if display < 0 || display >= n {
		return nil, fault.New(fault.InvalidArgument, "display index %d out of range (0-%d)", display, n-1)
	}
	img, err := screenshot.CaptureDisplay(display)
	if err != nil {
		return nil, fault.Wrap(fault.CaptureUnavailable, err, "failed to capture display %d", display)
	}
	return img, nil
}

func captureRegion(req Request) (image.Image, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fault.New(fault.InvalidArgument, "region capture requires positive width and height")
	}
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fault.New(fault.CaptureUnavailable, "no active displays found")
	}
	img, err := screenshot.CaptureRect(image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height))
	if err != nil {
		return nil, fault.Wrap(fault.CaptureUnavailable, err, "failed to capture region")
	}
	return img, nil
}
