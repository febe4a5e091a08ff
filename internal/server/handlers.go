package server

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/screentools/screenshot-mcp/internal/annotate"
	"github.com/screentools/screenshot-mcp/internal/capture"
	"github.com/screentools/screenshot-mcp/internal/codec"
	"github.com/screentools/screenshot-mcp/internal/fault"
	"github.com/screentools/screenshot-mcp/internal/store"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "capture_screenshot", "add_box").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// and the fault kind in the error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
			"kind":   string(fault.KindOf(err)),
			"detail": err.Error(),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Validates arguments before any backend or registry call
//  4. Reads from and writes back to the session store
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Capture & Load
	case "capture_screenshot":
		return s.handleCaptureScreenshot(args)
	case "load_image":
		return s.handleLoadImage(args)

	// Annotation
	case "add_box":
		return s.handleAddBox(args)
	case "add_line":
		return s.handleAddLine(args)
	case "add_arrow":
		return s.handleAddArrow(args)
	case "add_text":
		return s.handleAddText(args)
	case "add_circle":
		return s.handleAddCircle(args)
	case "add_highlight":
		return s.handleAddHighlight(args)
	case "add_numbered_callout":
		return s.handleAddNumberedCallout(args)
	case "reset_callout_counter":
		return s.handleResetCalloutCounter(args)

	// Editing
	case "add_border":
		return s.handleAddBorder(args)
	case "blur_region":
		return s.handleBlurRegion(args)
	case "crop_image":
		return s.handleCropImage(args)
	case "resize_image":
		return s.handleResizeImage(args)
	case "rotate_image":
		return s.handleRotateImage(args)
	case "flip_image":
		return s.handleFlipImage(args)
	case "adjust_brightness":
		return s.handleAdjustBrightness(args)
	case "adjust_contrast":
		return s.handleAdjustContrast(args)

	// History
	case "undo":
		return s.handleUndo(args)
	case "get_undo_count":
		return s.handleGetUndoCount(args)

	// Analysis
	case "compare_images":
		return s.handleCompareImages(args)
	case "extract_text":
		return s.handleExtractText(args)

	// Session Management
	case "list_images":
		return s.handleListImages(args)
	case "get_image":
		return s.handleGetImage(args)
	case "duplicate_image":
		return s.handleDuplicateImage(args)
	case "delete_image":
		return s.handleDeleteImage(args)
	case "get_memory_stats":
		return s.handleGetMemoryStats(args)
	case "configure_limits":
		return s.handleConfigureLimits(args)

	// Export
	case "save_image":
		return s.handleSaveImage(args)
	case "quick_save":
		return s.handleQuickSave(args)
	case "get_image_base64":
		return s.handleGetImageBase64(args)
	case "copy_to_clipboard":
		return s.handleCopyToClipboard(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Result types ===

type imageResult struct {
	ImageID string `json:"image_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Message string `json:"message"`
}

type annotationResult struct {
	ImageID string `json:"image_id"`
	Message string `json:"message"`
}

type messageResult struct {
	Message string `json:"message"`
}

// === Shared helpers ===

// decodeArgs parses tool arguments, classifying malformed JSON so the
// error response still carries a fault kind. Absent arguments decode as
// all-defaults.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fault.Wrap(fault.InvalidArgument, err, "malformed tool arguments")
	}
	return nil
}

// requireID rejects a missing image_id before touching the registry.
func requireID(id string) error {
	if id == "" {
		return fault.New(fault.InvalidArgument, "image_id is required")
	}
	return nil
}

// resolveColor resolves a color string, substituting a default when empty.
func resolveColor(s, fallback string) (color.NRGBA, error) {
	if s == "" {
		s = fallback
	}
	return annotate.ResolveColor(s)
}

// applyAnnotation runs the Get -> draw -> ReplacePixels cycle for one
// annotation. The drawing step works on a private copy, so a failure at
// any point leaves the stored image unchanged.
func (s *Server) applyAnnotation(id string, in annotate.Instruction, message string) (*annotationResult, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	out, err := annotate.Apply(rec.Pixels, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplacePixels(id, out); err != nil {
		return nil, err
	}
	return &annotationResult{ImageID: id, Message: message}, nil
}

// applyEdit runs the Get -> transform -> ReplacePixels cycle for one
// whole-image edit and returns the new pixel buffer for result metadata.
func (s *Server) applyEdit(id string, fn func(*image.NRGBA) (*image.NRGBA, error)) (*image.NRGBA, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	out, err := fn(rec.Pixels)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplacePixels(id, out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Capture & Load Handlers ===

type captureScreenshotArgs struct {
	Mode    string `json:"mode"`
	Display int    `json:"display"`

	// Region bounds, used when mode is "region".
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleCaptureScreenshot(args json.RawMessage) (interface{}, error) {
	var a captureScreenshotArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	req := capture.Request{
		Mode:    capture.Mode(a.Mode),
		Display: a.Display,
		X:       a.X,
		Y:       a.Y,
		Width:   a.Width,
		Height:  a.Height,
	}

	img, err := s.capture(req)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(img, store.SourceCaptured)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &imageResult{
		ImageID: id,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Screenshot captured as %s (%dx%d)", id, b.Dx(), b.Dy()),
	}, nil
}

type loadImageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadImage(args json.RawMessage) (interface{}, error) {
	var a loadImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fault.New(fault.InvalidArgument, "path is required")
	}

	data, err := os.ReadFile(expandUser(a.Path))
	if err != nil {
		return nil, fault.Wrap(fault.NotFound, err, "cannot read file %q", a.Path)
	}
	img, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(img, store.SourceLoaded)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &imageResult{
		ImageID: id,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Message: fmt.Sprintf("Loaded %s as %s (%dx%d)", a.Path, id, b.Dx(), b.Dy()),
	}, nil
}
