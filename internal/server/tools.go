package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema builds an object input schema from property definitions.
func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

// imageIDProp is shared by every tool that targets a session image.
func imageIDProp() map[string]interface{} {
	return prop("string", "Session image ID (e.g. img_20250101_120000_1)")
}

func colorProp(description string) map[string]interface{} {
	return prop("string", description+" Accepts CSS color names or hex (#RGB, #RRGGBB, #RRGGBBAA).")
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Capture & Load
		{
			Name:        "capture_screenshot",
			Description: "Capture the screen into a new session image and return its ID. Supports fullscreen (default) and region capture.",
			InputSchema: schema(map[string]interface{}{
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"fullscreen", "region", "window"},
					"description": "Capture mode. Default fullscreen",
				},
				"display": prop("integer", "Display index for fullscreen capture (0-based). Default 0"),
				"x":       prop("integer", "Left edge in screen coordinates, for region capture"),
				"y":       prop("integer", "Top edge in screen coordinates, for region capture"),
				"width":   prop("integer", "Region width in pixels, for region capture"),
				"height":  prop("integer", "Region height in pixels, for region capture"),
			}),
		},
		{
			Name:        "load_image",
			Description: "Load an image file (PNG, JPEG, GIF, BMP, WEBP) into the session and return its ID.",
			InputSchema: schema(map[string]interface{}{
				"path": prop("string", "Path to the image file. ~ expands to the home directory"),
			}, "path"),
		},

		// Annotation
		{
			Name:        "add_box",
			Description: "Draw a rectangle outline on a session image. Optionally fill it with a semi-transparent color.",
			InputSchema: schema(map[string]interface{}{
				"image_id":   imageIDProp(),
				"x":          prop("integer", "Left edge X coordinate"),
				"y":          prop("integer", "Top edge Y coordinate"),
				"width":      prop("integer", "Box width in pixels"),
				"height":     prop("integer", "Box height in pixels"),
				"color":      colorProp("Outline color. Default red."),
				"line_width": prop("integer", "Outline thickness in pixels. Default 3"),
				"fill":       colorProp("Optional fill color; omit for no fill. Six-digit hex fills are drawn at 50% opacity."),
			}, "image_id", "x", "y", "width", "height"),
		},
		{
			Name:        "add_line",
			Description: "Draw a straight line on a session image.",
			InputSchema: schema(map[string]interface{}{
				"image_id":   imageIDProp(),
				"x1":         prop("integer", "Start X coordinate"),
				"y1":         prop("integer", "Start Y coordinate"),
				"x2":         prop("integer", "End X coordinate"),
				"y2":         prop("integer", "End Y coordinate"),
				"color":      colorProp("Line color. Default red."),
				"line_width": prop("integer", "Line thickness in pixels. Default 3"),
			}, "image_id", "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "add_arrow",
			Description: "Draw an arrow on a session image. The head is drawn at (x2, y2).",
			InputSchema: schema(map[string]interface{}{
				"image_id":   imageIDProp(),
				"x1":         prop("integer", "Tail X coordinate"),
				"y1":         prop("integer", "Tail Y coordinate"),
				"x2":         prop("integer", "Tip X coordinate"),
				"y2":         prop("integer", "Tip Y coordinate"),
				"color":      colorProp("Arrow color. Default red."),
				"line_width": prop("integer", "Shaft thickness in pixels. Default 3"),
				"head_size":  prop("integer", "Arrow head size in pixels. Default 15"),
			}, "image_id", "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "add_text",
			Description: "Draw text on a session image. (x, y) is the top-left corner of the text.",
			InputSchema: schema(map[string]interface{}{
				"image_id":   imageIDProp(),
				"x":          prop("integer", "Text left edge X coordinate"),
				"y":          prop("integer", "Text top edge Y coordinate"),
				"text":       prop("string", "Text to draw"),
				"color":      colorProp("Text color. Default red."),
				"font_size":  prop("integer", "Font size in points. Default 24"),
				"background": colorProp("Optional backdrop color drawn behind the text for readability."),
			}, "image_id", "x", "y", "text"),
		},
		{
			Name:        "add_circle",
			Description: "Draw a circle outline on a session image, optionally filled at 50% opacity.",
			InputSchema: schema(map[string]interface{}{
				"image_id":   imageIDProp(),
				"x":          prop("integer", "Center X coordinate"),
				"y":          prop("integer", "Center Y coordinate"),
				"radius":     prop("integer", "Circle radius in pixels"),
				"color":      colorProp("Outline color. Default red."),
				"line_width": prop("integer", "Outline thickness in pixels. Default 3"),
				"fill":       colorProp("Optional fill color; omit for no fill."),
			}, "image_id", "x", "y", "radius"),
		},
		{
			Name:        "add_highlight",
			Description: "Overlay a semi-transparent highlight rectangle on a session image.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"x":        prop("integer", "Left edge X coordinate"),
				"y":        prop("integer", "Top edge Y coordinate"),
				"width":    prop("integer", "Highlight width in pixels"),
				"height":   prop("integer", "Highlight height in pixels"),
				"color":    colorProp("Highlight color. Default yellow."),
				"opacity":  prop("integer", "Overlay opacity from 0 (invisible) to 255 (opaque). Default 100"),
			}, "image_id", "x", "y", "width", "height"),
		},
		{
			Name:        "add_numbered_callout",
			Description: "Draw a numbered circle marker for step-by-step instructions. Omit number to auto-increment the session counter.",
			InputSchema: schema(map[string]interface{}{
				"image_id":         imageIDProp(),
				"x":                prop("integer", "Marker center X coordinate"),
				"y":                prop("integer", "Marker center Y coordinate"),
				"number":           prop("integer", "Explicit callout number. Omit to auto-number"),
				"size":             prop("integer", "Marker diameter in pixels. Default 30"),
				"background_color": colorProp("Marker fill color. Default red."),
				"text_color":       colorProp("Number color. Default white."),
			}, "image_id", "x", "y"),
		},
		{
			Name:        "reset_callout_counter",
			Description: "Reset the auto-numbering callout counter so the next callout is 1.",
			InputSchema: schema(map[string]interface{}{}),
		},

		// Editing
		{
			Name:        "add_border",
			Description: "Expand the canvas with a solid border on every side.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"width":    prop("integer", "Border width in pixels. Default 10"),
				"color":    colorProp("Border color. Default black."),
			}, "image_id"),
		},
		{
			Name:        "blur_region",
			Description: "Obscure a rectangular region with a gaussian blur or pixelation. Use to hide sensitive content before sharing.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"x":        prop("integer", "Left edge X coordinate"),
				"y":        prop("integer", "Top edge Y coordinate"),
				"width":    prop("integer", "Region width in pixels"),
				"height":   prop("integer", "Region height in pixels"),
				"strength": prop("integer", "Blur strength from 1 to 50. Default 10"),
				"pixelate": prop("boolean", "Pixelate instead of blurring. Default false"),
			}, "image_id", "x", "y", "width", "height"),
		},
		{
			Name:        "crop_image",
			Description: "Crop a session image to a rectangular region. The region is clamped to the image bounds.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"x":        prop("integer", "Left edge X coordinate"),
				"y":        prop("integer", "Top edge Y coordinate"),
				"width":    prop("integer", "Crop width in pixels"),
				"height":   prop("integer", "Crop height in pixels"),
			}, "image_id", "x", "y", "width", "height"),
		},
		{
			Name:        "resize_image",
			Description: "Resize a session image by explicit dimensions or a scale factor.",
			InputSchema: schema(map[string]interface{}{
				"image_id":        imageIDProp(),
				"width":           prop("integer", "Target width in pixels"),
				"height":          prop("integer", "Target height in pixels"),
				"scale":           prop("number", "Scale factor (e.g. 0.5 to halve). Overrides width/height"),
				"maintain_aspect": prop("boolean", "Preserve aspect ratio when only one dimension is given. Default true"),
			}, "image_id"),
		},
		{
			Name:        "rotate_image",
			Description: "Rotate a session image counter-clockwise by 90, 180, or 270 degrees.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"angle": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{90, 180, 270},
					"description": "Rotation angle in degrees",
				},
			}, "image_id", "angle"),
		},
		{
			Name:        "flip_image",
			Description: "Mirror a session image horizontally or vertically.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"horizontal", "vertical"},
					"description": "Flip direction. Default horizontal",
				},
			}, "image_id"),
		},
		{
			Name:        "adjust_brightness",
			Description: "Adjust image brightness by a multiplicative factor (0.5 darker, 1.0 unchanged, 1.5 brighter).",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"factor":   prop("number", "Brightness factor. Default 1.0"),
			}, "image_id"),
		},
		{
			Name:        "adjust_contrast",
			Description: "Adjust image contrast by a multiplicative factor (0.5 flatter, 1.0 unchanged, 1.5 punchier).",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"factor":   prop("number", "Contrast factor. Default 1.0"),
			}, "image_id"),
		},

		// History
		{
			Name:        "undo",
			Description: "Revert the last change to a session image.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},
		{
			Name:        "get_undo_count",
			Description: "Get the number of undo steps available for a session image.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},

		// Analysis
		{
			Name:        "compare_images",
			Description: "Compare two session images pixel by pixel. Optionally produce a new session image with differences highlighted.",
			InputSchema: schema(map[string]interface{}{
				"image_id_1":            imageIDProp(),
				"image_id_2":            imageIDProp(),
				"threshold":             prop("integer", "Per-channel tolerance before a pixel counts as different. Default 10"),
				"highlight_differences": prop("boolean", "Create a diff image with changed pixels marked in red. Default false"),
			}, "image_id_1", "image_id_2"),
		},
		{
			Name:        "extract_text",
			Description: "Extract text from a session image using OCR (requires a build with Tesseract support).",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"language": prop("string", "Tesseract language code. Default eng"),
			}, "image_id"),
		},

		// Session Management
		{
			Name:        "list_images",
			Description: "List all session images with their dimensions, sources, and creation times.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "get_image",
			Description: "Get a session image's metadata and current pixels as base64 PNG.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},
		{
			Name:        "duplicate_image",
			Description: "Create an independent copy of a session image under a new ID.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},
		{
			Name:        "delete_image",
			Description: "Remove a session image and its undo history.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},
		{
			Name:        "get_memory_stats",
			Description: "Report session memory usage and the configured resource limits.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "configure_limits",
			Description: "Change the session resource limits at runtime. Omitted fields keep their current values; lowering limits may evict oldest images.",
			InputSchema: schema(map[string]interface{}{
				"max_images":    prop("integer", "Maximum number of session images"),
				"max_memory_mb": prop("integer", "Maximum pixel memory in megabytes"),
				"undo_levels":   prop("integer", "Undo history depth per image"),
			}),
		},

		// Export
		{
			Name:        "save_image",
			Description: "Save a session image to a file. Format is taken from the argument or inferred from the path extension.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"path":     prop("string", "Destination file path. ~ expands to the home directory"),
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"png", "jpeg", "gif", "bmp"},
					"description": "Output format. Default inferred from path, falling back to png",
				},
				"quality": prop("integer", "JPEG quality 1-100. Default 95"),
			}, "image_id", "path"),
		},
		{
			Name:        "quick_save",
			Description: "Save a session image as PNG to a well-known folder without picking a path. Never overwrites existing files.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"location": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"desktop", "downloads", "documents", "temp"},
					"description": "Destination folder. Default desktop",
				},
				"filename": prop("string", "Base filename without extension. Default the image ID"),
			}, "image_id"),
		},
		{
			Name:        "get_image_base64",
			Description: "Get a session image as a base64 data URI for embedding.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"png", "jpeg", "gif", "bmp"},
					"description": "Output format. Default png",
				},
			}, "image_id"),
		},
		{
			Name:        "copy_to_clipboard",
			Description: "Copy a session image to the system clipboard as PNG.",
			InputSchema: schema(map[string]interface{}{
				"image_id": imageIDProp(),
			}, "image_id"),
		},
	}
}

// handleToolsList responds with every tool definition.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
