// Package server implements the MCP (Model Context Protocol) server for
// screenshot capture and annotation.
//
// This package provides a JSON-RPC 2.0 server that exposes a stateful
// image workflow through the MCP protocol: capture or load an image once,
// then refine it across many tool calls by its session ID. It's designed
// to work with Claude and other MCP-compatible clients.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Capture & Load:
//   - capture_screenshot: Grab the screen into a new session image
//   - load_image: Load an image file into the session
//
// Annotation:
//   - add_box, add_line, add_arrow, add_text, add_circle, add_highlight:
//     Draw shapes and labels on a session image
//   - add_numbered_callout: Auto-numbered step markers
//   - reset_callout_counter: Restart callout numbering
//
// Editing:
//   - add_border, blur_region, crop_image, resize_image, rotate_image,
//     flip_image, adjust_brightness, adjust_contrast
//
// History:
//   - undo: Revert the last change to an image
//   - get_undo_count: Steps available for an image
//
// Analysis:
//   - compare_images: Pixel diff between two session images
//   - extract_text: OCR via Tesseract (cgo builds only)
//
// Session Management:
//   - list_images, get_image, duplicate_image, delete_image
//   - get_memory_stats, configure_limits
//
// Export:
//   - save_image, quick_save: Write to disk
//   - get_image_base64: Data URI for embedding
//   - copy_to_clipboard: System clipboard as PNG
//
// # Image Sessions
//
// Images live in an in-memory session store keyed by generated IDs
// (img_YYYYMMDD_HHMMSS_N). Every mutation replaces the stored pixels
// atomically and pushes the previous state onto a bounded undo history.
// The store evicts least-recently-used images when count or memory
// limits are exceeded; see the store package for details.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: {"kind": <fault kind>, "detail": <human-readable cause>}
//
// A failed tool call never leaves a session image partially modified.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
