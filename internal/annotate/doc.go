// Package annotate is the raster drawing backend for image annotations.
//
// An Instruction is a closed tagged variant over the six annotation
// shapes (box, line, arrow, circle, text, highlight), so validation and
// dispatch are exhaustive. Apply takes a pixel buffer and one
// instruction and returns a new buffer; the input is never mutated,
// which lets the dispatcher keep its copy-then-swap discipline.
//
// Coordinates are 0-based with the origin at the top-left. Geometry that
// extends past the buffer is clamped at the edges: only in-bounds pixels
// are written, and the buffer is never cropped or resized.
//
// Colors resolve from CSS names or hex strings (ResolveColor). Text uses
// the first TrueType font found on the host, with a fixed bitmap face as
// the last resort.
package annotate
