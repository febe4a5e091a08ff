// Package fault defines the structured error taxonomy shared by the
// screenshot server's store, backends, and dispatcher.
//
// Every failure surfaced to an MCP client carries one of the kinds below
// plus a human-readable message. Errors are never suppressed or retried;
// a failed operation leaves the image registry exactly as it was.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// NotFound means the referenced image identity is not in the registry.
	NotFound Kind = "not_found"

	// InvalidImage means a pixel buffer was nil, zero-area, or corrupt.
	InvalidImage Kind = "invalid_image"

	// InvalidArgument means malformed geometry, color, or style arguments.
	InvalidArgument Kind = "invalid_argument"

	// CaptureUnavailable means the host has no display or capture permission.
	CaptureUnavailable Kind = "capture_unavailable"

	// ClipboardUnavailable means no clipboard mechanism is present.
	ClipboardUnavailable Kind = "clipboard_unavailable"

	// UnsupportedFormat means the requested image format cannot be handled.
	UnsupportedFormat Kind = "unsupported_format"

	// DrawError means the raster backend rejected a drawing instruction.
	DrawError Kind = "draw_error"

	// EncodeError means image encoding failed.
	EncodeError Kind = "encode_error"
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of err, or the empty string if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
