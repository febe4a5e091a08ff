// Package clipboard writes images to the system clipboard.
//
// It wraps golang.design/x/clipboard, which needs a usable display
// connection on Linux (X11) and cgo on macOS; on headless hosts Init
// fails and Copy reports ClipboardUnavailable.
package clipboard

import (
	"sync"

	xclipboard "golang.design/x/clipboard"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

var (
	initOnce sync.Once
	initErr  error
)

// Func is the clipboard backend signature; the dispatcher holds one so
// tests can substitute a recording fake.
type Func func(png []byte) error

// Copy places PNG-encoded image bytes on the system clipboard.
func Copy(png []byte) error {
	initOnce.Do(func() {
		initErr = xclipboard.Init()
	})
	if initErr != nil {
		return fault.Wrap(fault.ClipboardUnavailable, initErr, "no clipboard mechanism available")
	}
	xclipboard.Write(xclipboard.FmtImage, png)
	return nil
}
