package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/screentools/screenshot-mcp/internal/codec"
	"github.com/screentools/screenshot-mcp/internal/fault"
)

// === Export Handlers ===

type saveImageArgs struct {
	ImageID string `json:"image_id"`
	Path    string `json:"path"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

type saveResult struct {
	ImageID string `json:"image_id"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (s *Server) handleSaveImage(args json.RawMessage) (interface{}, error) {
	var a saveImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fault.New(fault.InvalidArgument, "path is required")
	}

	path := expandUser(a.Path)

	// An omitted format is inferred from the path extension.
	name := a.Format
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	format, err := codec.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == "" {
		path += "." + format.Ext()
	}

	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	data, err := codec.Encode(rec.Pixels, format, a.Quality)
	if err != nil {
		return nil, err
	}
	if err := writeFile(path, data); err != nil {
		return nil, err
	}
	return &saveResult{
		ImageID: a.ImageID,
		Path:    path,
		Message: fmt.Sprintf("Saved %s to %s", a.ImageID, path),
	}, nil
}

type quickSaveArgs struct {
	ImageID  string `json:"image_id"`
	Location string `json:"location"`
	Filename string `json:"filename"`
}

func (s *Server) handleQuickSave(args json.RawMessage) (interface{}, error) {
	var a quickSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	dir, err := quickSaveDir(a.Location)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(a.Filename, filepath.Ext(a.Filename))
	if base == "" {
		base = a.ImageID
	}

	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	data, err := codec.Encode(rec.Pixels, codec.PNG, 0)
	if err != nil {
		return nil, err
	}

	path, err := uniquePath(dir, base, "png")
	if err != nil {
		return nil, err
	}
	if err := writeFile(path, data); err != nil {
		return nil, err
	}
	return &saveResult{
		ImageID: a.ImageID,
		Path:    path,
		Message: fmt.Sprintf("Saved %s to %s", a.ImageID, path),
	}, nil
}

type getImageBase64Args struct {
	ImageID string `json:"image_id"`
	Format  string `json:"format"`
}

type base64Result struct {
	ImageID string `json:"image_id"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

func (s *Server) handleGetImageBase64(args json.RawMessage) (interface{}, error) {
	var a getImageBase64Args
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	format, err := codec.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	data, err := codec.Encode(rec.Pixels, format, 0)
	if err != nil {
		return nil, err
	}
	return &base64Result{
		ImageID: a.ImageID,
		Data:    fmt.Sprintf("data:%s;base64,%s", format.MimeType(), base64.StdEncoding.EncodeToString(data)),
		Message: fmt.Sprintf("Encoded %s as base64 %s (%d bytes)", a.ImageID, format, len(data)),
	}, nil
}

func (s *Server) handleCopyToClipboard(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	data, err := codec.Encode(rec.Pixels, codec.PNG, 0)
	if err != nil {
		return nil, err
	}
	if err := s.clipboard(data); err != nil {
		return nil, err
	}
	return &messageResult{Message: fmt.Sprintf("Copied %s to the clipboard", a.ImageID)}, nil
}

// === Path helpers ===

// expandUser substitutes a leading ~ with the user's home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// quickSaveDir maps a named location to a directory on this host.
func quickSaveDir(location string) (string, error) {
	if location == "temp" {
		return os.TempDir(), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(fault.InvalidArgument, err, "cannot determine home directory")
	}
	switch location {
	case "desktop", "":
		return filepath.Join(home, "Desktop"), nil
	case "downloads":
		return filepath.Join(home, "Downloads"), nil
	case "documents":
		return filepath.Join(home, "Documents"), nil
	default:
		return "", fault.New(fault.InvalidArgument,
			"unknown location %q (expected desktop, downloads, documents, or temp)", location)
	}
}

// uniquePath returns dir/base.ext, adding a numeric suffix when the name
// is taken so quick saves never overwrite an existing file.
func uniquePath(dir, base, ext string) (string, error) {
	path := filepath.Join(dir, base+"."+ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if i > 9999 {
			return "", fault.New(fault.InvalidArgument, "cannot find a free filename for %s in %s", base, dir)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.%s", base, i, ext))
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.Wrap(fault.InvalidArgument, err, "cannot create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(fault.InvalidArgument, err, "cannot write file %s", path)
	}
	return nil
}
