package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/screentools/screenshot-mcp/internal/codec"
	"github.com/screentools/screenshot-mcp/internal/ocr"
	"github.com/screentools/screenshot-mcp/internal/store"
)

// === Session Management Handlers ===

type imageListResult struct {
	Images []store.Entry `json:"images"`
	Count  int           `json:"count"`
}

func (s *Server) handleListImages(args json.RawMessage) (interface{}, error) {
	entries := s.store.List()
	return &imageListResult{Images: entries, Count: len(entries)}, nil
}

type getImageResult struct {
	ImageID   string `json:"image_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
	MimeType  string `json:"mime_type"`
	Data      string `json:"data"`
}

func (s *Server) handleGetImage(args json.RawMessage) (interface{}, error) {
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
	return &getImageResult{
		ImageID:   rec.ID,
		Width:     rec.Width,
		Height:    rec.Height,
		Source:    string(rec.Source),
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		MimeType:  codec.PNG.MimeType(),
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

func (s *Server) handleDuplicateImage(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	newID, err := s.store.Duplicate(a.ImageID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(newID)
	if err != nil {
		return nil, err
	}
	return &imageResult{
		ImageID: newID,
		Width:   rec.Width,
		Height:  rec.Height,
		Message: fmt.Sprintf("Duplicated %s as %s", a.ImageID, newID),
	}, nil
}

func (s *Server) handleDeleteImage(args json.RawMessage) (interface{}, error) {
	var a imageIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireID(a.ImageID); err != nil {
		return nil, err
	}

	if err := s.store.Delete(a.ImageID); err != nil {
		return nil, err
	}
	return &messageResult{Message: fmt.Sprintf("Deleted %s", a.ImageID)}, nil
}

func (s *Server) handleGetMemoryStats(args json.RawMessage) (interface{}, error) {
	return s.store.Stats(), nil
}

type configureLimitsArgs struct {
	MaxImages   *int `json:"max_images"`
	MaxMemoryMB *int `json:"max_memory_mb"`
	UndoLevels  *int `json:"undo_levels"`
}

type configureLimitsResult struct {
	Limits        store.Limits `json:"limits"`
	EvictedImages []string     `json:"evicted_images"`
	Message       string       `json:"message"`
}

func (s *Server) handleConfigureLimits(args json.RawMessage) (interface{}, error) {
	var a configureLimitsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	limits, evicted := s.store.ConfigureLimits(a.MaxImages, a.MaxMemoryMB, a.UndoLevels)
	if evicted == nil {
		evicted = []string{}
	}
	msg := fmt.Sprintf("Limits set to %d images, %d MB, %d undo levels",
		limits.MaxImages, limits.MaxMemoryMB, limits.UndoLevels)
	if len(evicted) > 0 {
		msg = fmt.Sprintf("%s (%d images evicted)", msg, len(evicted))
	}
	return &configureLimitsResult{Limits: limits, EvictedImages: evicted, Message: msg}, nil
}

// === Text Extraction Handler ===

type extractTextArgs struct {
	ImageID  string `json:"image_id"`
	Language string `json:"language"`
}

type extractTextResult struct {
	ImageID string `json:"image_id"`
	*ocr.Result
}

func (s *Server) handleExtractText(args json.RawMessage) (interface{}, error) {
	var a extractTextArgs
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
	result, err := ocr.ExtractText(rec.Pixels, a.Language)
	if err != nil {
		return nil, err
	}
	return &extractTextResult{ImageID: a.ImageID, Result: result}, nil
}
