package store

import (
	"fmt"
	"image"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// Source records how an image entered the session.
type Source string

const (
	SourceCaptured   Source = "captured"
	SourceLoaded     Source = "loaded"
	SourceDuplicated Source = "duplicated"
)

// Default limits, overridable via environment or ConfigureLimits.
const (
	DefaultMaxImages   = 50
	DefaultMaxMemoryMB = 500
	DefaultUndoLevels  = 10
)

// Limits bounds the store's resource usage.
type Limits struct {
	MaxImages   int `json:"max_images"`
	MaxMemoryMB int `json:"max_memory_mb"`
	UndoLevels  int `json:"undo_levels"`
}

// LimitsFromEnv reads limits from MCP_MAX_IMAGES, MCP_MAX_MEMORY_MB, and
// MCP_UNDO_LEVELS, falling back to the defaults for unset or bad values.
func LimitsFromEnv() Limits {
	return Limits{
		MaxImages:   envInt("MCP_MAX_IMAGES", DefaultMaxImages),
		MaxMemoryMB: envInt("MCP_MAX_MEMORY_MB", DefaultMaxMemoryMB),
		UndoLevels:  envInt("MCP_UNDO_LEVELS", DefaultUndoLevels),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// record is one image session: the only mutable field is pixels.
type record struct {
	id        string
	pixels    *image.NRGBA
	createdAt time.Time
	source    Source
}

// Record is a caller-facing copy of one image session's state.
//
// Pixels is always a deep copy; mutating it never affects the registry.
type Record struct {
	ID        string
	Pixels    *image.NRGBA
	Width     int
	Height    int
	CreatedAt time.Time
	Source    Source
}

// Entry is one row of a List snapshot.
type Entry struct {
	ID        string    `json:"image_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int       `json:"size_bytes"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryStats describes the store's current resource usage.
type MemoryStats struct {
	ImageCount  int     `json:"image_count"`
	MaxImages   int     `json:"max_images"`
	MemoryMB    float64 `json:"memory_mb"`
	MaxMemoryMB int     `json:"max_memory_mb"`
	UndoLevels  int     `json:"undo_levels"`
}

// Store owns the session registry: the mapping from image identity to
// pixel state. It is the single point of truth for a multi-step
// annotation workflow.
//
// All access goes through one mutex, so at most one mutation is in
// flight at a time and every operation observes the state left by the
// previous one. Pixel buffers are deep-copied on the way in and out;
// no caller ever holds a reference into the registry.
type Store struct {
	mu      sync.Mutex
	records map[string]*record
	order   []string // LRU order, oldest first
	history map[string][]*image.NRGBA
	limits  Limits

	counter  int // monotonic, never reused
	callouts int
}

// New creates an empty store with the given limits. Zero or negative
// limit fields fall back to the defaults.
func New(limits Limits) *Store {
	if limits.MaxImages < 1 {
		limits.MaxImages = DefaultMaxImages
	}
	if limits.MaxMemoryMB < 1 {
		limits.MaxMemoryMB = DefaultMaxMemoryMB
	}
	if limits.UndoLevels < 1 {
		limits.UndoLevels = DefaultUndoLevels
	}
	return &Store{
		records: make(map[string]*record),
		history: make(map[string][]*image.NRGBA),
		limits:  limits,
	}
}

// Create inserts a new record and returns its identity.
func (s *Store) Create(img image.Image, source Source) (string, error) {
	if err := validatePixels(img); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	id := fmt.Sprintf("img_%s_%d", time.Now().Format("20060102_150405"), s.counter)
	s.records[id] = &record{
		id:        id,
		pixels:    imaging.Clone(img),
		createdAt: time.Now(),
		source:    source,
	}
	s.order = append(s.order, id)
	s.evictLocked()
	return id, nil
}

// Get returns a deep copy of the record's current state.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	s.touchLocked(id)
	return &Record{
		ID:        r.id,
		Pixels:    imaging.Clone(r.pixels),
		Width:     r.pixels.Bounds().Dx(),
		Height:    r.pixels.Bounds().Dy(),
		CreatedAt: r.createdAt,
		Source:    r.source,
	}, nil
}

// ReplacePixels atomically swaps a record's pixel buffer, pushing the
// previous buffer onto the undo history. Identity, creation time, and
// source are unchanged.
func (s *Store) ReplacePixels(id string, img image.Image) error {
	if err := validatePixels(img); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return notFound(id)
	}
	s.history[id] = append(s.history[id], r.pixels)
	if n := len(s.history[id]); n > s.limits.UndoLevels {
		s.history[id] = s.history[id][n-s.limits.UndoLevels:]
	}
	r.pixels = imaging.Clone(img)
	s.touchLocked(id)
	s.evictLocked()
	return nil
}

// Duplicate creates a new record with a copy of the source record's
// pixels and returns the new identity.
func (s *Store) Duplicate(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return "", notFound(id)
	}
	s.counter++
	newID := fmt.Sprintf("img_%s_%d", time.Now().Format("20060102_150405"), s.counter)
	s.records[newID] = &record{
		id:        newID,
		pixels:    imaging.Clone(r.pixels),
		createdAt: time.Now(),
		source:    SourceDuplicated,
	}
	s.order = append(s.order, newID)
	s.evictLocked()
	return newID, nil
}

// Delete removes a record. Deleting an unknown identity always fails
// NotFound; identities are never reassigned after deletion.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	s.removeLocked(id)
	return nil
}

// List returns a snapshot of all records at call time, sorted by
// creation time (ties broken by identity). Later mutations are not
// reflected in a returned list.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.records))
	for _, r := range s.records {
		entries = append(entries, Entry{
			ID:        r.id,
			Width:     r.pixels.Bounds().Dx(),
			Height:    r.pixels.Bounds().Dy(),
			SizeBytes: len(r.pixels.Pix),
			Source:    r.source,
			CreatedAt: r.createdAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// Len returns the number of records currently in the registry.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Undo restores the record's previous pixel buffer and returns the
// number of undo steps remaining.
func (s *Store) Undo(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return 0, notFound(id)
	}
	hist := s.history[id]
	if len(hist) == 0 {
		return 0, fault.New(fault.InvalidArgument, "no undo history available for image '%s'", id)
	}
	r.pixels = hist[len(hist)-1]
	s.history[id] = hist[:len(hist)-1]
	return len(s.history[id]), nil
}

// UndoCount returns the number of undo steps available for id.
func (s *Store) UndoCount(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return 0, notFound(id)
	}
	return len(s.history[id]), nil
}

// Stats returns current memory usage and configured limits.
func (s *Store) Stats() MemoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return MemoryStats{
		ImageCount:  len(s.records),
		MaxImages:   s.limits.MaxImages,
		MemoryMB:    float64(s.memoryBytesLocked()) / (1024 * 1024),
		MaxMemoryMB: s.limits.MaxMemoryMB,
		UndoLevels:  s.limits.UndoLevels,
	}
}

// ConfigureLimits updates the store's limits. Nil fields keep the
// current value. Histories are trimmed and eviction runs immediately;
// the ids of evicted images are returned.
func (s *Store) ConfigureLimits(maxImages, maxMemoryMB, undoLevels *int) (Limits, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxImages != nil && *maxImages >= 1 {
		s.limits.MaxImages = *maxImages
	}
	if maxMemoryMB != nil && *maxMemoryMB >= 1 {
		s.limits.MaxMemoryMB = *maxMemoryMB
	}
	if undoLevels != nil && *undoLevels >= 1 {
		s.limits.UndoLevels = *undoLevels
		for id, hist := range s.history {
			if n := len(hist); n > s.limits.UndoLevels {
				s.history[id] = hist[n-s.limits.UndoLevels:]
			}
		}
	}
	evicted := s.evictLocked()
	return s.limits, evicted
}

// NextCallout increments and returns the auto-numbering callout counter.
func (s *Store) NextCallout() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callouts++
	return s.callouts
}

// ResetCallouts sets the callout counter back to zero.
func (s *Store) ResetCallouts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callouts = 0
}

// --- internals (caller must hold s.mu) ---

// touchLocked moves id to the most-recently-used end of the LRU order.
func (s *Store) touchLocked(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(append(s.order[:i:i], s.order[i+1:]...), id)
			return
		}
	}
}

func (s *Store) removeLocked(id string) {
	delete(s.records, id)
	delete(s.history, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// memoryBytesLocked sums pixel bytes across live records and histories.
func (s *Store) memoryBytesLocked() int {
	total := 0
	for _, r := range s.records {
		total += len(r.pixels.Pix)
	}
	for _, hist := range s.history {
		for _, img := range hist {
			total += len(img.Pix)
		}
	}
	return total
}

// evictLocked removes oldest records until both limits hold.
func (s *Store) evictLocked() []string {
	var evicted []string
	for len(s.records) > s.limits.MaxImages && len(s.order) > 0 {
		oldest := s.order[0]
		s.removeLocked(oldest)
		evicted = append(evicted, oldest)
	}
	maxBytes := s.limits.MaxMemoryMB * 1024 * 1024
	for s.memoryBytesLocked() > maxBytes && len(s.order) > 0 {
		oldest := s.order[0]
		s.removeLocked(oldest)
		evicted = append(evicted, oldest)
	}
	return evicted
}

func validatePixels(img image.Image) error {
	if img == nil {
		return fault.New(fault.InvalidImage, "pixel buffer is nil")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fault.New(fault.InvalidImage, "pixel buffer has zero area (%dx%d)", b.Dx(), b.Dy())
	}
	return nil
}

func notFound(id string) error {
	return fault.New(fault.NotFound, "image '%s' not found; use list_images to see available images", id)
}
