package store

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// solidImage builds a w x h buffer filled with c.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newTestStore(t *testing.T, limits Limits) *Store {
	t.Helper()
	return New(limits)
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func mustCreate(t *testing.T, s *Store, img *image.NRGBA, source Source) string {
	t.Helper()
	id, err := s.Create(img, source)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return id
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(100, 80, white), SourceCaptured)

	if !strings.HasPrefix(id, "img_") {
		t.Errorf("ID %q does not have the img_ prefix", id)
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Width != 100 || rec.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", rec.Width, rec.Height)
	}
	if rec.Source != SourceCaptured {
		t.Errorf("source: got %s, want %s", rec.Source, SourceCaptured)
	}
}

func TestCreateRejectsInvalidPixels(t *testing.T) {
	s := newTestStore(t, Limits{})

	if _, err := s.Create(nil, SourceLoaded); !fault.Is(err, fault.InvalidImage) {
		t.Errorf("nil image: got %v, want InvalidImage", err)
	}
	if _, err := s.Create(image.NewNRGBA(image.Rect(0, 0, 0, 0)), SourceLoaded); !fault.Is(err, fault.InvalidImage) {
		t.Errorf("zero-area image: got %v, want InvalidImage", err)
	}
	if s.Len() != 0 {
		t.Errorf("failed creates must not add records, have %d", s.Len())
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	rec.Pixels.SetNRGBA(0, 0, red)

	again, err := s.Get(id)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if got := again.Pixels.NRGBAAt(0, 0); got != white {
		t.Errorf("stored pixels changed through a returned copy: got %v", got)
	}
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t, Limits{})
	mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if _, err := s.Get("img_nope"); !fault.Is(err, fault.NotFound) {
		t.Errorf("unknown id: got %v, want NotFound", err)
	}
	if s.Len() != 1 {
		t.Errorf("failed Get must not change the registry, have %d records", s.Len())
	}
}

func TestReplacePixels(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if err := s.ReplacePixels(id, solidImage(10, 10, red)); err != nil {
		t.Fatalf("ReplacePixels failed: %v", err)
	}
	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := rec.Pixels.NRGBAAt(5, 5); got != red {
		t.Errorf("pixel after replace: got %v, want %v", got, red)
	}
	if rec.Source != SourceLoaded {
		t.Errorf("source changed by ReplacePixels: got %s", rec.Source)
	}

	if err := s.ReplacePixels("img_nope", solidImage(10, 10, red)); !fault.Is(err, fault.NotFound) {
		t.Errorf("unknown id: got %v, want NotFound", err)
	}
}

func TestDeleteIsFinal(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(id); !fault.Is(err, fault.NotFound) {
		t.Errorf("Get after delete: got %v, want NotFound", err)
	}
	if err := s.Delete(id); !fault.Is(err, fault.NotFound) {
		t.Errorf("second delete: got %v, want NotFound", err)
	}

	// A new record never reuses a deleted identity.
	next := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	if next == id {
		t.Errorf("identity %q was reused after deletion", id)
	}
}

func TestDuplicateIsIndependent(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceCaptured)

	dup, err := s.Duplicate(id)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if dup == id {
		t.Fatal("duplicate got the same identity as its source")
	}

	if err := s.ReplacePixels(id, solidImage(10, 10, blue)); err != nil {
		t.Fatalf("ReplacePixels failed: %v", err)
	}
	rec, err := s.Get(dup)
	if err != nil {
		t.Fatalf("Get duplicate failed: %v", err)
	}
	if got := rec.Pixels.NRGBAAt(0, 0); got != white {
		t.Errorf("duplicate changed with its source: got %v", got)
	}
	if rec.Source != SourceDuplicated {
		t.Errorf("duplicate source: got %s, want %s", rec.Source, SourceDuplicated)
	}
}

func TestListSnapshot(t *testing.T) {
	s := newTestStore(t, Limits{})
	a := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	b := mustCreate(t, s, solidImage(20, 10, white), SourceLoaded)
	c := mustCreate(t, s, solidImage(30, 10, white), SourceLoaded)

	entries := s.List()
	if len(entries) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(entries))
	}
	if entries[0].ID != a || entries[1].ID != b || entries[2].ID != c {
		t.Errorf("List order: got %s, %s, %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	if entries[1].Width != 20 {
		t.Errorf("entry width: got %d, want 20", entries[1].Width)
	}

	// The snapshot must not track later mutations.
	if err := s.Delete(b); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("snapshot changed after delete: %d entries", len(entries))
	}
}

func TestEvictionByCount(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 2, MaxMemoryMB: 500, UndoLevels: 10})
	a := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	c := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if s.Len() != 2 {
		t.Fatalf("after eviction Len=%d, want 2", s.Len())
	}
	if _, err := s.Get(a); !fault.Is(err, fault.NotFound) {
		t.Errorf("oldest image should have been evicted, got %v", err)
	}
	if _, err := s.Get(c); err != nil {
		t.Errorf("newest image missing after eviction: %v", err)
	}
}

func TestEvictionRespectsRecentUse(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 2, MaxMemoryMB: 500, UndoLevels: 10})
	a := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	b := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	// Touch a so b becomes the least recently used.
	if _, err := s.Get(a); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if _, err := s.Get(b); !fault.Is(err, fault.NotFound) {
		t.Errorf("least recently used image should have been evicted, got %v", err)
	}
	if _, err := s.Get(a); err != nil {
		t.Errorf("recently used image missing after eviction: %v", err)
	}
}

func TestEvictionByMemory(t *testing.T) {
	// 400x400 NRGBA is 640,000 bytes; two exceed a 1 MB budget.
	s := newTestStore(t, Limits{MaxImages: 50, MaxMemoryMB: 1, UndoLevels: 10})
	a := mustCreate(t, s, solidImage(400, 400, white), SourceLoaded)
	b := mustCreate(t, s, solidImage(400, 400, white), SourceLoaded)

	if s.Len() != 1 {
		t.Fatalf("after memory eviction Len=%d, want 1", s.Len())
	}
	if _, err := s.Get(a); !fault.Is(err, fault.NotFound) {
		t.Errorf("oldest image should have been evicted, got %v", err)
	}
	if _, err := s.Get(b); err != nil {
		t.Errorf("newest image missing after eviction: %v", err)
	}
}

func TestUndo(t *testing.T) {
	s := newTestStore(t, Limits{})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	if err := s.ReplacePixels(id, solidImage(10, 10, red)); err != nil {
		t.Fatalf("ReplacePixels failed: %v", err)
	}
	if err := s.ReplacePixels(id, solidImage(10, 10, blue)); err != nil {
		t.Fatalf("ReplacePixels failed: %v", err)
	}

	count, err := s.UndoCount(id)
	if err != nil || count != 2 {
		t.Fatalf("UndoCount: got %d, %v, want 2", count, err)
	}

	remaining, err := s.Undo(id)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining undos: got %d, want 1", remaining)
	}
	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := rec.Pixels.NRGBAAt(0, 0); got != red {
		t.Errorf("pixel after undo: got %v, want %v", got, red)
	}

	if _, err := s.Undo(id); err != nil {
		t.Fatalf("second Undo failed: %v", err)
	}
	if _, err := s.Undo(id); !fault.Is(err, fault.InvalidArgument) {
		t.Errorf("undo with empty history: got %v, want InvalidArgument", err)
	}
}

func TestUndoHistoryBounded(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 50, MaxMemoryMB: 500, UndoLevels: 2})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	for i := 0; i < 4; i++ {
		if err := s.ReplacePixels(id, solidImage(10, 10, red)); err != nil {
			t.Fatalf("ReplacePixels failed: %v", err)
		}
	}
	count, err := s.UndoCount(id)
	if err != nil {
		t.Fatalf("UndoCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("history depth: got %d, want 2", count)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 5, MaxMemoryMB: 100, UndoLevels: 3})
	mustCreate(t, s, solidImage(100, 100, white), SourceLoaded)

	stats := s.Stats()
	if stats.ImageCount != 1 {
		t.Errorf("ImageCount: got %d, want 1", stats.ImageCount)
	}
	if stats.MaxImages != 5 || stats.MaxMemoryMB != 100 || stats.UndoLevels != 3 {
		t.Errorf("limits not reported: %+v", stats)
	}
	if stats.MemoryMB <= 0 {
		t.Errorf("MemoryMB should be positive, got %f", stats.MemoryMB)
	}
}

func TestConfigureLimits(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 5, MaxMemoryMB: 500, UndoLevels: 10})
	a := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)

	one := 1
	limits, evicted := s.ConfigureLimits(&one, nil, nil)
	if limits.MaxImages != 1 {
		t.Errorf("MaxImages: got %d, want 1", limits.MaxImages)
	}
	if limits.MaxMemoryMB != 500 || limits.UndoLevels != 10 {
		t.Errorf("nil fields must keep current values: %+v", limits)
	}
	if len(evicted) != 2 {
		t.Fatalf("evicted %d images, want 2", len(evicted))
	}
	if evicted[0] != a {
		t.Errorf("oldest image should be evicted first, got %s", evicted[0])
	}
	if s.Len() != 1 {
		t.Errorf("Len after eviction: got %d, want 1", s.Len())
	}
}

func TestConfigureLimitsTrimsHistory(t *testing.T) {
	s := newTestStore(t, Limits{MaxImages: 5, MaxMemoryMB: 500, UndoLevels: 10})
	id := mustCreate(t, s, solidImage(10, 10, white), SourceLoaded)
	for i := 0; i < 5; i++ {
		if err := s.ReplacePixels(id, solidImage(10, 10, red)); err != nil {
			t.Fatalf("ReplacePixels failed: %v", err)
		}
	}

	two := 2
	s.ConfigureLimits(nil, nil, &two)
	count, err := s.UndoCount(id)
	if err != nil {
		t.Fatalf("UndoCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("history after trim: got %d, want 2", count)
	}
}

func TestCalloutCounter(t *testing.T) {
	s := newTestStore(t, Limits{})
	if n := s.NextCallout(); n != 1 {
		t.Errorf("first callout: got %d, want 1", n)
	}
	if n := s.NextCallout(); n != 2 {
		t.Errorf("second callout: got %d, want 2", n)
	}
	s.ResetCallouts()
	if n := s.NextCallout(); n != 1 {
		t.Errorf("callout after reset: got %d, want 1", n)
	}
}

func TestLimitsFromEnv(t *testing.T) {
	t.Setenv("MCP_MAX_IMAGES", "7")
	t.Setenv("MCP_MAX_MEMORY_MB", "123")
	t.Setenv("MCP_UNDO_LEVELS", "bogus")

	limits := LimitsFromEnv()
	if limits.MaxImages != 7 {
		t.Errorf("MaxImages: got %d, want 7", limits.MaxImages)
	}
	if limits.MaxMemoryMB != 123 {
		t.Errorf("MaxMemoryMB: got %d, want 123", limits.MaxMemoryMB)
	}
	if limits.UndoLevels != DefaultUndoLevels {
		t.Errorf("bad value should fall back to default, got %d", limits.UndoLevels)
	}
}
