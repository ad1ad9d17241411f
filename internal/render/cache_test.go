package render

import (
	"strings"
	"sync"
	"testing"
)

func TestOptionsKey(t *testing.T) {
	base := DefaultOptions().WithStyle(ThemeNoTTY)

	if base.key() == base.WithWidth(100).key() {
		t.Error("Different widths should produce different keys")
	}
	if base.key() == base.WithStyle(ThemeLight).key() {
		t.Error("Different styles should produce different keys")
	}
	if base.key() != DefaultOptions().WithStyle(ThemeNoTTY).key() {
		t.Error("Same options should produce same key")
	}
	if DefaultOptions().WithStyle("").key() != DefaultOptions().WithStyle(ThemeDark).key() {
		t.Error("Empty style resolves to dark and should share its pool")
	}
}

func TestPoolReuse(t *testing.T) {
	p := newRendererPool()
	opts := DefaultOptions().WithStyle(ThemeNoTTY)

	r1, err := p.get(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.put(opts, r1)

	if _, err := p.get(opts.WithWidth(60)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.size() != 2 {
		t.Errorf("expected 2 pools, got %d", p.size())
	}

	p.reset()
	if p.size() != 0 {
		t.Errorf("expected 0 pools after reset, got %d", p.size())
	}
}

func TestPoolEvictsOldestWidth(t *testing.T) {
	p := newRendererPool()
	first := DefaultOptions().WithStyle(ThemeNoTTY).WithWidth(40)

	if _, err := p.get(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for w := 41; w < 41+maxPools; w++ {
		if _, err := p.get(first.WithWidth(w)); err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
	}

	if p.size() != maxPools {
		t.Errorf("expected %d pools, got %d", maxPools, p.size())
	}
	p.mu.Lock()
	_, kept := p.pools[first.key()]
	p.mu.Unlock()
	if kept {
		t.Error("oldest option set should have been evicted")
	}

	// Returning a renderer for an evicted set must not recreate its pool.
	r, err := createRenderer(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.put(first, r)
	if p.size() != maxPools {
		t.Errorf("put recreated an evicted pool, size %d", p.size())
	}
}

func TestPoolConcurrency(t *testing.T) {
	p := newRendererPool()
	opts := DefaultOptions().WithStyle(ThemeNoTTY)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			renderer, err := p.get(opts)
			if err != nil {
				errs <- err
				return
			}
			if _, err := renderer.Render("Created `report.txt`"); err != nil {
				errs <- err
				return
			}
			p.put(opts, renderer)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}
	if p.size() != 1 {
		t.Errorf("expected 1 pool after concurrent access, got %d", p.size())
	}
}

func TestClearCache(t *testing.T) {
	ClearCache()
	defer ClearCache()

	if _, err := Markdown("# Done", DefaultOptions().WithStyle(ThemeNoTTY)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected 1 pool, got %d", CacheSize())
	}
	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("expected 0 pools after clear, got %d", CacheSize())
	}
}

func TestCreateRenderer(t *testing.T) {
	renderer, err := createRenderer(DefaultOptions().WithStyle(ThemeNoTTY))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := renderer.Render("# Files ready")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "Files ready") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCreateRendererWithInvalidStyle(t *testing.T) {
	if _, err := createRenderer(DefaultOptions().WithStyle("/nonexistent/style.json")); err == nil {
		t.Error("expected error for missing style file")
	}
}
