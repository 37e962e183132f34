package render

import (
	"sync"
	"testing"
)

func TestCacheKey(t *testing.T) {
	base := cacheKey(DefaultOptions())

	if base == cacheKey(DefaultOptions().WithWidth(100)) {
		t.Error("Different widths should produce different keys")
	}
	if base == cacheKey(DefaultOptions().WithStyle("light")) {
		t.Error("Different styles should produce different keys")
	}
	if base != cacheKey(DefaultOptions()) {
		t.Error("Same options should produce same key")
	}
}

func TestPoolGetAndPut(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()

	renderer, err := globalPool.get(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer == nil {
		t.Fatal("expected non-nil renderer")
	}
	if CacheSize() != 1 {
		t.Errorf("expected pool count 1, got %d", CacheSize())
	}
	globalPool.put(opts, renderer)

	if _, err := globalPool.get(opts.WithWidth(60)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("expected pool count 2, got %d", CacheSize())
	}

	globalPool.put(opts, nil) // no-op
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := DefaultOptions().WithWidth(60 + (i%3)*10)
			if _, err := Markdown("**concurrent** render", opts); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
	if CacheSize() != 3 {
		t.Errorf("expected 3 pools, got %d", CacheSize())
	}
}

func TestClearCache(t *testing.T) {
	_, _ = Markdown("x", DefaultOptions())
	if CacheSize() == 0 {
		t.Fatal("expected at least one pool")
	}
	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("expected empty cache, got %d", CacheSize())
	}
}

func TestIsStandardStyle(t *testing.T) {
	for _, s := range []string{"dark", "light", "dracula", "notty", "ascii"} {
		if !IsStandardStyle(s) {
			t.Errorf("%s should be a standard style", s)
		}
	}
	if IsStandardStyle("/tmp/custom.json") {
		t.Error("a path is not a standard style")
	}
}

func TestCreateRendererWithInvalidStyle(t *testing.T) {
	if _, err := createRenderer(DefaultOptions().WithStyle("does-not-exist.json")); err == nil {
		t.Error("expected error for a missing style file")
	}
}
