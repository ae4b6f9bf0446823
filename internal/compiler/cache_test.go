package compiler

import (
	"testing"
	"time"
)

func TestResultCache_GetSet(t *testing.T) {
	cache := NewResultCache()

	result := CompilationResult{Code: "h()", Hash: "abc", CompilationTimeMs: 4.2}
	cache.Set("abc", result)

	got, ok := cache.Get("abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Code != "h()" {
		t.Errorf("Code mismatch: got %q", got.Code)
	}
	if !got.FromCache {
		t.Error("expected FromCache to be set on cached result")
	}
	if got.CompilationTimeMs != 0 {
		t.Errorf("expected zero compile time on cache hit, got %f", got.CompilationTimeMs)
	}
}

func TestResultCache_Miss(t *testing.T) {
	cache := NewResultCache()

	if _, ok := cache.Get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestResultCache_Invalidate(t *testing.T) {
	cache := NewResultCache()
	cache.Set("a", CompilationResult{Hash: "a"})
	cache.Set("b", CompilationResult{Hash: "b"})

	cache.Invalidate("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("expected invalidated entry to miss")
	}
	if cache.Size() != 1 {
		t.Errorf("Size: got %d, want 1", cache.Size())
	}

	cache.InvalidateAll()
	if cache.Size() != 0 {
		t.Errorf("Size after InvalidateAll: got %d, want 0", cache.Size())
	}
}

func TestResultCache_Prune(t *testing.T) {
	cache := NewResultCache()
	cache.Set("old", CompilationResult{Hash: "old"})

	time.Sleep(10 * time.Millisecond)
	pruned := cache.Prune(time.Nanosecond)
	if pruned != 1 {
		t.Errorf("Prune: got %d, want 1", pruned)
	}
	if cache.Size() != 0 {
		t.Errorf("Size after prune: got %d, want 0", cache.Size())
	}
}
