package compiler

import (
	"sync"
	"time"
)

// cachedResult wraps a stored compilation with bookkeeping metadata.
type cachedResult struct {
	result   CompilationResult
	cachedAt time.Time
}

// ResultCache provides in-memory, content-addressed caching of compilation
// results. Keys are input hashes; results are deterministic per key, so
// concurrent last-writer-wins stores are safe.
type ResultCache struct {
	entries map[string]*cachedResult
	mu      sync.RWMutex
}

// NewResultCache creates a new result cache
func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]*cachedResult),
	}
}

// Get retrieves a cached result by hash. The returned copy carries
// FromCache=true and a zero compile time.
func (rc *ResultCache) Get(hash string) (CompilationResult, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	entry, exists := rc.entries[hash]
	if !exists {
		return CompilationResult{}, false
	}

	result := entry.result
	result.FromCache = true
	result.CompilationTimeMs = 0
	return result, true
}

// Set stores a result under its hash.
func (rc *ResultCache) Set(hash string, result CompilationResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries[hash] = &cachedResult{
		result:   result,
		cachedAt: time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (rc *ResultCache) Invalidate(hash string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	delete(rc.entries, hash)
}

// InvalidateAll clears the entire cache
func (rc *ResultCache) InvalidateAll() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries = make(map[string]*cachedResult)
}

// Size returns the number of cached entries
func (rc *ResultCache) Size() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	return len(rc.entries)
}

// Prune removes entries older than maxAge and returns how many were removed.
func (rc *ResultCache) Prune(maxAge time.Duration) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	pruned := 0
	for hash, entry := range rc.entries {
		if now.Sub(entry.cachedAt) > maxAge {
			delete(rc.entries, hash)
			pruned++
		}
	}
	return pruned
}
